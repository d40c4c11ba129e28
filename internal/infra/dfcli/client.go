package dfcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

const installHint = "install the DataFed CLI (pip install datafed) and run `datafed setup`"

type Config struct {
	// Binary is the DataFed command-line client, looked up in PATH if not absolute.
	Binary string

	// Args are placed before the script-mode flag, e.g. a config directory override.
	Args []string

	// Timeout bounds a single command. Transfers with --wait can be slow.
	Timeout time.Duration

	// RateLimit is the number of commands per second across all goroutines.
	RateLimit rate.Limit
	Burst     int
}

func DefaultConfig() Config {
	return Config{
		Binary:    "datafed",
		Timeout:   10 * time.Minute,
		RateLimit: 5,
		Burst:     5,
	}
}

// ConfigFrom maps the workspace client settings, keeping defaults for zero values.
func ConfigFrom(c domain.ClientConfig) Config {
	cfg := DefaultConfig()
	if strings.TrimSpace(c.Binary) != "" {
		cfg.Binary = c.Binary
	}
	if len(c.Args) > 0 {
		cfg.Args = append([]string(nil), c.Args...)
	}
	if c.Timeout > 0 {
		cfg.Timeout = c.Timeout
	}
	cfg.RateLimit = rate.Limit(c.RateLimit)
	if c.RateLimit <= 0 {
		cfg.RateLimit = rate.Inf
	}
	if c.Burst > 0 {
		cfg.Burst = c.Burst
	}
	return cfg
}

// Client drives the DataFed CLI in script mode, one process per command.
type Client struct {
	cfg     Config
	limiter *rate.Limiter
	logger  *slog.Logger
	env     []string
}

type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEnv appends KEY=VALUE pairs to the environment of every command.
func WithEnv(kv ...string) Option {
	return func(c *Client) { c.env = append(c.env, kv...) }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = rate.Inf
	}
	c := &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(cfg.RateLimit, cfg.Burst),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.Client = (*Client)(nil)

func (c *Client) Run(ctx context.Context, args ...string) (domain.Reply, error) {
	command := commandName(args)
	if len(args) == 0 {
		return domain.Reply{}, &domain.OpError{
			Op:   "dfcli.run",
			Kind: domain.KindInvalidArgument,
			Err:  fmt.Errorf("empty command: %w", domain.ErrInvalidArgument),
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Reply{}, &domain.OpError{Op: "dfcli.run", Kind: domain.KindExecution, Path: command, Err: err}
	}

	runCtx := ctx
	cancel := func() {}
	if c.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
	}
	defer cancel()

	argv := make([]string, 0, len(c.cfg.Args)+1+len(args))
	argv = append(argv, c.cfg.Args...)
	argv = append(argv, "--script")
	argv = append(argv, args...)

	cmd := exec.CommandContext(runCtx, c.cfg.Binary, argv...)
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	lat := time.Since(start)

	c.logger.Debug("dfcli.command",
		"command", command,
		"args", args,
		"latency_ms", lat.Milliseconds(),
		"exit_error", errString(runErr),
	)

	if runErr != nil {
		return domain.Reply{}, c.classify(runCtx, command, runErr, stdout.Bytes(), stderr.Bytes())
	}

	reply, err := decodeReply(command, stdout.Bytes())
	if err != nil {
		return domain.Reply{}, wrapDecodeErr(command, err)
	}
	return reply, nil
}

func (c *Client) classify(ctx context.Context, command string, runErr error, stdout, stderr []byte) error {
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, os.ErrNotExist) {
		return &domain.OpError{
			Op:   "dfcli.run",
			Kind: domain.KindNotFound,
			Path: c.cfg.Binary,
			Err:  fmt.Errorf("%s not found; %s: %w", c.cfg.Binary, installHint, runErr),
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &domain.OpError{Op: "dfcli.run", Kind: domain.KindExecution, Path: command, Err: ctxErr}
	}

	// Script mode usually reports failures as JSON on stdout, even with a non-zero exit.
	_, derr := decodeReply(command, stdout)
	var re *domain.RemoteError
	if errors.As(derr, &re) {
		return wrapDecodeErr(command, derr)
	}

	msg := strings.TrimSpace(string(stderr))
	if text := strings.TrimSpace(string(stdout)); derr != nil && text != "" {
		// Plain text on stdout is the client's own error message.
		msg = text
	}
	if msg == "" {
		msg = runErr.Error()
	}
	return wrapDecodeErr(command, &domain.RemoteError{Command: command, Message: msg})
}

func wrapDecodeErr(command string, err error) error {
	var re *domain.RemoteError
	if errors.As(err, &re) {
		kind := domain.KindRemote
		if isAuthMessage(re.Message) {
			kind = domain.KindAuth
		}
		return &domain.OpError{Op: "dfcli.run", Kind: kind, Path: command, Err: err}
	}
	return &domain.OpError{Op: "dfcli.decode", Kind: domain.KindExecution, Path: command, Err: err}
}

func isAuthMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not authenticated") ||
		strings.Contains(m, "authentication required") ||
		strings.Contains(m, "datafed setup")
}

// commandName keeps the command words (no flags, no values) for logs and errors.
func commandName(args []string) string {
	var words []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") || len(words) == 2 {
			break
		}
		words = append(words, a)
	}
	return strings.Join(words, " ")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
