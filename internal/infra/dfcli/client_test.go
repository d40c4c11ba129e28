package dfcli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// TestHelperProcess is not a real test: it stands in for the datafed binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("DFKIT_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 || args[0] != "--script" {
		fmt.Fprintln(os.Stderr, "missing --script")
		os.Exit(2)
	}

	switch strings.Join(args[1:], " ") {
	case "data view d/1":
		fmt.Println(`{"data":[{"id":"d/1","alias":"a","title":"A","size":10,"metadata":"{}"}]}`)
	case "data view d/missing":
		fmt.Println(`{"message":"Record d/missing does not exist"}`)
		os.Exit(1)
	case "user who":
		fmt.Fprintln(os.Stderr, "Not authenticated. Run datafed setup.")
		os.Exit(1)
	case "ep get":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(3)
	case "data put d/2 /tmp/a.h5":
		fmt.Println("No endpoint set")
		fmt.Fprintln(os.Stderr, "Traceback (most recent call last):")
		os.Exit(1)
	case "sleep":
		time.Sleep(5 * time.Second)
	default:
		fmt.Println(`{}`)
	}
	os.Exit(0)
}

func helperClient(t *testing.T, mutate func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Binary = os.Args[0]
	cfg.Args = []string{"-test.run=TestHelperProcess", "--"}
	cfg.Timeout = 10 * time.Second
	cfg.RateLimit = rate.Inf
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, WithEnv("DFKIT_WANT_HELPER_PROCESS=1"))
}

func TestRun_DecodesRecord(t *testing.T) {
	c := helperClient(t, nil)

	reply, err := c.Run(context.Background(), "data", "view", "d/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Kind != domain.ReplyRecord || reply.Records[0].ID != "d/1" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestRun_RemoteMessageOnStdout(t *testing.T) {
	c := helperClient(t, nil)

	_, err := c.Run(context.Background(), "data", "view", "d/missing")
	if !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got := domain.RemoteMessage(err); got != "Record d/missing does not exist" {
		t.Fatalf("unexpected remote message %q", got)
	}
}

func TestRun_AuthFromStderr(t *testing.T) {
	c := helperClient(t, nil)

	_, err := c.Run(context.Background(), "user", "who")
	if !domain.IsKind(err, domain.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestRun_StderrBecomesRemoteMessage(t *testing.T) {
	c := helperClient(t, nil)

	_, err := c.Run(context.Background(), "ep", "get")
	if !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got := domain.RemoteMessage(err); got != "boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRun_PlainTextStdoutBecomesRemoteMessage(t *testing.T) {
	c := helperClient(t, nil)

	_, err := c.Run(context.Background(), "data", "put", "d/2", "/tmp/a.h5")
	if !domain.IsKind(err, domain.KindRemote) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if got := domain.RemoteMessage(err); got != "No endpoint set" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRun_Timeout(t *testing.T) {
	c := helperClient(t, func(cfg *Config) { cfg.Timeout = 200 * time.Millisecond })

	_, err := c.Run(context.Background(), "sleep")
	if !domain.IsKind(err, domain.KindExecution) {
		t.Fatalf("expected execution error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	c := New(Config{Binary: filepath.Join(t.TempDir(), "no-such-datafed")})

	_, err := c.Run(context.Background(), "ls")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if !strings.Contains(err.Error(), "datafed setup") {
		t.Fatalf("expected install hint, got %v", err)
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := New(DefaultConfig()).Run(context.Background())
	if !domain.IsKind(err, domain.KindInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRun_CanceledBeforeRateLimit(t *testing.T) {
	c := helperClient(t, func(cfg *Config) {
		cfg.RateLimit = rate.Every(time.Hour)
		cfg.Burst = 1
	})

	if _, err := c.Run(context.Background(), "noop"); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Run(ctx, "noop"); err == nil {
		t.Fatalf("expected the limiter to refuse a second call within the deadline")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(domain.ClientConfig{Binary: "/opt/datafed", Args: []string{"-c", "/etc/df"}, RateLimit: 0, Burst: 3})
	if cfg.Binary != "/opt/datafed" || cfg.Burst != 3 || len(cfg.Args) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RateLimit != rate.Inf {
		t.Fatalf("expected unlimited rate for 0, got %v", cfg.RateLimit)
	}
	if cfg.Timeout != DefaultConfig().Timeout {
		t.Fatalf("expected default timeout")
	}
}
