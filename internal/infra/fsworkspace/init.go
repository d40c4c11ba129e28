package fsworkspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

const (
	configFile      = "dfkit.yaml"
	gitignoreHeader = "# dfkit"
)

// gitignoreEntries keep run artifacts, logs and the push ledger out of git.
var gitignoreEntries = []string{"runs/", ".dfkit/"}

// Initializer lays out a dfkit workspace on the local filesystem.
type Initializer struct {
	hostname func() (string, error)
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

type Option func(*Initializer)

// WithHostname replaces os.Hostname, which only feeds a comment in dfkit.yaml.
func WithHostname(fn func() (string, error)) Option {
	return func(i *Initializer) { i.hostname = fn }
}

func NewInitializer(opts ...Option) *Initializer {
	i := &Initializer{hostname: os.Hostname}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Init creates dfkit.yaml, runs/ and .dfkit/logs under ws.Root and adds
// the local state to .gitignore. An existing dfkit.yaml is kept unless force is set.
func (i *Initializer) Init(ws domain.WorkspaceSpec, force bool) error {
	if strings.TrimSpace(ws.Root) == "" {
		return &domain.OpError{
			Op:   "fsworkspace.init",
			Kind: domain.KindInvalidArgument,
			Err:  domain.ErrInvalidArgument,
		}
	}
	root := filepath.Clean(ws.Root)

	for _, d := range []string{
		filepath.Join(root, "runs"),
		filepath.Join(root, ".dfkit", "logs"),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.OpError{Op: "fsworkspace.mkdir", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}

	if err := i.writeConfig(filepath.Join(root, configFile), force); err != nil {
		return err
	}

	if err := ensureGitignore(root); err != nil {
		return &domain.OpError{Op: "fsworkspace.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}
	return nil
}

func (i *Initializer) writeConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}

	host, _ := i.hostname()
	b, err := renderConfig(host)
	if err != nil {
		return &domain.OpError{Op: "fsworkspace.template", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := renameio.WriteFile(path, b, 0o644); err != nil {
		return &domain.OpError{Op: "fsworkspace.write", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}

// ensureGitignore appends the missing entries, under the dfkit header,
// to the .gitignore at root. Existing content is never rewritten.
func ensureGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	have := map[string]bool{}
	for _, line := range strings.Split(string(existing), "\n") {
		have[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range gitignoreEntries {
		if !have[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 {
		if existing[len(existing)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if !have[gitignoreHeader] {
		b.WriteString(gitignoreHeader + "\n")
	}
	for _, e := range missing {
		b.WriteString(e + "\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
