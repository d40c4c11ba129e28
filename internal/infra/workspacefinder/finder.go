package workspacefinder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// EnvWorkspace names a workspace root that wins over the upward search.
const EnvWorkspace = "DFKIT_WORKSPACE"

// Finder locates the dfkit workspace enclosing a directory: the nearest
// ancestor holding a regular dfkit.yaml file.
type Finder struct {
	ConfigFile string
	getenv     func(string) string
}

var _ ports.WorkspaceLocator = (*Finder)(nil)

func NewFinder() *Finder {
	return &Finder{ConfigFile: ConfigFile, getenv: os.Getenv}
}

func (f *Finder) FindRoot(startDir string) (string, error) {
	if env := strings.TrimSpace(f.getenv(EnvWorkspace)); env != "" {
		root, err := filepath.Abs(env)
		if err == nil && f.hasConfig(root) {
			return root, nil
		}
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindNotFound,
			Path: env,
			Err:  errors.New(EnvWorkspace + " does not point at a directory with " + f.ConfigFile),
		}
	}

	if strings.TrimSpace(startDir) == "" {
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindInvalidArgument,
			Err:  errors.New("start directory is empty"),
		}
	}

	cur, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{Op: "workspacefinder.findroot", Kind: domain.KindExecution, Path: startDir, Err: err}
	}
	if info, err := os.Stat(cur); err == nil && !info.IsDir() {
		cur = filepath.Dir(cur)
	}

	for {
		if f.hasConfig(cur) {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", &domain.OpError{
				Op:   "workspacefinder.findroot",
				Kind: domain.KindNotFound,
				Path: startDir,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}

func (f *Finder) hasConfig(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, f.ConfigFile))
	return err == nil && info.Mode().IsRegular()
}
