package usecase

import (
	"log/slog"
	"path/filepath"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// InitWorkspace creates a workspace and reports its absolute root.
type InitWorkspace struct {
	initializer ports.WorkspaceInitializer
	log         *slog.Logger
}

func NewInitWorkspace(initializer ports.WorkspaceInitializer, log *slog.Logger) *InitWorkspace {
	return &InitWorkspace{initializer: initializer, log: orDiscard(log)}
}

func (uc *InitWorkspace) Execute(dir string, force bool) (string, error) {
	d, err := domain.ValidateString(dir, "workspace directory")
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(d)
	if err != nil {
		return "", &domain.OpError{Op: "workspace.init", Kind: domain.KindInvalidArgument, Path: d, Err: err}
	}

	if err := uc.initializer.Init(domain.WorkspaceSpec{Root: root}, force); err != nil {
		return "", err
	}
	uc.log.Info("workspace.init", "root", root, "force", force)
	return root, nil
}
