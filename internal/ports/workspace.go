package ports

import "github.com/aalvaropc/dfkit/internal/domain"

// WorkspaceInitializer lays out a new dfkit workspace on disk.
type WorkspaceInitializer interface {
	Init(ws domain.WorkspaceSpec, force bool) error
}
