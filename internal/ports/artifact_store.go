package ports

import "github.com/aalvaropc/dfkit/internal/domain"

// ArtifactStore persists push runs for later inspection.
type ArtifactStore interface {
	SaveRun(run domain.PushRun) (id string, err error)
	ListRuns() ([]domain.RunRef, error)
}
