package tui

import (
	"context"
	"log/slog"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

// PushFunc runs a directory push, reporting progress to obs.
type PushFunc func(ctx context.Context, obs usecase.PushObserver) (domain.PushRun, string, error)

type Deps struct {
	Dir   string
	Total int
	Push  PushFunc

	Logger *slog.Logger
}
