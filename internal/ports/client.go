package ports

import (
	"context"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// Client sends one command to DataFed and returns the decoded reply.
// args are the command words and flags, e.g. ["data", "view", "d/123"].
type Client interface {
	Run(ctx context.Context, args ...string) (domain.Reply, error)
}
