package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// MoveBatchSize is how many ids go into a single "coll add"/"coll remove".
const MoveBatchSize = 10

type Collections struct {
	client ports.Client
	log    *slog.Logger
}

func NewCollections(client ports.Client, log *slog.Logger) *Collections {
	return &Collections{client: client, log: orDiscard(log)}
}

// Move links ids into dest and unlinks them from source. Messages about items
// that are already linked or that do not exist are returned as warnings.
func (c *Collections) Move(ctx context.Context, ids []string, source, dest string) ([]string, error) {
	if len(ids) == 0 {
		return nil, &domain.OpError{
			Op:   "collections.move",
			Kind: domain.KindInvalidArgument,
			Err:  errors.New("at least one record or collection id is required"),
		}
	}
	clean, err := domain.ValidateStrings(ids, "id")
	if err != nil {
		return nil, err
	}
	from, err := domain.ValidateString(source, "source collection")
	if err != nil {
		return nil, err
	}
	to, err := domain.ValidateString(dest, "destination collection")
	if err != nil {
		return nil, err
	}

	var warnings []string
	for start := 0; start < len(clean); start += MoveBatchSize {
		end := min(start+MoveBatchSize, len(clean))
		batch := clean[start:end]

		for _, cmd := range [][]string{
			append(append([]string{"coll", "add"}, batch...), to),
			append(append([]string{"coll", "remove"}, batch...), from),
		} {
			w, err := c.send(ctx, cmd)
			if err != nil {
				return warnings, err
			}
			if w != "" {
				warnings = append(warnings, w)
			}
		}
	}

	c.log.Info("collections.moved", "count", len(clean), "from", from, "to", to, "warnings", len(warnings))
	return warnings, nil
}

func (c *Collections) send(ctx context.Context, args []string) (string, error) {
	c.log.Debug("collections.command", "args", strings.Join(args, " "))
	if _, err := c.client.Run(ctx, args...); err != nil {
		msg := domain.RemoteMessage(err)
		if strings.Contains(msg, "already linked to ") || strings.Contains(msg, "does not exist") {
			c.log.Warn("collections.warning", "message", msg)
			return msg, nil
		}
		return "", err
	}
	return "", nil
}
