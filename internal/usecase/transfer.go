package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

type Transfers struct {
	client  ports.Client
	session *Session
	log     *slog.Logger
}

func NewTransfers(client ports.Client, session *Session, log *slog.Logger) *Transfers {
	return &Transfers{client: client, session: session, log: orDiscard(log)}
}

// Put uploads the file at path as the raw data of recordID. When the account
// has no default endpoint, the local one is set and the upload retried once.
func (t *Transfers) Put(ctx context.Context, recordID, path string, wait bool) (domain.Transfer, error) {
	id, err := domain.ValidateString(recordID, "record id")
	if err != nil {
		return domain.Transfer{}, err
	}
	p, err := domain.ValidateString(path, "data path")
	if err != nil {
		return domain.Transfer{}, err
	}

	args := []string{"data", "put"}
	if wait {
		args = append(args, "--wait")
	}
	args = append(args, id, p)

	log := t.log.With("record", id, "path", p)
	log.Info("transfer.put", "wait", wait)

	reply, err := t.client.Run(ctx, args...)
	if err != nil && isNoEndpoint(err) && t.session != nil {
		log.Warn("transfer.no_endpoint")
		if _, serr := t.session.SetEndpoint(ctx); serr != nil {
			return domain.Transfer{}, serr
		}
		reply, err = t.client.Run(ctx, args...)
	}
	if err != nil {
		return domain.Transfer{}, err
	}

	if reply.Kind != domain.ReplyTransfer || len(reply.Transfers) == 0 {
		return domain.Transfer{}, unexpectedReply("transfer.put", id, reply, domain.ReplyTransfer)
	}

	xfr := reply.Transfers[0]
	if wait && xfr.Status != domain.TransferSucceeded {
		detail := xfr.ErrMsg
		if detail == "" {
			detail = "status " + xfr.Status.String()
		}
		return xfr, &domain.OpError{
			Op:   "transfer.put",
			Kind: domain.KindTransfer,
			Path: id,
			Err:  fmt.Errorf("transfer %s did not succeed: %s", xfr.ID, detail),
		}
	}

	if wait {
		log.Info("transfer.done", "task", xfr.ID)
	}
	return xfr, nil
}

func isNoEndpoint(err error) bool {
	msg := domain.RemoteMessage(err)
	if msg == "" {
		msg = err.Error()
	}
	return strings.Contains(strings.ToLower(msg), "no endpoint set")
}
