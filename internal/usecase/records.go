package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
	ucextract "github.com/aalvaropc/dfkit/internal/usecase/extract"
)

// Records covers listing, viewing, creating and updating data records.
type Records struct {
	client ports.Client
	meta   ports.MetadataSource
	log    *slog.Logger
}

func NewRecords(client ports.Client, meta ports.MetadataSource, log *slog.Logger) *Records {
	return &Records{
		client: client,
		meta:   meta,
		log:    orDiscard(log),
	}
}

type ListOptions struct {
	Offset  int
	Count   int
	Project string
}

// CreateOptions controls checks made before a record is created.
type CreateOptions struct {
	CheckExisting bool
}

// List lists the items of a collection.
func (r *Records) List(ctx context.Context, id string, opts ListOptions) (domain.Listing, error) {
	target, err := domain.ValidateString(id, "collection id or alias")
	if err != nil {
		return domain.Listing{}, err
	}

	args := []string{"ls"}
	switch {
	case opts.Offset > 0:
		args = append(args, "-O", strconv.Itoa(opts.Offset))
	case opts.Offset < 0:
		r.log.Warn("records.list.offset_ignored", "offset", opts.Offset, "reason", "offset must be an integer > 0")
	}
	switch {
	case opts.Count > 0:
		args = append(args, "-C", strconv.Itoa(opts.Count))
	case opts.Count < 0:
		r.log.Warn("records.list.count_ignored", "count", opts.Count, "reason", "count must be an integer >= 1")
	}
	if p := strings.TrimSpace(opts.Project); p != "" {
		args = append(args, "-p", p)
	}
	args = append(args, target)

	reply, err := r.client.Run(ctx, args...)
	if err != nil {
		return domain.Listing{}, err
	}
	if reply.Kind != domain.ReplyListing {
		return domain.Listing{}, unexpectedReply("records.list", target, reply, domain.ReplyListing)
	}
	return reply.Listing, nil
}

// View returns the record, or nil when DataFed does not know it.
func (r *Records) View(ctx context.Context, idOrAlias string) (*domain.Record, error) {
	target, err := domain.ValidateString(idOrAlias, "record id or alias")
	if err != nil {
		return nil, err
	}

	r.log.Debug("records.view", "target", target)
	reply, err := r.client.Run(ctx, "data", "view", target)
	if err != nil {
		if isMissingRecord(err) {
			return nil, nil
		}
		return nil, err
	}
	if reply.Kind != domain.ReplyRecord || len(reply.Records) == 0 {
		return nil, nil
	}
	rec := reply.Records[0]
	return &rec, nil
}

func (r *Records) Exists(ctx context.Context, idOrAlias string) (bool, error) {
	rec, err := r.View(ctx, idOrAlias)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Create creates a record titled title. The alias defaults to the title.
func (r *Records) Create(ctx context.Context, title string, opts domain.RecordOptions, co CreateOptions) (domain.Record, error) {
	if strings.TrimSpace(opts.Alias) == "" {
		opts.Alias = title
	}
	alias, changed := opts.CleanedAlias()
	if changed {
		r.log.Info("records.alias_cleaned", "from", opts.Alias, "to", alias)
	}
	opts.Alias = alias

	if err := r.checkMetadataFile(opts.MetadataFile); err != nil {
		return domain.Record{}, err
	}

	args, err := opts.CreateArgs(title)
	if err != nil {
		return domain.Record{}, err
	}

	if co.CheckExisting && alias != "" {
		exists, err := r.Exists(ctx, alias)
		if err != nil {
			return domain.Record{}, err
		}
		if exists {
			return domain.Record{}, &domain.OpError{
				Op:   "records.create",
				Kind: domain.KindConflict,
				Path: alias,
				Err:  fmt.Errorf("a data record with alias %q already exists in DataFed: %w", alias, domain.ErrAlreadyExists),
			}
		}
	}

	r.log.Info("records.create", "title", strings.TrimSpace(title), "alias", alias)
	reply, err := r.client.Run(ctx, args...)
	if err != nil {
		return domain.Record{}, err
	}
	if reply.Kind != domain.ReplyRecord || len(reply.Records) == 0 {
		return domain.Record{}, unexpectedReply("records.create", alias, reply, domain.ReplyRecord)
	}
	return reply.Records[0], nil
}

func (r *Records) Update(ctx context.Context, id string, opts domain.RecordOptions) (domain.Record, error) {
	if alias, changed := opts.CleanedAlias(); changed {
		r.log.Info("records.alias_cleaned", "from", opts.Alias, "to", alias)
	}
	if err := r.checkMetadataFile(opts.MetadataFile); err != nil {
		return domain.Record{}, err
	}

	args, err := opts.UpdateArgs(id)
	if err != nil {
		return domain.Record{}, err
	}

	r.log.Info("records.update", "id", strings.TrimSpace(id))
	reply, err := r.client.Run(ctx, args...)
	if err != nil {
		return domain.Record{}, err
	}
	if reply.Kind != domain.ReplyRecord || len(reply.Records) == 0 {
		return domain.Record{}, unexpectedReply("records.update", id, reply, domain.ReplyRecord)
	}
	return reply.Records[0], nil
}

// Metadata evaluates JSONPath expressions against the metadata of a record.
func (r *Records) Metadata(ctx context.Context, idOrAlias string, exprs []string) ([]ucextract.Result, error) {
	rec, err := r.View(ctx, idOrAlias)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, &domain.OpError{
			Op:   "records.metadata",
			Kind: domain.KindNotFound,
			Path: idOrAlias,
			Err:  domain.ErrNotFound,
		}
	}
	return ucextract.Apply(rec.Metadata, exprs), nil
}

func (r *Records) checkMetadataFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" || r.meta == nil {
		return nil
	}
	return r.meta.Check(path)
}

func isMissingRecord(err error) bool {
	msg := strings.ToLower(domain.RemoteMessage(err))
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found")
}

func unexpectedReply(op, target string, reply domain.Reply, want domain.ReplyKind) error {
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindRemote,
		Path: target,
		Err:  fmt.Errorf("expected a %s reply from DataFed, got %q", want, reply.Kind),
	}
}
