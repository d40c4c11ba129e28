package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// IngestOptions apply to a single data file.
type IngestOptions struct {
	// MetadataPath overrides companion discovery.
	MetadataPath  string
	Collection    string
	Keywords      []string
	Wait          bool
	CheckExisting bool
}

// IngestResult describes what happened to one data file.
type IngestResult struct {
	Path     string
	Alias    string
	Record   domain.Record
	Transfer domain.Transfer
	Skipped  bool
}

// Ingest turns local data files into DataFed records with their raw data.
type Ingest struct {
	records   *Records
	transfers *Transfers
	meta      ports.MetadataSource
	ledger    ports.Ledger
	defaults  domain.DefaultsConfig
	requireMD bool
	log       *slog.Logger
	now       func() time.Time
}

type IngestDeps struct {
	Records   *Records
	Transfers *Transfers
	Metadata  ports.MetadataSource
	// Ledger is optional.
	Ledger ports.Ledger
	Config domain.Config
	Logger *slog.Logger
}

func NewIngest(d IngestDeps) *Ingest {
	return &Ingest{
		records:   d.Records,
		transfers: d.Transfers,
		meta:      d.Metadata,
		ledger:    d.Ledger,
		defaults:  d.Config.Defaults,
		requireMD: d.Config.Push.RequireMetadata,
		log:       orDiscard(d.Logger),
		now:       time.Now,
	}
}

// CreateFromFile creates a record titled after the file and uploads the file
// as its raw data. Metadata comes from opts.MetadataPath or a companion JSON file.
func (in *Ingest) CreateFromFile(ctx context.Context, path string, opts IngestOptions) (IngestResult, error) {
	abs, _, err := statDataFile(path)
	if err != nil {
		return IngestResult{Path: path}, err
	}

	title := domain.TitleFromFile(filepath.Base(abs))
	res := IngestResult{Path: abs, Alias: domain.CleanAlias(title)}
	log := in.log.With("file", abs)

	md := strings.TrimSpace(opts.MetadataPath)
	if md == "" {
		md, err = in.meta.Companion(abs)
		if err != nil {
			return res, err
		}
	}
	if md == "" {
		if in.requireMD {
			return res, &domain.OpError{
				Op:   "ingest.metadata",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  fmt.Errorf("expected %s.json or %s.JSON next to the data file: %w", title, title, domain.ErrNoMetadata),
			}
		}
		log.Warn("ingest.no_metadata")
	} else {
		log.Debug("ingest.metadata", "metadata", md)
	}

	collection := strings.TrimSpace(opts.Collection)
	if collection == "" {
		collection = in.defaults.Collection
	}
	keywords := opts.Keywords
	if keywords == nil {
		keywords = in.defaults.Keywords
	}

	rec, err := in.records.Create(ctx, title, domain.RecordOptions{
		Alias:        title,
		Keywords:     keywords,
		Collection:   collection,
		Repository:   in.defaults.Repository,
		MetadataFile: md,
	}, CreateOptions{CheckExisting: opts.CheckExisting})
	if err != nil {
		return res, err
	}
	res.Record = rec
	log.Info("ingest.record_created", "record", rec.ID, "alias", rec.Alias)

	xfr, err := in.transfers.Put(ctx, rec.ID, abs, opts.Wait)
	res.Transfer = xfr
	if err != nil {
		return res, err
	}
	return res, nil
}

// CheckAndInsert ingests the file unless a record with its alias already exists.
func (in *Ingest) CheckAndInsert(ctx context.Context, path string, opts IngestOptions) (IngestResult, error) {
	abs, info, err := statDataFile(path)
	if err != nil {
		return IngestResult{Path: path}, err
	}
	alias := domain.AliasFromFile(filepath.Base(abs))
	log := in.log.With("file", abs, "alias", alias)

	if in.ledger != nil {
		entry, ok, err := in.ledger.Lookup(abs, info)
		if err != nil {
			log.Warn("ingest.ledger_lookup_failed", "err", err)
		} else if ok {
			log.Info("ingest.skipped", "record", entry.RecordID, "source", "ledger")
			return IngestResult{Path: abs, Alias: alias, Record: domain.Record{ID: entry.RecordID, Alias: entry.Alias}, Skipped: true}, nil
		}
	}

	existing, err := in.records.View(ctx, alias)
	if err != nil {
		return IngestResult{Path: abs, Alias: alias}, err
	}
	if existing != nil {
		log.Info("ingest.skipped", "record", existing.ID, "source", "datafed")
		in.remember(abs, info, existing.ID, alias)
		return IngestResult{Path: abs, Alias: alias, Record: *existing, Skipped: true}, nil
	}

	opts.CheckExisting = false
	res, err := in.CreateFromFile(ctx, abs, opts)
	if err != nil {
		return res, err
	}
	in.remember(abs, info, res.Record.ID, alias)
	return res, nil
}

func (in *Ingest) remember(abs string, info os.FileInfo, recordID, alias string) {
	if in.ledger == nil {
		return
	}
	err := in.ledger.Remember(abs, domain.LedgerEntry{
		RecordID: recordID,
		Alias:    alias,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		PushedAt: in.now().UTC(),
	})
	if err != nil {
		in.log.Warn("ingest.ledger_write_failed", "file", abs, "err", err)
	}
}

func statDataFile(path string) (string, os.FileInfo, error) {
	p, err := domain.ValidateString(path, "data file path")
	if err != nil {
		return "", nil, err
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", nil, &domain.OpError{Op: "ingest.path", Kind: domain.KindInvalidArgument, Path: p, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, &domain.OpError{Op: "ingest.stat", Kind: domain.KindNotFound, Path: abs, Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", nil, &domain.OpError{
			Op:   "ingest.stat",
			Kind: domain.KindInvalidArgument,
			Path: abs,
			Err:  fmt.Errorf("not a regular file: %w", domain.ErrInvalidArgument),
		}
	}
	return abs, info, nil
}
