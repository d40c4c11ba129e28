package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

type PushEventKind string

const (
	PushFileStarted PushEventKind = "started"
	PushFileDone    PushEventKind = "done"
)

// PushEvent reports progress of a directory push. Result is set for done events.
type PushEvent struct {
	Kind   PushEventKind
	Path   string
	Index  int
	Total  int
	Result domain.PushResult
}

// PushObserver receives events from several goroutines at once.
type PushObserver func(PushEvent)

type PushOptions struct {
	Parallel bool
	// Workers overrides push.workers from dfkit.yaml when positive.
	Workers  int
	FailFast bool
	Ingest   IngestOptions
	Observer PushObserver
}

// PushDirectory ingests every matching data file of a directory.
type PushDirectory struct {
	session *Session
	ingest  *Ingest
	store   ports.ArtifactStore
	cfg     domain.PushConfig
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewPushDirectory accepts a nil store; runs are then not persisted.
func NewPushDirectory(session *Session, ingest *Ingest, store ports.ArtifactStore, cfg domain.Config, log *slog.Logger) *PushDirectory {
	return &PushDirectory{
		session: session,
		ingest:  ingest,
		store:   store,
		cfg:     cfg.Push,
		log:     orDiscard(log),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Execute returns the run, the artifact id (empty without a store) and an
// error for setup failures, cancellation, or the first failure with FailFast.
// Per-file failures are otherwise only recorded in the run.
func (p *PushDirectory) Execute(ctx context.Context, dir string, opts PushOptions) (domain.PushRun, string, error) {
	d, err := domain.ValidateString(dir, "directory")
	if err != nil {
		return domain.PushRun{}, "", err
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return domain.PushRun{}, "", &domain.OpError{Op: "push.dir", Kind: domain.KindInvalidArgument, Path: d, Err: err}
	}

	files, err := ListDataFiles(abs, p.cfg.Extensions)
	if err != nil {
		return domain.PushRun{}, "", err
	}

	if err := p.session.Init(ctx); err != nil {
		return domain.PushRun{}, "", err
	}

	workers := p.workers(opts)
	run := domain.PushRun{
		ID:         p.newID(),
		Dir:        abs,
		Collection: opts.Ingest.Collection,
		Endpoint:   p.session.Endpoint(),
		Workers:    workers,
		StartedAt:  p.now(),
	}
	log := p.log.With("run", run.ID, "dir", abs)
	log.Info("push.start", "files", len(files), "workers", workers)

	results := make([]domain.PushResult, len(files))
	ran := make([]bool, len(files))
	var mu sync.Mutex

	notify := func(ev PushEvent) {
		if opts.Observer != nil {
			opts.Observer(ev)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			notify(PushEvent{Kind: PushFileStarted, Path: f, Index: i, Total: len(files)})

			start := p.now()
			res, ierr := p.ingest.CheckAndInsert(gctx, f, opts.Ingest)
			pr := toPushResult(f, res, ierr)
			pr.DurationMS = p.now().Sub(start).Milliseconds()

			mu.Lock()
			results[i] = pr
			ran[i] = true
			mu.Unlock()

			notify(PushEvent{Kind: PushFileDone, Path: f, Index: i, Total: len(files), Result: pr})
			if ierr != nil {
				log.Warn("push.file_failed", "file", f, "err", ierr)
				if opts.FailFast {
					return fmt.Errorf("%s: %w", filepath.Base(f), ierr)
				}
			}
			return nil
		})
	}
	groupErr := g.Wait()

	for i := range files {
		if ran[i] {
			run.Results = append(run.Results, results[i])
		}
	}
	run.EndedAt = p.now()

	log.Info("push.done",
		"created", run.Count(domain.PushCreated),
		"skipped", run.Count(domain.PushSkipped),
		"failed", run.Count(domain.PushFailed),
		"not_started", len(files)-len(run.Results),
	)

	var artifactID string
	if p.store != nil {
		id, serr := p.store.SaveRun(run)
		if serr != nil {
			log.Error("push.save_failed", "err", serr)
		} else {
			artifactID = id
		}
	}

	if groupErr != nil {
		return run, artifactID, groupErr
	}
	if err := ctx.Err(); err != nil {
		return run, artifactID, err
	}
	return run, artifactID, nil
}

func (p *PushDirectory) workers(opts PushOptions) int {
	if !opts.Parallel && !p.cfg.Parallel {
		return 1
	}
	w := opts.Workers
	if w <= 0 {
		w = p.cfg.Workers
	}
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return w
}

func toPushResult(path string, res IngestResult, err error) domain.PushResult {
	pr := domain.PushResult{
		Path:     path,
		Alias:    res.Alias,
		RecordID: res.Record.ID,
		Transfer: res.Transfer.Status,
	}
	switch {
	case err != nil:
		pr.Outcome = domain.PushFailed
		pr.Message = err.Error()
		if msg := domain.RemoteMessage(err); msg != "" {
			pr.Message = msg
		}
		if errors.Is(err, domain.ErrNoMetadata) {
			pr.Message = "no companion metadata file"
		}
	case res.Skipped:
		pr.Outcome = domain.PushSkipped
		pr.Message = "already in DataFed"
	default:
		pr.Outcome = domain.PushCreated
	}
	if pr.Alias == "" {
		pr.Alias = domain.AliasFromFile(filepath.Base(path))
	}
	return pr
}

// ListDataFiles lists the regular files directly inside dir whose extension
// is one of exts (case-insensitive), sorted by name.
func ListDataFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return nil, &domain.OpError{Op: "push.list", Kind: kind, Path: dir, Err: err}
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !MatchesExtension(e.Name(), exts) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

func MatchesExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
