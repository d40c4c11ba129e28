package usecase

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// DefaultSettle is how long a file size must stay unchanged before it is pushed.
const DefaultSettle = 2 * time.Second

type WatchOptions struct {
	// Initial pushes the files already in the directory before watching.
	Initial  bool
	Settle   time.Duration
	Ingest   IngestOptions
	Observer PushObserver
}

// WatchDirectory pushes data files as they appear in a directory.
type WatchDirectory struct {
	session *Session
	ingest  *Ingest
	exts    []string
	log     *slog.Logger
}

func NewWatchDirectory(session *Session, ingest *Ingest, cfg domain.Config, log *slog.Logger) *WatchDirectory {
	return &WatchDirectory{
		session: session,
		ingest:  ingest,
		exts:    cfg.Push.Extensions,
		log:     orDiscard(log),
	}
}

type pendingFile struct {
	size        int64
	stableSince time.Time
}

// Execute blocks until ctx is cancelled. Failed files are reported to the
// observer and logged; they do not stop the watch.
func (w *WatchDirectory) Execute(ctx context.Context, dir string, opts WatchOptions) error {
	d, err := domain.ValidateString(dir, "directory")
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return &domain.OpError{Op: "watch.dir", Kind: domain.KindInvalidArgument, Path: d, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return &domain.OpError{Op: "watch.dir", Kind: domain.KindNotFound, Path: abs, Err: domain.ErrNotFound}
	}

	if err := w.session.Init(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &domain.OpError{Op: "watch.start", Kind: domain.KindExecution, Path: abs, Err: err}
	}
	defer watcher.Close()

	if err := watcher.Add(abs); err != nil {
		return &domain.OpError{Op: "watch.add", Kind: domain.KindExecution, Path: abs, Err: err}
	}

	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	log := w.log.With("dir", abs)
	log.Info("watch.start", "settle", settle.String(), "initial", opts.Initial)

	if opts.Initial {
		files, err := ListDataFiles(abs, w.exts)
		if err != nil {
			return err
		}
		for _, f := range files {
			if ctx.Err() != nil {
				return nil
			}
			w.handle(ctx, f, opts)
		}
	}

	pending := map[string]*pendingFile{}
	ticker := time.NewTicker(max(settle/4, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("watch.stop", "pending", len(pending))
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !MatchesExtension(ev.Name, w.exts) {
				continue
			}
			pending[ev.Name] = &pendingFile{size: -1, stableSince: time.Now()}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch.error", "err", err)

		case now := <-ticker.C:
			for path, pf := range pending {
				fi, err := os.Stat(path)
				if err != nil || !fi.Mode().IsRegular() {
					delete(pending, path)
					continue
				}
				if fi.Size() != pf.size {
					pf.size = fi.Size()
					pf.stableSince = now
					continue
				}
				if now.Sub(pf.stableSince) < settle {
					continue
				}
				delete(pending, path)
				w.handle(ctx, path, opts)
			}
		}
	}
}

func (w *WatchDirectory) handle(ctx context.Context, path string, opts WatchOptions) {
	if opts.Observer != nil {
		opts.Observer(PushEvent{Kind: PushFileStarted, Path: path})
	}

	start := time.Now()
	res, err := w.ingest.CheckAndInsert(ctx, path, opts.Ingest)
	pr := toPushResult(path, res, err)
	pr.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		w.log.Warn("watch.file_failed", "file", path, "err", err)
	} else {
		w.log.Info("watch.file_done", "file", path, "outcome", pr.Outcome, "record", pr.RecordID)
	}
	if opts.Observer != nil {
		opts.Observer(PushEvent{Kind: PushFileDone, Path: path, Result: pr})
	}
}
