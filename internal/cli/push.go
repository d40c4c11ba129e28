package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/infra/logger"
	"github.com/aalvaropc/dfkit/internal/ports"
	"github.com/aalvaropc/dfkit/internal/ui/tui"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

func pushCmd(g *globalOpts) *cobra.Command {
	var opts usecase.PushOptions
	var wait, noWait, useTUI, noSave bool
	var format string

	c := &cobra.Command{
		Use:   "push <dir>",
		Short: "Create records for every data file of a directory and upload them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			dir, err := resolveDataPath(args[0])
			if err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, true)
			if err != nil {
				return err
			}
			defer func() { _ = ws.Close() }()
			if err := ws.openLedger(); err != nil {
				return err
			}

			opts.Ingest.Wait = resolveWait(cmd, ws.cfg, wait, noWait)

			var store ports.ArtifactStore
			if !noSave {
				store = ws.store
			}
			uc := usecase.NewPushDirectory(ws.session, ws.ingest(), store, ws.cfg, logger.L())

			var (
				run   domain.PushRun
				runID string
			)
			if useTUI {
				files, lerr := usecase.ListDataFiles(dir, ws.cfg.Push.Extensions)
				if lerr != nil {
					return lerr
				}
				run, runID, err = tui.Run(cmd.Context(), tui.Deps{
					Dir:   dir,
					Total: len(files),
					Push: func(ctx context.Context, obs usecase.PushObserver) (domain.PushRun, string, error) {
						o := opts
						o.Observer = obs
						return uc.Execute(ctx, dir, o)
					},
					Logger: logger.L(),
				})
			} else {
				if format == formatPretty {
					opts.Observer = progressPrinter(cmd.ErrOrStderr())
				}
				run, runID, err = uc.Execute(cmd.Context(), dir, opts)
			}

			// No run id means the push never started.
			if run.ID == "" {
				return err
			}
			if perr := printPushRun(cmd.OutOrStdout(), run, runID, format); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}

			if n := run.Count(domain.PushFailed); n > 0 {
				return fmt.Errorf("push finished with %d failed file(s)", n)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&opts.Parallel, "parallel", false, "push several files at once (push.parallel)")
	c.Flags().IntVar(&opts.Workers, "workers", 0, "parallel workers (default push.workers, then CPU count)")
	c.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop scheduling files after the first failure")
	c.Flags().BoolVar(&useTUI, "tui", false, "show an interactive progress view")
	c.Flags().BoolVar(&noSave, "no-save", false, "do not save the run artifact under runs/")
	bindIngestFlags(c, &opts.Ingest)
	bindWaitFlags(c, &wait, &noWait)
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func watchCmd(g *globalOpts) *cobra.Command {
	var opts usecase.WatchOptions
	var wait, noWait bool

	c := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Push data files as they appear in a directory (Ctrl-C to stop)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDataPath(args[0])
			if err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, true)
			if err != nil {
				return err
			}
			defer func() { _ = ws.Close() }()
			if err := ws.openLedger(); err != nil {
				return err
			}

			opts.Ingest.Wait = resolveWait(cmd, ws.cfg, wait, noWait)
			opts.Observer = progressPrinter(cmd.OutOrStdout())

			uc := usecase.NewWatchDirectory(ws.session, ws.ingest(), ws.cfg, logger.L())
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for %v files\n", dir, ws.cfg.Push.Extensions)
			return uc.Execute(cmd.Context(), dir, opts)
		},
	}

	c.Flags().BoolVar(&opts.Initial, "initial", false, "push files already in the directory first")
	c.Flags().DurationVar(&opts.Settle, "settle", usecase.DefaultSettle, "how long a file size must stay unchanged before pushing")
	bindIngestFlags(c, &opts.Ingest)
	bindWaitFlags(c, &wait, &noWait)
	return c
}

func bindIngestFlags(c *cobra.Command, o *usecase.IngestOptions) {
	c.Flags().StringVarP(&o.Collection, "collection", "c", "", "parent collection (defaults.collection if omitted)")
	c.Flags().StringSliceVarP(&o.Keywords, "keyword", "k", nil, "keyword (repeatable or comma separated)")
}

// progressPrinter reports finished files; the observer is called concurrently.
func progressPrinter(w io.Writer) usecase.PushObserver {
	var mu sync.Mutex
	return func(ev usecase.PushEvent) {
		if ev.Kind != usecase.PushFileDone {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if ev.Total > 0 {
			fmt.Fprintf(w, "[%d/%d] ", ev.Index+1, ev.Total)
		} else {
			fmt.Fprintf(w, "[%s] ", time.Now().Format(time.TimeOnly))
		}
		r := ev.Result
		if r.Alias == "" {
			r.Alias = filepath.Base(ev.Path)
		}
		printPushResult(w, "", r)
	}
}

func runsCmd(g *globalOpts) *cobra.Command {
	c := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved push runs",
	}
	c.AddCommand(runsListCmd(g))
	return c
}

func runsListCmd(g *globalOpts) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "list",
		Short: "List saved push runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, true)
			if err != nil {
				return err
			}

			refs, err := ws.store.ListRuns()
			if err != nil {
				return err
			}
			return printRuns(cmd.OutOrStdout(), refs, format)
		},
	}

	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}
