package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/infra/logger"
	"github.com/aalvaropc/dfkit/internal/infra/workspacefinder"
	"github.com/aalvaropc/dfkit/internal/ui/tui"
)

// globalOpts carries the persistent flags shared by every command.
type globalOpts struct {
	debug     bool
	verbose   bool
	workspace string

	stderr  io.Writer
	cleanup func() error
}

func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := &globalOpts{stderr: stderr}
	cmd := newRootCmd(g)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if g.cleanup != nil {
		_ = g.cleanup()
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", errorMessage(err))
		return 1
	}
	return 0
}

func newRootCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dfkit",
		Short:         "dfkit - helpers around the DataFed command-line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cleanup, err := logger.Setup(logger.Config{
				Root:    logRoot(g.workspace),
				Debug:   g.debug,
				Verbose: g.verbose,
				Console: g.stderr,
			})
			if err != nil {
				// Logging is best effort; commands still run.
				fmt.Fprintln(g.stderr, "warning: file logging disabled:", err)
			}
			g.cleanup = cleanup
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging to .dfkit/logs/dfkit.log")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "also print log records to stderr")
	cmd.PersistentFlags().StringVarP(&g.workspace, "workspace", "w", "", "workspace root (autodetected if omitted)")

	cmd.AddCommand(
		initCmd(g),
		loginCmd(g),
		aliasCmd(),
		sizeCmd(),
		lsCmd(g),
		viewCmd(g),
		existsCmd(g),
		createCmd(g),
		updateCmd(g),
		putCmd(g),
		moveCmd(g),
		ingestCmd(g),
		pushCmd(g),
		watchCmd(g),
		runsCmd(g),
		versionCmd(),
	)
	return cmd
}

// logRoot picks where .dfkit/logs lives: the explicit workspace, the
// detected one, or the working directory.
func logRoot(workspaceFlag string) string {
	if w := strings.TrimSpace(workspaceFlag); w != "" {
		if abs, err := filepath.Abs(w); err == nil {
			return abs
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if root, ferr := workspacefinder.NewFinder().FindRoot(wd); ferr == nil && root != "" {
		return root
	}
	return wd
}

// errorMessage prefers the short explanation for classified errors and
// falls back to the raw message for cobra's own usage errors.
func errorMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "interrupted"
	}
	var oe *domain.OpError
	if errors.As(err, &oe) {
		return tui.UserMessage(err)
	}
	return err.Error()
}
