package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

func loginCmd(g *globalOpts) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "login",
		Short: "Check DataFed authentication and make sure a Globus endpoint is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			if err := ws.session.Init(cmd.Context()); err != nil {
				return err
			}

			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"uid":      ws.session.UID(),
					"endpoint": ws.session.Endpoint(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as %s\n", ws.session.UID())
			fmt.Fprintf(cmd.OutOrStdout(), "Globus endpoint: %s\n", ws.session.Endpoint())
			return nil
		},
	}

	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func putCmd(g *globalOpts) *cobra.Command {
	var wait, noWait bool
	var format string

	c := &cobra.Command{
		Use:   "put <record> <path>",
		Short: "Upload a local file as the raw data of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			path, err := resolveDataPath(args[1])
			if err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			w := resolveWait(cmd, ws.cfg, wait, noWait)
			xfr, err := ws.transfers.Put(cmd.Context(), args[0], path, w)
			if err != nil {
				return err
			}
			return printTransfer(cmd.OutOrStdout(), args[0], xfr, format)
		},
	}

	bindWaitFlags(c, &wait, &noWait)
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func moveCmd(g *globalOpts) *cobra.Command {
	var from, to string

	c := &cobra.Command{
		Use:   "move --from <collection> --to <collection> <id>...",
		Short: "Move records from one collection to another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			warnings, err := ws.collections.Move(cmd.Context(), args, from, to)
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d record(s) from %s to %s\n", len(args), from, to)
			return nil
		},
	}

	c.Flags().StringVar(&from, "from", "", "source collection id or alias (required)")
	c.Flags().StringVar(&to, "to", "", "destination collection id or alias (required)")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	return c
}

func ingestCmd(g *globalOpts) *cobra.Command {
	var opts usecase.IngestOptions
	var wait, noWait, check bool
	var format string

	c := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Create a record for a data file (titled after it) and upload the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			path, err := resolveDataPath(args[0])
			if err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}
			defer func() { _ = ws.Close() }()
			if err := ws.openLedger(); err != nil {
				return err
			}

			if err := ws.session.Init(cmd.Context()); err != nil {
				return err
			}

			opts.Wait = resolveWait(cmd, ws.cfg, wait, noWait)
			in := ws.ingest()

			var res usecase.IngestResult
			if check {
				res, err = in.CheckAndInsert(cmd.Context(), path, opts)
			} else {
				res, err = in.CreateFromFile(cmd.Context(), path, opts)
			}
			if err != nil {
				return err
			}
			return printIngest(cmd, res, format)
		},
	}

	c.Flags().StringVar(&opts.MetadataPath, "metadata-file", "", "metadata JSON (default: <name>.json next to the file)")
	c.Flags().StringVarP(&opts.Collection, "collection", "c", "", "parent collection (defaults.collection if omitted)")
	c.Flags().StringSliceVarP(&opts.Keywords, "keyword", "k", nil, "keyword (repeatable or comma separated)")
	c.Flags().BoolVar(&opts.CheckExisting, "check-existing", true, "fail if a record with the alias already exists")
	c.Flags().BoolVar(&check, "skip-existing", false, "skip the file if it was already pushed or its alias exists")
	bindWaitFlags(c, &wait, &noWait)
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func printIngest(cmd *cobra.Command, res usecase.IngestResult, format string) error {
	w := cmd.OutOrStdout()
	if format == formatJSON {
		return printJSON(w, map[string]any{
			"path":            res.Path,
			"alias":           res.Alias,
			"record_id":       res.Record.ID,
			"skipped":         res.Skipped,
			"task_id":         res.Transfer.ID,
			"transfer_status": res.Transfer.Status.String(),
		})
	}
	if res.Skipped {
		fmt.Fprintf(w, "Skipped %s: %s already exists (%s)\n", res.Path, res.Alias, res.Record.ID)
		return nil
	}
	fmt.Fprintf(w, "Created %s (%s) for %s\n", res.Record.ID, res.Alias, res.Path)
	fmt.Fprintf(w, "Transfer %s: %s\n", res.Transfer.ID, res.Transfer.Status)
	return nil
}

func bindWaitFlags(c *cobra.Command, wait, noWait *bool) {
	c.Flags().BoolVar(wait, "wait", false, "block until the Globus transfer finishes")
	c.Flags().BoolVar(noWait, "no-wait", false, "return as soon as the transfer is queued")
	c.MarkFlagsMutuallyExclusive("wait", "no-wait")
}

// resolveWait applies --wait/--no-wait over defaults.wait.
func resolveWait(cmd *cobra.Command, cfg domain.Config, wait, noWait bool) bool {
	switch {
	case cmd.Flags().Changed("wait"):
		return wait
	case cmd.Flags().Changed("no-wait"):
		return !noWait
	default:
		return cfg.Defaults.Wait
	}
}
