package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

func aliasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alias <title>",
		Short: "Print the alias DataFed would accept for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), domain.CleanAlias(strings.Join(args, " ")))
			return nil
		},
	}
}

func sizeCmd() *cobra.Command {
	var decimals int

	c := &cobra.Command{
		Use:   "size <bytes>",
		Short: "Format a byte count (1024 steps)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return &domain.OpError{
					Op:   "cli.size",
					Kind: domain.KindInvalidArgument,
					Err:  fmt.Errorf("%q is not a byte count", args[0]),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatSize(n, decimals))
			return nil
		},
	}

	c.Flags().IntVar(&decimals, "decimals", 2, "digits after the decimal point")
	return c
}

func lsCmd(g *globalOpts) *cobra.Command {
	var opts usecase.ListOptions
	var format string

	c := &cobra.Command{
		Use:   "ls <collection>",
		Short: "List the items of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			listing, err := ws.records.List(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printListing(cmd.OutOrStdout(), args[0], listing, format)
		},
	}

	c.Flags().IntVarP(&opts.Offset, "offset", "O", 0, "skip this many items")
	c.Flags().IntVarP(&opts.Count, "count", "C", 0, "list at most this many items")
	c.Flags().StringVarP(&opts.Project, "project", "p", "", "project owning the collection")
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func viewCmd(g *globalOpts) *cobra.Command {
	var fields []string
	var format string

	c := &cobra.Command{
		Use:   "view <id|alias>",
		Short: "Show a record, or selected metadata fields with --field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			if len(fields) > 0 {
				results, err := ws.records.Metadata(cmd.Context(), args[0], fields)
				if err != nil {
					return err
				}
				return printExtracts(cmd.OutOrStdout(), args[0], results, format)
			}

			rec, err := ws.records.View(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return &domain.OpError{Op: "cli.view", Kind: domain.KindNotFound, Path: args[0], Err: domain.ErrNotFound}
			}
			return printRecord(cmd.OutOrStdout(), *rec, format)
		},
	}

	c.Flags().StringArrayVarP(&fields, "field", "f", nil, "JSONPath over the record metadata (repeatable), e.g. $.sample.name")
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func existsCmd(g *globalOpts) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "exists <id|alias>",
		Short: "Report whether a record exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			ok, err := ws.records.Exists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": args[0], "exists": ok})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}

	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

// recordFlags binds the options shared by create and update.
type recordFlags struct {
	alias        string
	description  string
	keywords     []string
	rawDataFile  string
	extension    string
	metadataFile string
	metadata     string
	deps         []string
}

func (f *recordFlags) bind(c *cobra.Command) {
	c.Flags().StringVar(&f.alias, "alias", "", "record alias (cleaned before sending)")
	c.Flags().StringVarP(&f.description, "description", "d", "", "record description")
	c.Flags().StringSliceVarP(&f.keywords, "keyword", "k", nil, "keyword (repeatable or comma separated)")
	c.Flags().StringVar(&f.rawDataFile, "raw-data-file", "", "globus path of raw data to attach")
	c.Flags().StringVar(&f.extension, "extension", "", "override the raw data file extension")
	c.Flags().StringVar(&f.metadataFile, "metadata-file", "", "local JSON file with record metadata")
	c.Flags().StringVarP(&f.metadata, "metadata", "m", "", "record metadata as a JSON object")
	c.Flags().StringArrayVar(&f.deps, "dep", nil, "dependency as type:target, type one of der|comp|ver (repeatable)")
}

func (f *recordFlags) options() (domain.RecordOptions, error) {
	opts := domain.RecordOptions{
		Alias:        f.alias,
		Description:  f.description,
		Keywords:     f.keywords,
		RawDataFile:  f.rawDataFile,
		Extension:    f.extension,
		MetadataFile: f.metadataFile,
	}

	if strings.TrimSpace(f.metadata) != "" {
		var md map[string]any
		if err := json.Unmarshal([]byte(f.metadata), &md); err != nil {
			return opts, &domain.OpError{
				Op:   "cli.metadata",
				Kind: domain.KindInvalidArgument,
				Err:  fmt.Errorf("--metadata must be a JSON object: %v", err),
			}
		}
		opts.Metadata = md
	}

	deps, err := parseDependencies(f.deps)
	if err != nil {
		return opts, err
	}
	opts.AddDependencies = deps
	return opts, nil
}

// parseDependencies reads "type:target" pairs such as "der:d/123".
func parseDependencies(in []string) ([]domain.Dependency, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]domain.Dependency, 0, len(in))
	for _, s := range in {
		typ, target, ok := strings.Cut(s, ":")
		if !ok || strings.TrimSpace(target) == "" {
			return nil, &domain.OpError{
				Op:   "cli.dependency",
				Kind: domain.KindInvalidArgument,
				Err:  fmt.Errorf("dependency %q must look like type:target", s),
			}
		}
		t, err := domain.ParseDependencyType(typ)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Dependency{Type: t, Target: strings.TrimSpace(target)})
	}
	return out, nil
}

func createCmd(g *globalOpts) *cobra.Command {
	var rf recordFlags
	var collection, repository, format string
	var checkExisting bool

	c := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a data record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			opts, err := rf.options()
			if err != nil {
				return err
			}
			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			opts.Collection = firstSet(collection, ws.cfg.Defaults.Collection)
			opts.Repository = firstSet(repository, ws.cfg.Defaults.Repository)
			if opts.Keywords == nil {
				opts.Keywords = ws.cfg.Defaults.Keywords
			}

			rec, err := ws.records.Create(cmd.Context(), args[0], opts, usecase.CreateOptions{CheckExisting: checkExisting})
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), rec, format)
		},
	}

	rf.bind(c)
	c.Flags().StringVarP(&collection, "collection", "c", "", "parent collection (defaults.collection if omitted)")
	c.Flags().StringVarP(&repository, "repository", "r", "", "repository to allocate the record in")
	c.Flags().BoolVar(&checkExisting, "check-existing", true, "fail if a record with the alias already exists")
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func updateCmd(g *globalOpts) *cobra.Command {
	var rf recordFlags
	var title, project, format string
	var removeDeps []string
	var clearDeps bool

	c := &cobra.Command{
		Use:   "update <id|alias>",
		Short: "Update fields of a data record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			opts, err := rf.options()
			if err != nil {
				return err
			}
			opts.Title = title
			opts.Project = project
			opts.ClearDependencies = clearDeps
			if opts.RemoveDependencies, err = parseDependencies(removeDeps); err != nil {
				return err
			}

			ws, err := loadWorkspace(g.workspace, false)
			if err != nil {
				return err
			}

			rec, err := ws.records.Update(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), rec, format)
		},
	}

	rf.bind(c)
	c.Flags().StringVarP(&title, "title", "t", "", "new title")
	c.Flags().StringVarP(&project, "project", "p", "", "project owning the record")
	c.Flags().StringArrayVar(&removeDeps, "remove-dep", nil, "dependency to remove as type:target (repeatable)")
	c.Flags().BoolVar(&clearDeps, "clear-deps", false, "remove all dependencies")
	c.Flags().StringVar(&format, "format", formatPretty, "output format: pretty|json")
	return c
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
