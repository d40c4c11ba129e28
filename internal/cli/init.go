package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/dfkit/internal/buildinfo"
	"github.com/aalvaropc/dfkit/internal/infra/fsworkspace"
	"github.com/aalvaropc/dfkit/internal/infra/logger"
	"github.com/aalvaropc/dfkit/internal/usecase"
)

func initCmd(g *globalOpts) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a dfkit workspace (dfkit.yaml, runs/, .dfkit/)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := strings.TrimSpace(g.workspace)
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				dir = wd
			}
			uc := usecase.NewInitWorkspace(fsworkspace.NewInitializer(), logger.L())
			root, err := uc.Execute(dir, force)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized dfkit workspace at %s\n", root)
			fmt.Fprintln(cmd.OutOrStdout(), "Next: record this machine's Globus endpoint in dfkit.yaml and run `dfkit login`.")
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "overwrite an existing dfkit.yaml")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
