package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stratum/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [elements...]",
		Short: "Build elements and their dependencies",
		Long:  "Build the given elements and everything they depend on. Without arguments every element of the project is built.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noRemote, _ := cmd.Flags().GetBool("no-remote")
			push, _ := cmd.Flags().GetBool("push")
			return c.app.Build(cmd.Context(), args, app.BuildOptions{
				NoRemote: noRemote,
				Push:     push,
			})
		},
	}
	cmd.Flags().Bool("no-remote", false, "Ignore the remote cache for this run")
	cmd.Flags().Bool("push", false, "Upload built artifacts to the remote cache")
	cmd.MarkFlagsMutuallyExclusive("no-remote", "push")
	return cmd
}
