package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stratum/internal/app"
	"go.trai.ch/stratum/internal/core/domain"
)

func (c *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [elements...]",
		Short: "Show the cache keys and cache state of elements",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.Show(cmd.Context(), args)
			return err
		},
	}
}

func (c *CLI) newGCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Enforce the cache quota and remove unreferenced blobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.GC(cmd.Context())
		},
	}
}

func (c *CLI) newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [elements...]",
		Short: "Upload cached artifacts to the remote cache",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Push(cmd.Context(), args)
		},
	}
}

func (c *CLI) newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull [elements...]",
		Short: "Download artifacts from the remote cache",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Pull(cmd.Context(), args)
		},
	}
}

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a cache directory as a remote cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			dir, _ := cmd.Flags().GetString("dir")
			return c.app.Serve(cmd.Context(), app.ServeOptions{Listen: listen, Dir: dir})
		},
	}
	cmd.Flags().StringP("listen", "l", domain.DefaultListenAddress, "Address to listen on")
	cmd.Flags().String("dir", "", "Cache directory to serve (default: the project's cache)")
	return cmd
}
