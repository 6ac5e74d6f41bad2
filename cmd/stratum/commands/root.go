// Package commands implements the CLI commands for stratum.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.trai.ch/stratum/internal/adapters/detector"
	"go.trai.ch/stratum/internal/app"
	"go.trai.ch/stratum/internal/build"
)

// CLI represents the command line interface for stratum.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, targets []string, opts app.BuildOptions) error
	Show(ctx context.Context, targets []string) ([]app.ElementStatus, error)
	GC(ctx context.Context) error
	Push(ctx context.Context, targets []string) error
	Pull(ctx context.Context, targets []string) error
	Serve(ctx context.Context, opts app.ServeOptions) error
}

// LogSettings is implemented by loggers whose rendering the global flags control.
type LogSettings interface {
	SetJSON(enable bool)
	SetProfile(profileFn func() termenv.Profile)
}

// New creates a new CLI instance with the given app. When log implements
// LogSettings, the root command gets the --json and --color flags.
func New(a Application, log any) *CLI {
	rootCmd := &cobra.Command{
		Use:           "stratum",
		Short:         "A content-addressed build orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	if settings, ok := log.(LogSettings); ok {
		rootCmd.PersistentFlags().Bool("json", false, "Log JSON records instead of text")
		rootCmd.PersistentFlags().String("color", "auto", "Colour log output: auto, always or never")
		rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
			color, _ := cmd.Flags().GetString("color")
			mode := detector.ResolveMode(detector.DetectEnvironment(os.Stderr), color)
			settings.SetProfile(detector.Profile(mode))
			if enabled, _ := cmd.Flags().GetBool("json"); enabled {
				settings.SetJSON(true)
			}
		}
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(
		c.newBuildCmd(),
		c.newShowCmd(),
		c.newGCCmd(),
		c.newPushCmd(),
		c.newPullCmd(),
		c.newServeCmd(),
		c.newVersionCmd(),
	)

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
