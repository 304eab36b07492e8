// Package commands implements the CLI commands for the optimize tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/optimize/internal/app"
	"go.trai.ch/optimize/internal/build"
	"go.trai.ch/optimize/internal/core/domain"
)

// Application is the part of the application layer the commands drive.
type Application interface {
	Run(ctx context.Context, opts app.RunOptions) (*domain.Report, error)
	Watch(ctx context.Context, opts app.RunOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	Fingerprint(opts app.RunOptions) (string, error)
	Serve(ctx context.Context, r io.Reader, w io.Writer, argv []string) error
	ConfigureLogging(quiet, json bool)
}

// CLI represents the command line interface for optimize.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "optimize",
		Short:         "Emit legacy builds and a shared polyfill bundle for modern JavaScript output",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-dir", "C", "", "Directory where the optimize.yaml lookup starts")
	flags.IntP("concurrency", "j", 0, "Number of executors (0 runs tasks in-band)")
	flags.Bool("source-map", false, "Emit source maps next to every output")
	flags.Bool("minify", true, "Minify outputs and the polyfill bundle")
	flags.Bool("downlevel", true, "Emit legacy variants and the polyfill bundle")
	flags.Bool("verbose", true, "Print the summary after every pass")
	flags.String("polyfills-filename", domain.DefaultPolyfillsFilename, "Name of the shared polyfill bundle")
	flags.String("dequeue", string(domain.DequeueFIFO), "Order idle executors pick pending tasks (fifo or lifo)")
	flags.String("executor", string(domain.ExecutorInProcess), "Executor kind (inprocess, process or wasm)")
	flags.BoolP("quiet", "q", false, "Only log warnings and errors")
	flags.Bool("log-json", false, "Log records as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		quiet, _ := cmd.Flags().GetBool("quiet")
		json, _ := cmd.Flags().GetBool("log-json")
		c.app.ConfigureLogging(quiet, json)
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newFingerprintCmd())
	rootCmd.AddCommand(c.newWorkerCmd())
	rootCmd.AddCommand(c.newVersionCmd())

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

// SetOutput sets the writers for command output and errors.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}

// SetInput sets the reader commands consume, used by the worker.
func (c *CLI) SetInput(in io.Reader) {
	c.rootCmd.SetIn(in)
}

// runOptions collects the directories and the flags the user set explicitly.
func runOptions(cmd *cobra.Command, args []string) app.RunOptions {
	flags := cmd.Flags()
	opts := app.RunOptions{}
	if len(args) > 0 {
		opts.InDir = args[0]
	}
	opts.OutDir, _ = flags.GetString("out")
	opts.ConfigDir, _ = flags.GetString("config-dir")
	opts.Progress, _ = flags.GetBool("progress")

	o := &opts.Overrides
	if flags.Changed("concurrency") {
		v, _ := flags.GetInt("concurrency")
		o.Concurrency = &v
	}
	o.SourceMap = boolFlag(cmd, "source-map")
	o.Minify = boolFlag(cmd, "minify")
	o.Downlevel = boolFlag(cmd, "downlevel")
	o.Verbose = boolFlag(cmd, "verbose")
	o.PolyfillsFilename = stringFlag(cmd, "polyfills-filename")
	o.Dequeue = stringFlag(cmd, "dequeue")
	o.Executor = stringFlag(cmd, "executor")
	return opts
}

func boolFlag(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
