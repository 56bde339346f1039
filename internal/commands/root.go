package commands

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/simonhull/firebird-suite/pymap"
	"github.com/simonhull/firebird-suite/pymap/pkg/filesystem"
	"github.com/simonhull/firebird-suite/pymap/pkg/output"
	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	verbose    bool
	configPath string
}

// RootCmd creates and returns the root command. Running it without a
// subcommand scans a project.
func RootCmd() *cobra.Command {
	global := &globalOptions{}
	scan := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "pymap [path]",
		Short: "Map the structure of a Python codebase",
		Long: `pymap walks a Python project and writes project_map.json: directory layout,
classes, functions, decorators and imports per module, plus routes, data
models, declared dependencies, deploy configuration and detected frameworks.

The subcommand names take precedence over the path argument: to scan a
directory called "config" or "version", write it as ./config or ./version.

Examples:
  pymap                      # scan the current directory
  pymap ../shop -o map.json  # scan ../shop, write map.json
  pymap . --respect-gitignore -w 4`,
		Version:       pymap.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(global.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, global, scan, args)
		},
	}

	cmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVarP(&global.configPath, "config", "c", "", "Path to configuration file (default: pymap.yml in the project or working directory)")
	scan.bind(cmd)

	cmd.AddCommand(VersionCmd())
	cmd.AddCommand(ConfigCmd(global))

	return cmd
}

// Execute runs the CLI with os.Args and reports any failure on stderr.
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:])
}

// Run executes the root command with args.
func Run(ctx context.Context, args []string) error {
	cmd := RootCmd()
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		output.Error("Error: " + describe(err))
	}
	return err
}

// describe renders err for the terminal. A scan root that is not a directory
// is reported by path alone.
func describe(err error) string {
	var pathErr *fs.PathError
	if errors.Is(err, filesystem.ErrNotDirectory) && errors.As(err, &pathErr) {
		return pathErr.Path + " is not a directory"
	}
	return err.Error()
}
