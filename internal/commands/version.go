package commands

import (
	"fmt"

	"github.com/simonhull/firebird-suite/pymap"
	"github.com/spf13/cobra"
)

// VersionCmd prints the pymap version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pymap v%s\n", pymap.Version)
		},
	}
}
