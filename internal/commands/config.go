package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/pymap/pkg/config"
	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
	"github.com/spf13/cobra"
)

// DotEnvFile is read from the working directory before configuration loads.
const DotEnvFile = ".env"

// ConfigCmd prints the effective configuration for a project as YAML.
func ConfigCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config [path]",
		Short: "Print the effective configuration",
		Long: `Prints the configuration a scan of [path] would use, after applying
pymap.yml, PYMAP_* environment variables and the .env file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			cfg, err := loadConfig(global.configPath, root)
			if err != nil {
				return err
			}

			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			if cfg.Source != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", cfg.Source)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// loadConfig exports .env when it is readable, then reads pymap.yml from the project root or the
// working directory unless an explicit file is given.
func loadConfig(configPath, root string) (*config.Config, error) {
	if err := config.LoadDotEnv(DotEnvFile); err != nil {
		logger.Default().Debug("Ignoring dotenv file", logger.F("file", DotEnvFile), logger.F("error", err))
	}

	dirs := []string{root}
	if wd, err := os.Getwd(); err == nil {
		if abs, err := filepath.Abs(root); err != nil || abs != wd {
			dirs = append(dirs, wd)
		}
	}
	return config.Load(configPath, dirs...)
}
