package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/simonhull/firebird-suite/pymap/pkg/analyzer"
	"github.com/simonhull/firebird-suite/pymap/pkg/config"
	"github.com/simonhull/firebird-suite/pymap/pkg/conventions"
	"github.com/simonhull/firebird-suite/pymap/pkg/filesystem"
	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
	"github.com/simonhull/firebird-suite/pymap/pkg/output"
	"github.com/simonhull/firebird-suite/pymap/pkg/projectmap"
	"github.com/spf13/cobra"
)

// scanOptions holds the flags of the scan (root) command.
type scanOptions struct {
	output           string
	workers          int
	respectGitignore bool
}

func (o *scanOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output file path (default: project_map.json in the project directory)")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 0, "Number of parse workers (default: number of CPUs)")
	cmd.Flags().BoolVar(&o.respectGitignore, "respect-gitignore", false, "Skip files matched by the project's .gitignore")
}

// apply overrides cfg with the flags that were set explicitly.
func (o *scanOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("respect-gitignore") {
		cfg.RespectGitignore = o.respectGitignore
	}
}

func runScan(cmd *cobra.Command, global *globalOptions, opts *scanOptions, args []string) error {
	projectPath := "."
	if len(args) > 0 {
		projectPath = args[0]
	}

	root, err := filepath.Abs(projectPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", projectPath, err)
	}
	if err := filesystem.RequireDir(root); err != nil {
		return err
	}

	cfg, err := loadConfig(global.configPath, root)
	if err != nil {
		return err
	}
	opts.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewDefaultLogger()
	log.SetLevel(cfg.Level())
	if global.verbose {
		log.SetLevel(logger.LevelDebug)
	}
	logger.SetDefault(log)
	if cfg.Source != "" {
		output.Verbose("Config: " + cfg.Source)
	}

	outPath, err := resolveOutput(root, cfg.Output)
	if err != nil {
		return err
	}

	output.Info("Scanning: " + root)

	a := analyzer.NewAnalyzer(conventions.NewDetector()).WithLogger(log)
	result, err := a.Scan(cmd.Context(), root, analyzer.Options{
		Workers: cfg.Workers,
		Walk: filesystem.WalkOptions{
			ExtraIgnore:  cfg.IgnoreDirs,
			ExcludePaths: excludedPaths(root, outPath),
			Gitignore:    cfg.RespectGitignore,
		},
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	pm := projectmap.Assemble(result)
	printStages(pm, result)

	if err := projectmap.Write(outPath, pm); err != nil {
		return err
	}

	s := pm.Summarize()
	output.Info("")
	output.Success("Output: " + outPath)
	output.Info(fmt.Sprintf("Summary: %d modules, %d routes, %d models, %d deps",
		s.Modules, s.Routes, s.Models, s.Dependencies))

	return nil
}

func printStages(pm *projectmap.ProjectMap, result *analyzer.Result) {
	s := pm.Summarize()
	output.Stepf("Structure: %d files", s.Files)
	output.Stepf("Modules: %d Python files parsed", s.Modules)
	output.Stepf("Routes: %d endpoints found", s.Routes)
	output.Stepf("Models: %d data models found", s.Models)
	output.Stepf("Dependencies: %d packages", s.Dependencies)

	frameworks := "none detected"
	if len(pm.ProjectInfo.DetectedFrameworks) > 0 {
		frameworks = strings.Join(pm.ProjectInfo.DetectedFrameworks, ", ")
	}
	output.Step("Frameworks: " + frameworks)

	if len(result.Packages) > 0 {
		const label = "Internal packages: "
		indent := strings.Repeat(" ", 4+len(label))
		output.Verbose(label + output.Wrap(result.Packages, output.Width(), indent))
	}
}

// resolveOutput returns the absolute output path. Relative paths are taken
// from the working directory.
func resolveOutput(root, path string) (string, error) {
	if path == "" {
		return filepath.Join(root, projectmap.DefaultFileName), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving output %s: %w", path, err)
	}
	return abs, nil
}

// excludedPaths keeps the output file out of the scan when it lives inside
// the root.
func excludedPaths(root, outPath string) []string {
	rel, err := filepath.Rel(root, outPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel)}
}
