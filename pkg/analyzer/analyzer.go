// Package analyzer runs the staged project scan: walk, parse, extract routes
// and models, read manifests and configuration, detect frameworks.
package analyzer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/simonhull/firebird-suite/pymap/pkg/conventions"
	"github.com/simonhull/firebird-suite/pymap/pkg/filesystem"
	"github.com/simonhull/firebird-suite/pymap/pkg/infra"
	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
	"github.com/simonhull/firebird-suite/pymap/pkg/manifest"
	"github.com/simonhull/firebird-suite/pymap/pkg/pyparse"
	"github.com/simonhull/firebird-suite/pymap/pkg/resolver"
)

// PythonExt selects the files handed to the parser.
const PythonExt = ".py"

// ConventionDetector classifies decorators, base classes and framework
// indicators.
type ConventionDetector interface {
	RouteMethod(decorator string) (string, bool)
	IsModelBase(base string) bool
	Frameworks(imports, deps map[string]bool) []string
}

// Options tunes a single scan.
type Options struct {
	// Workers bounds the parse stage. Zero or less means runtime.NumCPU().
	Workers int
	Walk    filesystem.WalkOptions
}

// Result holds every stage output of one scan.
type Result struct {
	Root           string
	Tree           *filesystem.Tree
	Packages       []string
	Modules        []*pyparse.ModuleInfo
	Routes         []RouteRecord
	Models         []ModelRecord
	Dependencies   []manifest.Dependency
	Configs        *infra.Configs
	Infrastructure *infra.Infrastructure
	Frameworks     []string
}

// Analyzer scans Python projects
type Analyzer struct {
	detector ConventionDetector
	logger   logger.Logger
}

// NewAnalyzer creates a new Analyzer. A nil detector selects the default
// convention tables.
func NewAnalyzer(detector ConventionDetector) *Analyzer {
	if detector == nil {
		detector = conventions.NewDetector()
	}
	return &Analyzer{
		detector: detector,
		logger:   logger.Default(),
	}
}

// WithLogger returns a new Analyzer with the specified logger
func (a *Analyzer) WithLogger(log logger.Logger) *Analyzer {
	return &Analyzer{
		detector: a.detector,
		logger:   log,
	}
}

// Scan analyzes the project at rootPath. The root must be a directory;
// otherwise the error wraps filesystem.ErrNotDirectory. Per-file problems are
// logged and skipped. Cancelling ctx aborts the scan with ctx.Err().
func (a *Analyzer) Scan(ctx context.Context, rootPath string, opts Options) (*Result, error) {
	root, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rootPath, err)
	}
	if err := filesystem.RequireDir(root); err != nil {
		return nil, err
	}

	a.logger.Info("Starting project scan", logger.F("path", root))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := filesystem.ScanStructure(root, opts.Walk)
	if err != nil {
		return nil, fmt.Errorf("scanning structure: %w", err)
	}
	a.logger.Debug("Structure scanned",
		logger.F("files", tree.FileCount()),
		logger.F("directories", len(tree.Structure)))

	res := resolver.New(root)
	modules, err := a.parseModules(ctx, root, tree.FilesWithExt(PythonExt), res, opts.Workers)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Root:     root,
		Tree:     tree,
		Packages: res.Packages(),
		Modules:  modules,
	}

	result.Routes = ExtractRoutes(a.detector, modules)
	result.Models = ExtractModels(a.detector, modules)
	result.Dependencies = manifest.Scan(root, logger.Component(a.logger, "manifest"))

	infraLog := logger.Component(a.logger, "infra")
	result.Configs = infra.ScanConfigs(root, infraLog)
	result.Infrastructure = infra.ScanInfrastructure(root, tree.Files, infraLog)
	result.Frameworks = DetectFrameworks(a.detector, modules, result.Dependencies)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Info("Project scan complete",
		logger.F("modules", len(result.Modules)),
		logger.F("routes", len(result.Routes)),
		logger.F("models", len(result.Models)),
		logger.F("dependencies", len(result.Dependencies)))

	return result, nil
}
