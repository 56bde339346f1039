package analyzer

import (
	"github.com/simonhull/firebird-suite/pymap/pkg/conventions"
	"github.com/simonhull/firebird-suite/pymap/pkg/manifest"
	"github.com/simonhull/firebird-suite/pymap/pkg/pyparse"
)

// DetectFrameworks matches framework indicators against the union of all
// external imports and the normalized dependency names. The result is sorted.
func DetectFrameworks(d ConventionDetector, modules []*pyparse.ModuleInfo, deps []manifest.Dependency) []string {
	imports := make(map[string]bool)
	for _, mod := range modules {
		for _, imp := range mod.ImportsExternal {
			imports[imp] = true
		}
	}

	names := make(map[string]bool, len(deps))
	for _, dep := range deps {
		names[conventions.NormalizeDependency(dep.Name)] = true
	}

	return d.Frameworks(imports, names)
}
