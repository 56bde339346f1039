// Package projectmap assembles scan results into the project map document
// and writes it as JSON.
package projectmap

import (
	"path/filepath"

	"github.com/simonhull/firebird-suite/pymap/pkg/analyzer"
	"github.com/simonhull/firebird-suite/pymap/pkg/filesystem"
	"github.com/simonhull/firebird-suite/pymap/pkg/infra"
	"github.com/simonhull/firebird-suite/pymap/pkg/manifest"
	"github.com/simonhull/firebird-suite/pymap/pkg/pyparse"
)

// DefaultFileName is written inside the project root unless another output
// path is given.
const DefaultFileName = "project_map.json"

type ProjectInfo struct {
	Name               string         `json:"name"`
	RootPath           string         `json:"root_path"`
	TotalFiles         map[string]int `json:"total_files"`
	TotalLines         map[string]int `json:"total_lines"`
	DetectedFrameworks []string       `json:"detected_frameworks"`
}

// ProjectMap is the document written by a scan. Field order is the key order
// of the output.
type ProjectMap struct {
	ProjectInfo    ProjectInfo                      `json:"project_info"`
	Structure      map[string]*filesystem.Directory `json:"structure"`
	Modules        []*pyparse.ModuleInfo            `json:"modules"`
	Routes         []analyzer.RouteRecord           `json:"routes"`
	Models         []analyzer.ModelRecord           `json:"models"`
	Dependencies   []manifest.Dependency            `json:"dependencies"`
	Configs        *infra.Configs                   `json:"configs"`
	Infrastructure *infra.Infrastructure            `json:"infrastructure"`
}

// Assemble composes a ProjectMap from a scan result. Nil collections are
// replaced with empty ones so they serialize as [] or {}.
func Assemble(r *analyzer.Result) *ProjectMap {
	pm := &ProjectMap{
		ProjectInfo: ProjectInfo{
			Name:               filepath.Base(r.Root),
			RootPath:           r.Root,
			TotalFiles:         map[string]int{},
			TotalLines:         map[string]int{},
			DetectedFrameworks: orEmpty(r.Frameworks),
		},
		Structure:      map[string]*filesystem.Directory{},
		Modules:        orEmpty(r.Modules),
		Routes:         orEmpty(r.Routes),
		Models:         orEmpty(r.Models),
		Dependencies:   orEmpty(r.Dependencies),
		Configs:        r.Configs,
		Infrastructure: r.Infrastructure,
	}

	if r.Tree != nil {
		if r.Tree.TotalFiles != nil {
			pm.ProjectInfo.TotalFiles = r.Tree.TotalFiles
		}
		if r.Tree.TotalLines != nil {
			pm.ProjectInfo.TotalLines = r.Tree.TotalLines
		}
		if r.Tree.Structure != nil {
			pm.Structure = r.Tree.Structure
		}
	}
	if pm.Configs == nil {
		pm.Configs = &infra.Configs{}
	}
	if pm.Infrastructure == nil {
		pm.Infrastructure = &infra.Infrastructure{}
	}

	return pm
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Summary counts the headline facets of a map.
type Summary struct {
	Files        int
	Modules      int
	Routes       int
	Models       int
	Dependencies int
}

// Summarize returns the counts printed after a scan.
func (pm *ProjectMap) Summarize() Summary {
	files := 0
	for _, n := range pm.ProjectInfo.TotalFiles {
		files += n
	}
	return Summary{
		Files:        files,
		Modules:      len(pm.Modules),
		Routes:       len(pm.Routes),
		Models:       len(pm.Models),
		Dependencies: len(pm.Dependencies),
	}
}
