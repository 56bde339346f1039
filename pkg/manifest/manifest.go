// Package manifest reads declared dependencies from the manifest files at a
// project root.
package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
)

// Manifest file names, in scan order.
const (
	Requirements = "requirements.txt"
	Pyproject    = "pyproject.toml"
	SetupPy      = "setup.py"
	GoMod        = "go.mod"
)

// Dependency is one declared dependency. Spec is the raw requirement text
// where the source carries one.
type Dependency struct {
	Name   string `json:"name"`
	Spec   string `json:"spec,omitempty"`
	Source string `json:"source"`
}

// Reader parses one manifest file.
type Reader func(data []byte) ([]Dependency, error)

type source struct {
	file string
	read Reader
}

var sources = []source{
	{Requirements, ParseRequirements},
	{Pyproject, ParsePyproject},
	{SetupPy, ParseSetupPy},
	{GoMod, ParseGoMod},
}

// Scan reads every known manifest under root and concatenates their
// dependencies in source order. Duplicates across sources are kept. A missing
// or malformed manifest contributes nothing.
func Scan(root string, log logger.Logger) []Dependency {
	if log == nil {
		log = logger.Default()
	}

	deps := []Dependency{}
	for _, src := range sources {
		path := filepath.Join(root, src.file)
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Debug("Skipping unreadable manifest", logger.F("file", src.file), logger.F("error", err))
			}
			continue
		}

		found, err := src.read(data)
		if err != nil {
			log.Debug("Skipping malformed manifest", logger.F("file", src.file), logger.F("error", err))
			continue
		}

		log.Debug("Read manifest", logger.F("file", src.file), logger.F("dependencies", len(found)))
		deps = append(deps, found...)
	}
	return deps
}

// Names returns the dependency names in order.
func Names(deps []Dependency) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = d.Name
	}
	return out
}
