package manifest

import (
	"fmt"

	"golang.org/x/mod/modfile"
)

// ParseGoMod reads the require directives of a go.mod file. The spec is
// "path version".
func ParseGoMod(data []byte) ([]Dependency, error) {
	f, err := modfile.ParseLax(GoMod, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	deps := make([]Dependency, 0, len(f.Require))
	for _, req := range f.Require {
		deps = append(deps, Dependency{
			Name:   req.Mod.Path,
			Spec:   req.Mod.Path + " " + req.Mod.Version,
			Source: GoMod,
		})
	}
	return deps, nil
}
