package conventions

import (
	"sort"
	"strings"
)

// MethodAny is the route method reported for markers without a fixed verb.
const MethodAny = "ANY"

// Detector answers classification questions against a Registry.
type Detector struct {
	registry *Registry
}

// NewDetector creates a Detector over the default patterns
func NewDetector() *Detector {
	return &Detector{
		registry: NewRegistry(),
	}
}

// NewDetectorWithRegistry creates a Detector over a caller-supplied registry
func NewDetectorWithRegistry(r *Registry) *Detector {
	return &Detector{registry: r}
}

// RegisterPattern adds a custom pattern to the detector
func (d *Detector) RegisterPattern(pattern Pattern) {
	d.registry.Register(pattern)
}

// RouteMethod maps a decorator such as "app.get" or "router.api_route" to
// its HTTP method. Only the lower-cased final segment is considered.
func (d *Detector) RouteMethod(decorator string) (string, bool) {
	token := strings.ToLower(LastSegment(decorator))
	for _, p := range d.registry.ByCategory(CategoryRoute) {
		if p.Matches(token) {
			return p.Name, true
		}
	}
	return "", false
}

// IsModelBase reports whether a base class marks its subclass as a data
// model.
func (d *Detector) IsModelBase(base string) bool {
	token := LastSegment(base)
	for _, p := range d.registry.ByCategory(CategoryModel) {
		if p.Matches(token) {
			return true
		}
	}
	return false
}

// Frameworks returns the sorted names of frameworks whose indicators appear
// in imports (exact match) or in deps. deps must hold names normalized with
// NormalizeDependency.
func (d *Detector) Frameworks(imports, deps map[string]bool) []string {
	detected := []string{}
	for _, p := range d.registry.ByCategory(CategoryFramework) {
		for _, indicator := range p.Markers {
			if deps[NormalizeDependency(indicator)] || imports[indicator] {
				detected = append(detected, p.Name)
				break
			}
		}
	}
	sort.Strings(detected)
	return detected
}

// NormalizeDependency lower-cases a distribution name and folds '-' to '_'.
func NormalizeDependency(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// LastSegment returns the part after the final '.' of a dotted name.
func LastSegment(dotted string) string {
	if i := strings.LastIndexByte(dotted, '.'); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}
