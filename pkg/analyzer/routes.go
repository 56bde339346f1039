package analyzer

import "github.com/simonhull/firebird-suite/pymap/pkg/pyparse"

// RouteRecord is a decorator marking a function or method as an HTTP route.
// Line is only known for top-level functions.
type RouteRecord struct {
	Method    string `json:"method"`
	Decorator string `json:"decorator"`
	Function  string `json:"function"`
	File      string `json:"file"`
	Line      *int   `json:"line,omitempty"`
}

// ExtractRoutes emits one record per route decorator, visiting each module's
// top-level functions before its class methods. Methods are reported as
// "Class.method".
func ExtractRoutes(d ConventionDetector, modules []*pyparse.ModuleInfo) []RouteRecord {
	routes := []RouteRecord{}
	for _, mod := range modules {
		for _, fn := range mod.Functions {
			for _, dec := range fn.Decorators {
				method, ok := d.RouteMethod(dec)
				if !ok {
					continue
				}
				line := fn.Line
				routes = append(routes, RouteRecord{
					Method:    method,
					Decorator: dec,
					Function:  fn.Name,
					File:      mod.File,
					Line:      &line,
				})
			}
		}

		for _, cls := range mod.Classes {
			for _, m := range cls.Methods {
				for _, dec := range m.Decorators {
					method, ok := d.RouteMethod(dec)
					if !ok {
						continue
					}
					routes = append(routes, RouteRecord{
						Method:    method,
						Decorator: dec,
						Function:  cls.Name + "." + m.Name,
						File:      mod.File,
					})
				}
			}
		}
	}
	return routes
}
