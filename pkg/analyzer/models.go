package analyzer

import (
	"strings"

	"github.com/simonhull/firebird-suite/pymap/pkg/pyparse"
)

// ModelRecord is a class inheriting from a recognized data model base.
type ModelRecord struct {
	Name    string   `json:"name"`
	Bases   []string `json:"bases"`
	Fields  []string `json:"fields"`
	Methods []string `json:"methods"`
	File    string   `json:"file"`
}

// ExtractModels reports every class with at least one model base. Fields are
// the __init__ parameters; methods are the public method names.
func ExtractModels(d ConventionDetector, modules []*pyparse.ModuleInfo) []ModelRecord {
	models := []ModelRecord{}
	for _, mod := range modules {
		for _, cls := range mod.Classes {
			if !isModel(d, cls) {
				continue
			}

			fields := []string{}
			if init := cls.Method("__init__"); init != nil {
				fields = append(fields, init.Args...)
			}

			methods := []string{}
			for _, m := range cls.Methods {
				if !strings.HasPrefix(m.Name, "_") {
					methods = append(methods, m.Name)
				}
			}

			models = append(models, ModelRecord{
				Name:    cls.Name,
				Bases:   cls.Bases,
				Fields:  fields,
				Methods: methods,
				File:    mod.File,
			})
		}
	}
	return models
}

func isModel(d ConventionDetector, cls *pyparse.ClassInfo) bool {
	for _, base := range cls.Bases {
		if d.IsModelBase(base) {
			return true
		}
	}
	return false
}
