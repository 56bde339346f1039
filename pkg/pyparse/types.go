package pyparse

// ModuleInfo is the structure extracted from one Python file.
type ModuleInfo struct {
	File            string          `json:"file"`
	Docstring       string          `json:"docstring"`
	Classes         []*ClassInfo    `json:"classes"`
	Functions       []*FunctionInfo `json:"functions"`
	ImportsInternal []string        `json:"imports_internal"`
	ImportsExternal []string        `json:"imports_external"`
}

// ClassInfo describes a class declared anywhere in the file, including
// classes nested in other classes or functions.
type ClassInfo struct {
	Name       string        `json:"name"`
	Bases      []string      `json:"bases"`
	Methods    []*MethodInfo `json:"methods"`
	Decorators []string      `json:"decorators"`
	Line       int           `json:"line"`
}

// MethodInfo is a function declared directly in a class body. Args omit
// the receiver.
type MethodInfo struct {
	Name       string   `json:"name"`
	Decorators []string `json:"decorators"`
	Args       []string `json:"args"`
}

// FunctionInfo is a function declared as a statement of the module body.
type FunctionInfo struct {
	Name       string   `json:"name"`
	Decorators []string `json:"decorators"`
	Args       []string `json:"args"`
	IsAsync    bool     `json:"is_async"`
	Line       int      `json:"line"`
	ReturnType string   `json:"return_type,omitempty"`
}

// Method returns the method with the given name, or nil.
func (c *ClassInfo) Method(name string) *MethodInfo {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func newModule(file string) *ModuleInfo {
	return &ModuleInfo{
		File:            file,
		Classes:         []*ClassInfo{},
		Functions:       []*FunctionInfo{},
		ImportsInternal: []string{},
		ImportsExternal: []string{},
	}
}
