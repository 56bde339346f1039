// Package resolver decides whether a Python import refers to the scanned
// project or to a third-party package.
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PackageMarker is the file whose presence makes a directory an importable package.
const PackageMarker = "__init__.py"

const classifyCacheSize = 4096

// Resolver classifies import roots for one scan root. The root set is
// computed on first use and read-only afterwards; a Resolver is safe for
// concurrent use by parser workers.
type Resolver struct {
	root string

	once  sync.Once
	roots map[string]bool

	cache *lru.Cache[string, bool]
}

// New creates a Resolver for root. Nothing is read until the first lookup.
func New(root string) *Resolver {
	cache, _ := lru.New[string, bool](classifyCacheSize)
	return &Resolver{root: root, cache: cache}
}

// Root returns the scan root this Resolver was built for.
func (r *Resolver) Root() string {
	return r.root
}

// Packages returns the internal package root names, sorted.
func (r *Resolver) Packages() []string {
	r.once.Do(r.load)
	out := make([]string, 0, len(r.roots))
	for name := range r.roots {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// load collects the root's base name, every immediate subdirectory holding a
// package marker, and every immediate child directory of src/.
func (r *Resolver) load() {
	r.roots = map[string]bool{filepath.Base(r.root): true}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !isDir(r.root, e) {
			continue
		}
		dir := filepath.Join(r.root, e.Name())
		if _, err := os.Stat(filepath.Join(dir, PackageMarker)); err == nil {
			r.roots[e.Name()] = true
		}
		if e.Name() == "src" {
			children, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, c := range children {
				if isDir(dir, c) {
					r.roots[c.Name()] = true
				}
			}
		}
	}
}

// isDir follows symlinks the way os.path.isdir does.
func isDir(parent string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, e.Name()))
	return err == nil && info.IsDir()
}

// IsInternal reports whether the absolute module path belongs to the
// project. Only the first dotted segment is considered.
func (r *Resolver) IsInternal(module string) bool {
	root := RootSegment(module)
	if internal, ok := r.cache.Get(root); ok {
		return internal
	}
	r.once.Do(r.load)
	internal := r.roots[root]
	r.cache.Add(root, internal)
	return internal
}

// Classify reports whether an import is internal. Relative imports
// (level > 0) are always internal.
func (r *Resolver) Classify(module string, level int) bool {
	if level > 0 {
		return true
	}
	return r.IsInternal(module)
}

// RootSegment returns the text before the first dot.
func RootSegment(module string) string {
	if i := strings.IndexByte(module, '.'); i >= 0 {
		return module[:i]
	}
	return module
}
