package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreDirs are directory name patterns pruned before descending.
// Any directory whose name starts with "." is pruned as well.
var DefaultIgnoreDirs = []string{
	"__pycache__", ".git", ".svn", "node_modules", ".tox", ".mypy_cache",
	".pytest_cache", "venv", ".venv", "env", ".env", "dist", "build",
	".eggs", "*.egg-info", ".idea", ".vscode", "migrations",
}

// DefaultIgnoreFiles are file names never recorded.
var DefaultIgnoreFiles = []string{".DS_Store", "Thumbs.db"}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs   []string // Directory name patterns to prune (default: DefaultIgnoreDirs)
	ExtraIgnore  []string // Patterns added on top of IgnoreDirs
	IgnoreFiles  []string // File names to skip (default: DefaultIgnoreFiles)
	ExcludePaths []string // Root-relative slash paths of files to skip
	Gitignore    bool     // Also honor <root>/.gitignore
}

// Walker prunes a tree according to WalkOptions. Build one per root.
type Walker struct {
	root      string
	dirs      []string
	files     map[string]bool
	excluded  map[string]bool
	gitignore *ignore.GitIgnore
}

// NewWalker resolves opts against root.
func NewWalker(root string, opts WalkOptions) *Walker {
	dirs := opts.IgnoreDirs
	if len(dirs) == 0 {
		dirs = DefaultIgnoreDirs
	}
	dirs = append(append([]string{}, dirs...), opts.ExtraIgnore...)

	names := opts.IgnoreFiles
	if len(names) == 0 {
		names = DefaultIgnoreFiles
	}

	w := &Walker{
		root:     root,
		dirs:     dirs,
		files:    make(map[string]bool, len(names)),
		excluded: make(map[string]bool, len(opts.ExcludePaths)),
	}
	for _, n := range names {
		w.files[n] = true
	}
	for _, p := range opts.ExcludePaths {
		w.excluded[filepath.ToSlash(p)] = true
	}
	if opts.Gitignore {
		w.gitignore = LoadGitignore(root)
	}
	return w
}

// LoadGitignore compiles <root>/.gitignore, or returns nil when absent or invalid.
func LoadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}

// ShouldIgnoreDir reports whether a directory with this base name is pruned.
func (w *Walker) ShouldIgnoreDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return matchAny(w.dirs, name)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func (w *Walker) skipFile(rel, name string) bool {
	if w.files[name] || w.excluded[rel] {
		return true
	}
	return w.gitignore != nil && w.gitignore.MatchesPath(rel)
}

func (w *Walker) skipDir(rel, name string) bool {
	if w.ShouldIgnoreDir(name) {
		return true
	}
	return w.gitignore != nil && w.gitignore.MatchesPath(rel+"/")
}

// Visitor receives the root-relative slash path of every retained entry.
// The root itself is visited as ".". A symlink to a directory is visited as
// a directory but not descended into. Returning filepath.SkipDir from a
// directory visit prunes it.
type Visitor func(rel string, d fs.DirEntry) error

// Walk traverses the tree depth-first in lexical order. Pruned directories are
// never entered. Unreadable subdirectories are skipped; only a failure on the
// root itself is returned.
func (w *Walker) Walk(visitor Visitor) error {
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
				if w.skipDir(rel, d.Name()) {
					return nil
				}
				// WalkDir does not follow links; SkipDir here would end the parent.
				if err := visitor(rel, linkedDir{d}); err != nil && !errors.Is(err, filepath.SkipDir) {
					return err
				}
				return nil
			}
		}

		if d.IsDir() {
			if rel != "." && w.skipDir(rel, d.Name()) {
				return filepath.SkipDir
			}
		} else if w.skipFile(rel, d.Name()) {
			return nil
		}

		return visitor(rel, d)
	})
}

// linkedDir presents a symlink to a directory as a directory. Its target is
// never entered.
type linkedDir struct {
	fs.DirEntry
}

func (linkedDir) IsDir() bool { return true }

func (linkedDir) Type() fs.FileMode { return fs.ModeDir | fs.ModeSymlink }

// Walk is a convenience wrapper building a Walker for a single traversal.
func Walk(root string, opts WalkOptions, visitor Visitor) error {
	return NewWalker(root, opts).Walk(visitor)
}

// ErrNotDirectory is returned when a scan root is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

// RequireDir returns an ErrNotDirectory-wrapped error unless path is a directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return &fs.PathError{Op: "scan", Path: path, Err: ErrNotDirectory}
	}
	return nil
}
