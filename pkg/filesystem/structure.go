package filesystem

import (
	"bytes"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileEntry is one retained file and its line count.
type FileEntry struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
}

// Directory lists a retained directory's files and retained subdirectories.
type Directory struct {
	Files   []FileEntry `json:"files"`
	Subdirs []string    `json:"subdirs"`
}

// Tree is the DirectoryWalker result.
type Tree struct {
	// Structure is keyed by root-relative slash path; the root is ".".
	Structure map[string]*Directory
	// TotalFiles and TotalLines are keyed by extension (see Ext).
	TotalFiles map[string]int
	TotalLines map[string]int
	// Files holds every retained file as a root-relative slash path, in walk order.
	Files []string
}

// FileCount returns the number of retained files.
func (t *Tree) FileCount() int {
	return len(t.Files)
}

// FilesWithExt returns retained files whose extension is ext, in walk order.
func (t *Tree) FilesWithExt(ext string) []string {
	var out []string
	for _, f := range t.Files {
		if Ext(path.Base(f)) == ext {
			out = append(out, f)
		}
	}
	return out
}

// ScanStructure walks root once and tallies files, lines and directory layout.
func ScanStructure(root string, opts WalkOptions) (*Tree, error) {
	tree := &Tree{
		Structure:  make(map[string]*Directory),
		TotalFiles: make(map[string]int),
		TotalLines: make(map[string]int),
		Files:      make([]string, 0, 64),
	}

	err := Walk(root, opts, func(rel string, d fs.DirEntry) error {
		if d.IsDir() {
			tree.Structure[rel] = &Directory{Files: []FileEntry{}, Subdirs: []string{}}
			if rel != "." {
				parent := tree.Structure[path.Dir(rel)]
				if parent != nil {
					parent.Subdirs = append(parent.Subdirs, d.Name())
				}
			}
			return nil
		}

		ext := Ext(d.Name())
		lines := CountLines(filepath.Join(root, filepath.FromSlash(rel)))
		tree.TotalFiles[ext]++
		tree.TotalLines[ext] += lines
		tree.Files = append(tree.Files, rel)

		if dir := tree.Structure[path.Dir(rel)]; dir != nil {
			dir.Files = append(dir.Files, FileEntry{Name: d.Name(), Lines: lines})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for rel, dir := range tree.Structure {
		if len(dir.Files) == 0 && len(dir.Subdirs) == 0 {
			delete(tree.Structure, rel)
		}
	}

	return tree, nil
}

// CountLines counts newline-terminated lines plus a trailing unterminated one.
// Unreadable files count as zero.
func CountLines(path string) int {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return 0
	}
	n := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// Ext returns a file name's final suffix using Python pathlib rules: a
// leading dot does not start a suffix and a trailing dot yields none.
//
//	Ext("app.py") == ".py"
//	Ext(".env.example") == ".example"
//	Ext(".gitignore") == ""
func Ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i > 0 && i < len(name)-1 {
		return name[i:]
	}
	return ""
}
