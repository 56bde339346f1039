// Package filesystem walks a project tree with the scanner's prune rules and
// tallies its layout.
//
// # Usage
//
// Tally a tree with the default ignores:
//
//	tree, err := filesystem.ScanStructure(root, filesystem.WalkOptions{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(tree.TotalFiles[".py"])
//
// Visit retained entries directly:
//
//	err := filesystem.Walk(root, filesystem.WalkOptions{
//	    ExtraIgnore: []string{"fixtures"},
//	}, func(rel string, d fs.DirEntry) error {
//	    fmt.Println(rel)
//	    return nil
//	})
//
// Directories whose name starts with "." are always pruned. Dot-files are
// kept, so ".env.example" is still recorded.
package filesystem
