package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/pymap"
	"github.com/simonhull/firebird-suite/pymap/pkg/filesystem"
	"github.com/simonhull/firebird-suite/pymap/pkg/output"
	"github.com/simonhull/firebird-suite/pymap/pkg/projectmap"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// run executes the CLI and captures progress and error output.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	restore := output.SetWriters(&out, &errOut)
	defer restore()

	err = Run(context.Background(), args)
	return out.String(), errOut.String(), err
}

func sampleProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"requirements.txt": "flask==2.0.1  # web framework\n",
		"app.py":           "from flask import Flask\n\napp = Flask(__name__)\n\n@app.get(\"/x\")\ndef x():\n    return 'x'\n",
		"models.py":        "from pydantic import BaseModel\n\nclass Item(BaseModel):\n    name: str\n",
	})
	return root
}

func TestRun_Scan(t *testing.T) {
	root := sampleProject(t)

	stdout, stderr, err := run(t, root)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	outPath := filepath.Join(root, projectmap.DefaultFileName)
	for _, line := range []string{
		"Scanning: " + root,
		"  Structure: 3 files",
		"  Modules: 2 Python files parsed",
		"  Routes: 1 endpoints found",
		"  Models: 1 data models found",
		"  Dependencies: 1 packages",
		"  Frameworks: flask, pydantic",
		"Output: " + outPath,
		"Summary: 2 modules, 1 routes, 1 models, 1 deps",
	} {
		assert.Contains(t, stdout, line+"\n")
	}

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	info := doc["project_info"].(map[string]any)
	assert.Equal(t, filepath.Base(root), info["name"])
	assert.Equal(t, root, info["root_path"])
	assert.Equal(t, []any{"flask", "pydantic"}, info["detected_frameworks"])

	routes := doc["routes"].([]any)
	require.Len(t, routes, 1)
	assert.Equal(t, map[string]any{
		"method":    "GET",
		"decorator": "app.get",
		"function":  "x",
		"file":      "app.py",
		"line":      float64(6),
	}, routes[0])
}

func TestRun_RerunIsByteIdentical(t *testing.T) {
	root := sampleProject(t)
	outPath := filepath.Join(root, projectmap.DefaultFileName)

	_, _, err := run(t, root, "--workers", "2")
	require.NoError(t, err)
	first, err := os.ReadFile(outPath)
	require.NoError(t, err)

	stdout, _, err := run(t, root, "--workers", "2")
	require.NoError(t, err)
	second, err := os.ReadFile(outPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, stdout, "Structure: 3 files")
}

func TestRun_OutputFlag(t *testing.T) {
	root := sampleProject(t)
	outPath := filepath.Join(t.TempDir(), "map.json")

	stdout, _, err := run(t, root, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Output: "+outPath)

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, projectmap.DefaultFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))

	stdout, stderr, err := run(t, file)
	require.Error(t, err)
	assert.True(t, errors.Is(err, filesystem.ErrNotDirectory))
	assert.Equal(t, "Error: "+file+" is not a directory\n", stderr)
	assert.Empty(t, stdout)

	_, err = os.Stat(filepath.Join(dir, projectmap.DefaultFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_WriteFailure(t *testing.T) {
	root := sampleProject(t)

	_, stderr, err := run(t, root, "-o", filepath.Join(root, "missing", "map.json"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(stderr, "Error: "))
}

func TestRun_ConfigFile(t *testing.T) {
	root := sampleProject(t)
	writeTree(t, root, map[string]string{
		"pymap.yml":        "output: custom.json\nignore_dirs:\n  - vendored\nlog_level: error\n",
		"vendored/lib.py":  "def skipped(): pass\n",
		"keep/__init__.py": "",
	})

	t.Chdir(root)

	_, _, err := run(t, ".")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "custom.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "vendored/lib.py")
	assert.Contains(t, string(data), `"keep/__init__.py"`)
}

func TestRun_DotEnvNeverFailsScan(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{"virtualenv directory", map[string]string{".env/bin/activate": "export VIRTUAL_ENV=x\n"}},
		{"malformed file", map[string]string{".env": "this is not a dotenv line\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := sampleProject(t)
			writeTree(t, root, tt.files)
			t.Chdir(root)

			_, stderr, err := run(t, ".")
			require.NoError(t, err)
			assert.Empty(t, stderr)

			data, err := os.ReadFile(filepath.Join(root, projectmap.DefaultFileName))
			require.NoError(t, err)
			assert.Contains(t, string(data), `"file": "app.py"`)
			assert.NotContains(t, string(data), "bin/activate")
		})
	}
}

func TestRootCmd_LongHelpNamesSubcommandShadowing(t *testing.T) {
	assert.Contains(t, RootCmd().Long, "./config")
}

func TestRun_ScanDirectoryNamedLikeSubcommand(t *testing.T) {
	parent := t.TempDir()
	writeTree(t, parent, map[string]string{"config/app.py": "def ping():\n    return 1\n"})
	t.Chdir(parent)

	_, _, err := run(t, "./config")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(parent, "config", projectmap.DefaultFileName))
}

func TestRootCmd_Version(t *testing.T) {
	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "pymap v"+pymap.Version+"\n", out.String())
}

func TestRootCmd_Config(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pymap.yml": "workers: 2\nrespect_gitignore: true\n"})

	cmd := RootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", root})

	require.NoError(t, cmd.Execute())
	text := out.String()
	assert.Contains(t, text, "# "+filepath.Join(root, "pymap.yml")+"\n")
	assert.Contains(t, text, "workers: 2\n")
	assert.Contains(t, text, "respect_gitignore: true\n")
	assert.Contains(t, text, "log_level: warn\n")
}

func TestExcludedPaths(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "shop")

	assert.Equal(t, []string{"project_map.json"}, excludedPaths(root, filepath.Join(root, "project_map.json")))
	assert.Equal(t, []string{"out/map.json"}, excludedPaths(root, filepath.Join(root, "out", "map.json")))
	assert.Equal(t, []string{"..map.json"}, excludedPaths(root, filepath.Join(root, "..map.json")))
	assert.Nil(t, excludedPaths(root, filepath.Join(root, "..", "map.json")))
}

func TestDescribe(t *testing.T) {
	err := filesystem.RequireDir("/definitely/missing")
	assert.Equal(t, "/definitely/missing is not a directory", describe(err))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}
