package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
)

func TestParseRequirements(t *testing.T) {
	data := []byte(`# core
flask==2.0.1  # web framework

-r base.txt
--index-url https://example.org/simple
requests>=2.28,<3
Django_REST-framework
   gunicorn
==broken
`)

	deps, err := ParseRequirements(data)
	require.NoError(t, err)
	assert.Equal(t, []Dependency{
		{Name: "flask", Spec: "flask==2.0.1  # web framework", Source: Requirements},
		{Name: "requests", Spec: "requests>=2.28,<3", Source: Requirements},
		{Name: "Django_REST-framework", Spec: "Django_REST-framework", Source: Requirements},
		{Name: "gunicorn", Spec: "gunicorn", Source: Requirements},
	}, deps)
}

func TestParseRequirements_CRLF(t *testing.T) {
	deps, err := ParseRequirements([]byte("flask\r\ncelery==5\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"flask", "celery"}, Names(deps))
	assert.Equal(t, "celery==5", deps[1].Spec)
}

func TestParsePyproject(t *testing.T) {
	data := []byte(`[project]
name = "shop"
dependencies = [
    "fastapi>=0.100",
    "pydantic[email]",
    'single-quoted',
    "uvicorn",
]

[project.optional-dependencies]
dev = [
    "pytest",
]

[tool.poetry.dependencies]
python = "^3.11"
`)

	deps, err := ParsePyproject(data)
	require.NoError(t, err)
	assert.Equal(t, []Dependency{
		{Name: "fastapi", Spec: "fastapi>=0.100", Source: Pyproject},
		{Name: "pydantic", Spec: "pydantic[email]", Source: Pyproject},
		{Name: "uvicorn", Spec: "uvicorn", Source: Pyproject},
	}, deps)
}

func TestParsePyproject_InlineListDoesNotCloseBlock(t *testing.T) {
	data := []byte("dependencies = [\"flask\"]\n\"celery\",\n]\n\"ignored\"\n")

	deps, err := ParsePyproject(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"celery"}, Names(deps))
}

func TestParseSetupPy(t *testing.T) {
	data := []byte(`from setuptools import setup

setup(
    name="shop",
    install_requires=[
        "Flask>=2",
        'SQLAlchemy',
        "celery[redis]",
    ],
    extras_require={"dev": ["pytest"]},
)
`)

	deps, err := ParseSetupPy(data)
	require.NoError(t, err)
	assert.Equal(t, []Dependency{
		{Name: "Flask", Source: SetupPy},
		{Name: "SQLAlchemy", Source: SetupPy},
		{Name: "celery", Source: SetupPy},
	}, deps)

	deps, err = ParseSetupPy([]byte("setup(name='x')\n"))
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestParseGoMod(t *testing.T) {
	data := []byte(`module example.com/tools

go 1.22

require (
	github.com/spf13/cobra v1.10.1
	golang.org/x/sync v0.19.0 // indirect
)
`)

	deps, err := ParseGoMod(data)
	require.NoError(t, err)
	assert.Equal(t, []Dependency{
		{Name: "github.com/spf13/cobra", Spec: "github.com/spf13/cobra v1.10.1", Source: GoMod},
		{Name: "golang.org/x/sync", Spec: "golang.org/x/sync v0.19.0", Source: GoMod},
	}, deps)

	_, err = ParseGoMod([]byte("require github.com/missing/version\n"))
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, Requirements, "flask==2.0.1\n")
	writeFile(t, root, Pyproject, "dependencies = [\n  \"flask\",\n]\n")
	writeFile(t, root, SetupPy, "install_requires=['redis']\n")

	deps := Scan(root, logger.NewSilentLogger())

	assert.Equal(t, []Dependency{
		{Name: "flask", Spec: "flask==2.0.1", Source: Requirements},
		{Name: "flask", Spec: "flask", Source: Pyproject},
		{Name: "redis", Source: SetupPy},
	}, deps)
}

func TestScan_MalformedManifestIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, Requirements, "flask\xff\n")
	writeFile(t, root, SetupPy, "install_requires=['redis']\n")

	deps := Scan(root, logger.NewSilentLogger())
	assert.Equal(t, []string{"redis"}, Names(deps))
}

func TestScan_Empty(t *testing.T) {
	deps := Scan(t.TempDir(), nil)
	assert.NotNil(t, deps)
	assert.Empty(t, deps)
}
