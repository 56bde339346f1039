package infra

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestScanConfigs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".env.example":        "# database\nDATABASE_URL=postgres://x\n\n SECRET_KEY = abc \nDEBUG\nA=b=c\n",
		".env.sample":         "IGNORED=1\n",
		"docker-compose.yaml": `version: "3.9"
services:
  web:
    image: app
    ports:
      - "8000:8000"
  db-primary:
    image: postgres
volumes:
  pgdata:
`,
		"Dockerfile": "FROM python:3.12-slim AS build\nRUN pip install .\nFROM gcr.io/distroless/python3\nEXPOSE 8000\nEXPOSE 9090/tcp\n  EXPOSE 1\n",
	})

	cfg := ScanConfigs(root, logger.NewSilentLogger())

	assert.Equal(t, []string{"DATABASE_URL", "SECRET_KEY", "DEBUG", "A"}, cfg.EnvVariables)
	assert.Equal(t, []string{"web", "db-primary", "pgdata"}, cfg.DockerComposeServices)
	require.NotNil(t, cfg.Dockerfile)
	assert.Equal(t, []string{"python:3.12-slim", "gcr.io/distroless/python3"}, cfg.Dockerfile.BaseImages)
	assert.Equal(t, []string{"8000", "9090"}, cfg.Dockerfile.ExposedPorts)
}

func TestScanConfigs_Fallbacks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".env.sample": "API_KEY=\n",
		"Dockerfile":  "# no instructions\n",
	})

	cfg := ScanConfigs(root, logger.NewSilentLogger())

	assert.Equal(t, []string{"API_KEY"}, cfg.EnvVariables)
	assert.Nil(t, cfg.DockerComposeServices)
	require.NotNil(t, cfg.Dockerfile)
	assert.Empty(t, cfg.Dockerfile.BaseImages)
	assert.NotNil(t, cfg.Dockerfile.BaseImages)
}

func TestConfigs_JSONKeys(t *testing.T) {
	empty, err := json.Marshal(ScanConfigs(t.TempDir(), logger.NewSilentLogger()))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(empty))

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".env.example": "# only comments\n",
		"Dockerfile":   "",
	})
	found, err := json.Marshal(ScanConfigs(root, logger.NewSilentLogger()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"env_variables":[],"dockerfile":{"base_images":[],"exposed_ports":[]}}`, string(found))
}

func TestScanInfrastructure(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"infra/main.tf": `resource "aws_s3_bucket" "assets" {
  bucket = "assets"
}

resource  "aws_iam_role"   "app" {}
`,
		"infra/vars.tf":                 `variable "region" {}`,
		"deploy.tf":                     `resource "google_storage_bucket" "b" {}`,
		".github/workflows/test.yml":    "on: push\n",
		".github/workflows/deploy.yaml": "on: push\n",
		".github/workflows/README.md":   "docs\n",
		".gitlab-ci.yml":                "stages: []\n",
	})

	files := []string{"infra/main.tf", "infra/vars.tf", "deploy.tf", "infra/missing.tf", "README.md"}
	inf := ScanInfrastructure(root, files, logger.NewSilentLogger())

	assert.Equal(t, []TerraformFile{
		{File: "deploy.tf", Resources: []TerraformResource{{Type: "google_storage_bucket", Name: "b"}}},
		{File: "infra/main.tf", Resources: []TerraformResource{
			{Type: "aws_s3_bucket", Name: "assets"},
			{Type: "aws_iam_role", Name: "app"},
		}},
		{File: "infra/vars.tf", Resources: []TerraformResource{}},
	}, inf.Terraform)
	assert.Equal(t, []string{"deploy.yaml", "test.yml"}, inf.GithubActions)
	assert.True(t, inf.GitlabCI)
	assert.False(t, inf.Jenkins)
}

func TestInfrastructure_JSONKeys(t *testing.T) {
	root := t.TempDir()
	inf := ScanInfrastructure(root, nil, logger.NewSilentLogger())
	data, err := json.Marshal(inf)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	writeTree(t, root, map[string]string{
		"Jenkinsfile":                "pipeline {}\n",
		".github/workflows/notes.md": "x\n",
	})
	inf = ScanInfrastructure(root, nil, logger.NewSilentLogger())
	data, err = json.Marshal(inf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jenkins":true}`, string(data))
}
