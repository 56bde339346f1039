package infra

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
)

var terraformResource = regexp.MustCompile(`resource\s+"([^"]+)"\s+"([^"]+)"`)

// CI marker paths relative to the project root.
const (
	GithubWorkflowsDir = ".github/workflows"
	GitlabCIFile       = ".gitlab-ci.yml"
	JenkinsFile        = "Jenkinsfile"
)

type TerraformResource struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type TerraformFile struct {
	File      string              `json:"file"`
	Resources []TerraformResource `json:"resources"`
}

// Infrastructure is the "infrastructure" facet. Keys are omitted when nothing
// was found.
type Infrastructure struct {
	Terraform     []TerraformFile `json:"terraform,omitempty"`
	GithubActions []string        `json:"github_actions,omitempty"`
	GitlabCI      bool            `json:"gitlab_ci,omitempty"`
	Jenkins       bool            `json:"jenkins,omitempty"`
}

// ScanInfrastructure inspects root for Terraform resources and CI
// configuration. files are the root-relative slash paths retained by the
// directory walk; every ".tf" file among them is read.
func ScanInfrastructure(root string, files []string, log logger.Logger) *Infrastructure {
	if log == nil {
		log = logger.Default()
	}

	inf := &Infrastructure{
		Terraform:     scanTerraform(root, files, log),
		GithubActions: workflows(filepath.Join(root, filepath.FromSlash(GithubWorkflowsDir))),
		GitlabCI:      exists(filepath.Join(root, GitlabCIFile)),
		Jenkins:       exists(filepath.Join(root, JenkinsFile)),
	}
	return inf
}

func scanTerraform(root string, files []string, log logger.Logger) []TerraformFile {
	var out []TerraformFile
	for _, rel := range files {
		if !strings.HasSuffix(path.Base(rel), ".tf") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			log.Debug("Skipping unreadable terraform file", logger.F("file", rel), logger.F("error", err))
			continue
		}

		tf := TerraformFile{File: rel, Resources: []TerraformResource{}}
		for _, m := range terraformResource.FindAllSubmatch(data, -1) {
			tf.Resources = append(tf.Resources, TerraformResource{Type: string(m[1]), Name: string(m[2])})
		}
		out = append(out, tf)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// workflows lists the YAML files of a GitHub Actions workflow directory.
func workflows(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yml") || strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
