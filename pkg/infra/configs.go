// Package infra reports build and deploy configuration found at a project
// root: env templates, compose services, Dockerfile facts, Terraform
// resources and CI systems.
package infra

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/simonhull/firebird-suite/pymap/pkg/logger"
)

var (
	composeService = regexp.MustCompile(`(?m)^\s{2}(\w[\w-]*):`)
	dockerFrom     = regexp.MustCompile(`(?m)^FROM\s+(\S+)`)
	dockerExpose   = regexp.MustCompile(`(?m)^EXPOSE\s+(\d+)`)
)

// Candidate file names, first existing wins.
var (
	EnvTemplates = []string{".env.example", ".env.sample"}
	ComposeFiles = []string{"docker-compose.yml", "docker-compose.yaml"}
)

// DockerfileName is read from the project root only.
const DockerfileName = "Dockerfile"

// Dockerfile lists FROM images and EXPOSE ports in file order.
type Dockerfile struct {
	BaseImages   []string `json:"base_images"`
	ExposedPorts []string `json:"exposed_ports"`
}

// Configs is the "configs" facet. A nil field means the source file was not
// found; an empty slice means it was found but held nothing.
type Configs struct {
	EnvVariables          []string    `json:"env_variables,omitzero"`
	DockerComposeServices []string    `json:"docker_compose_services,omitzero"`
	Dockerfile            *Dockerfile `json:"dockerfile,omitempty"`
}

// ScanConfigs reads the env template, compose file and Dockerfile at root.
// Unreadable files are treated as missing.
func ScanConfigs(root string, log logger.Logger) *Configs {
	if log == nil {
		log = logger.Default()
	}
	cfg := &Configs{}

	if data, name, ok := readFirst(root, EnvTemplates, log); ok {
		cfg.EnvVariables = envKeys(data)
		log.Debug("Read env template", logger.F("file", name), logger.F("variables", len(cfg.EnvVariables)))
	}

	if data, name, ok := readFirst(root, ComposeFiles, log); ok {
		cfg.DockerComposeServices = submatches(composeService, data)
		log.Debug("Read compose file", logger.F("file", name), logger.F("services", len(cfg.DockerComposeServices)))
	}

	if data, _, ok := readFirst(root, []string{DockerfileName}, log); ok {
		cfg.Dockerfile = &Dockerfile{
			BaseImages:   submatches(dockerFrom, data),
			ExposedPorts: submatches(dockerExpose, data),
		}
	}

	return cfg
}

// readFirst returns the contents of the first candidate that exists. A
// candidate that exists but cannot be read ends the search.
func readFirst(root string, candidates []string, log logger.Logger) ([]byte, string, bool) {
	for _, name := range candidates {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug("Skipping unreadable file", logger.F("file", name), logger.F("error", err))
			return nil, name, false
		}
		return data, name, true
	}
	return nil, "", false
}

// envKeys returns the name before the first "=" of every non-blank,
// non-comment line.
func envKeys(data []byte) []string {
	keys := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, _ := strings.Cut(line, "=")
		keys = append(keys, strings.TrimSpace(key))
	}
	return keys
}

func submatches(re *regexp.Regexp, data []byte) []string {
	out := []string{}
	for _, m := range re.FindAllSubmatch(data, -1) {
		out = append(out, string(m[1]))
	}
	return out
}
