package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	requirementName = regexp.MustCompile(`^([A-Za-z0-9_-]+)`)
	pyprojectEntry  = regexp.MustCompile(`^\s*"([A-Za-z0-9_-]+)`)
	installRequires = regexp.MustCompile(`(?s)install_requires\s*=\s*\[(.*?)\]`)
	quotedName      = regexp.MustCompile(`['"]([A-Za-z0-9_-]+)`)
)

var errNotUTF8 = errors.New("not valid UTF-8")

// ParseRequirements reads a pip requirements file. Blank lines, comments and
// option lines ("-r", "-e", ...) are skipped; the spec is the whole trimmed
// line, inline comment included.
func ParseRequirements(data []byte) ([]Dependency, error) {
	if !utf8.Valid(data) {
		return nil, errNotUTF8
	}

	deps := []Dependency{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := requirementName.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		deps = append(deps, Dependency{Name: m[1], Spec: line, Source: Requirements})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return deps, nil
}

// ParsePyproject scans pyproject.toml line by line. Any line mentioning
// "dependencies" with an "=" opens a block, and a line starting with "]"
// closes it. Quoted entries inside a block are dependencies.
func ParsePyproject(data []byte) ([]Dependency, error) {
	if !utf8.Valid(data) {
		return nil, errNotUTF8
	}

	deps := []Dependency{}
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "dependencies") && strings.Contains(line, "=") {
			inBlock = true
			continue
		}
		if !inBlock {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "]") {
			inBlock = false
			continue
		}
		m := pyprojectEntry.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		deps = append(deps, Dependency{
			Name:   m[1],
			Spec:   strings.Trim(strings.TrimSpace(line), `",`),
			Source: Pyproject,
		})
	}
	return deps, nil
}

// ParseSetupPy extracts names from the first install_requires list literal.
// No spec is recorded.
func ParseSetupPy(data []byte) ([]Dependency, error) {
	if !utf8.Valid(data) {
		return nil, errNotUTF8
	}

	deps := []Dependency{}
	m := installRequires.FindSubmatch(data)
	if m == nil {
		return deps, nil
	}
	for _, name := range quotedName.FindAllSubmatch(m[1], -1) {
		deps = append(deps, Dependency{Name: string(name[1]), Source: SetupPy})
	}
	return deps, nil
}
