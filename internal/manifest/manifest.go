// Package manifest reads the dependency manifests crib recognizes in a
// working directory: package.json, go.mod, Cargo.toml, and requirements.txt.
// Missing or unparseable manifests are skipped, never errors.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Files are the recognized manifests, in the order they are consulted.
var Files = []string{"package.json", "go.mod", "Cargo.toml", "requirements.txt"}

// Deps holds every dependency declaration found in a directory. Exact names
// are matched whole; requirements.txt lines are matched by substring, both
// case-insensitively.
type Deps struct {
	names map[string]bool
	loose []string
}

// Has reports whether name is declared.
func (d Deps) Has(name string) bool {
	n := strings.ToLower(name)
	if n == "" {
		return false
	}
	if d.names[n] {
		return true
	}
	for _, line := range d.loose {
		if strings.Contains(line, n) {
			return true
		}
	}
	return false
}

// LoadDeps gathers declarations from every recognized manifest in dir.
func LoadDeps(dir string, logger *log.Logger) Deps {
	d := Deps{names: map[string]bool{}}
	for _, file := range Files {
		names, loose, err := parseFile(filepath.Join(dir, file))
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Debug("skipping manifest", "file", file, "err", err)
			}
			continue
		}
		for _, n := range names {
			d.names[strings.ToLower(n)] = true
		}
		d.loose = append(d.loose, loose...)
	}
	return d
}

// FirstDeclared returns the first name in list that dir's manifests declare.
func FirstDeclared(dir string, list []string, logger *log.Logger) (string, bool) {
	deps := LoadDeps(dir, logger)
	for _, name := range list {
		if deps.Has(name) {
			return name, true
		}
	}
	return "", false
}

// Manifest is one dependency manifest found in a tree, for reporting.
type Manifest struct {
	File string   `json:"file"`
	Deps []string `json:"deps"`
}

// Survey lists the manifests present in dir with their declared dependency
// names sorted, in the fixed consultation order.
func Survey(dir string, logger *log.Logger) []Manifest {
	var out []Manifest
	for _, file := range Files {
		names, loose, err := parseFile(filepath.Join(dir, file))
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Debug("skipping manifest", "file", file, "err", err)
			}
			continue
		}
		deps := names
		if file == "requirements.txt" {
			deps = requirementNames(loose)
		}
		sort.Strings(deps)
		out = append(out, Manifest{File: file, Deps: deps})
	}
	return out
}

// parseFile dispatches on the manifest's base name. names holds exact
// declarations; loose holds raw lowercased requirement lines.
func parseFile(path string) (names, loose []string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	switch filepath.Base(path) {
	case "package.json":
		names, err = parsePackageJSON(data)
	case "go.mod":
		names = parseGoMod(data)
	case "Cargo.toml":
		names, err = parseCargo(data)
	case "requirements.txt":
		loose = parseRequirements(data)
	}
	return names, loose, err
}

func parsePackageJSON(data []byte) ([]string, error) {
	var pkg struct {
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		PeerDependencies     map[string]string `json:"peerDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	var names []string
	for _, section := range []map[string]string{
		pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies, pkg.OptionalDependencies,
	} {
		for name := range section {
			names = append(names, name)
		}
	}
	return names, nil
}

// parseGoMod collects require paths. Each module contributes its full path
// and its final segment, so triggers can name either.
func parseGoMod(data []byte) []string {
	var names []string
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "require (":
			inBlock = true
			continue
		case inBlock && line == ")":
			inBlock = false
			continue
		}
		var path string
		if inBlock {
			fields := strings.Fields(line)
			if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
				path = fields[0]
			}
		} else if rest, ok := strings.CutPrefix(line, "require "); ok {
			fields := strings.Fields(rest)
			if len(fields) >= 2 {
				path = fields[0]
			}
		}
		if path == "" {
			continue
		}
		names = append(names, path)
		if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
			names = append(names, path[idx+1:])
		}
	}
	return names
}

func parseCargo(data []byte) ([]string, error) {
	var m struct {
		Dependencies      map[string]any `toml:"dependencies"`
		DevDependencies   map[string]any `toml:"dev-dependencies"`
		BuildDependencies map[string]any `toml:"build-dependencies"`
	}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	var names []string
	for _, section := range []map[string]any{m.Dependencies, m.DevDependencies, m.BuildDependencies} {
		for name := range section {
			names = append(names, name)
		}
	}
	return names, nil
}

func parseRequirements(data []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, strings.ToLower(line))
	}
	return lines
}

// requirementNames reduces requirement lines to bare package names for
// display: everything before the first version or extras marker.
func requirementNames(lines []string) []string {
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		name := line
		if idx := strings.IndexAny(name, "=<>~![; "); idx >= 0 {
			name = name[:idx]
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
