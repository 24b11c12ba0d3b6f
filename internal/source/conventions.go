package source

import "path/filepath"

// dirSource is a convention whose catalog sits under the same dotted
// directory in both layers.
type dirSource struct {
	name string
	desc string
	dot  string
}

func init() {
	Register(dirSource{name: "crib", desc: "native crib directories", dot: ".crib"})
	Register(dirSource{name: "codex", desc: "Codex CLI directories", dot: ".codex"})
	Register(dirSource{name: "cursor", desc: "Cursor IDE directories", dot: ".cursor"})
}

// Name returns the source identifier.
func (s dirSource) Name() string { return s.name }

// Description returns a short human-readable description of this source.
func (s dirSource) Description() string { return s.desc }

// Roots returns the user and project catalog roots.
func (s dirSource) Roots(home, project string) (string, string) {
	return filepath.Join(home, s.dot), filepath.Join(project, s.dot)
}
