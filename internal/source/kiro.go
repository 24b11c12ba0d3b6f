package source

import (
	"path/filepath"
	"runtime"
)

// kiro implements Source for the Kiro CLI. Its user-level directory
// follows the XDG convention on Linux and ~/.kiro on macOS, so it cannot
// be a plain dirSource.
type kiro struct{}

func init() {
	Register(kiro{})
}

// Name returns "kiro".
func (kiro) Name() string { return "kiro" }

// Description returns a short human-readable description of this source.
func (kiro) Description() string { return "Kiro CLI directories" }

// Roots returns the user and project catalog roots.
func (kiro) Roots(home, project string) (string, string) {
	user := filepath.Join(home, ".kiro")
	if runtime.GOOS != "darwin" {
		user = filepath.Join(home, ".config", "kiro")
	}
	return user, filepath.Join(project, ".kiro")
}
