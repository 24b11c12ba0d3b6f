package source

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestRegistryNames(t *testing.T) {
	want := []string{"claude-code", "codex", "crib", "cursor", "kiro"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetUnknown(t *testing.T) {
	if s := Get("no-such-source"); s != nil {
		t.Errorf("Get(no-such-source) = %v, want nil", s)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register(dirSource{name: "crib", dot: ".crib"})
}

func TestRoots(t *testing.T) {
	home := filepath.Join("home", "dev")
	project := filepath.Join("work", "proj")

	tests := []struct {
		source string
		dot    string
	}{
		{"crib", ".crib"},
		{"claude-code", ".claude"},
		{"codex", ".codex"},
		{"cursor", ".cursor"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			s := Get(tt.source)
			if s == nil {
				t.Fatalf("%s not registered", tt.source)
			}
			user, proj := s.Roots(home, project)
			if want := filepath.Join(home, tt.dot); user != want {
				t.Errorf("user root = %q, want %q", user, want)
			}
			if want := filepath.Join(project, tt.dot); proj != want {
				t.Errorf("project root = %q, want %q", proj, want)
			}
		})
	}
}

func TestKiroRoots(t *testing.T) {
	s := Get("kiro")
	if s == nil {
		t.Fatal("kiro not registered")
	}
	home := filepath.Join("home", "dev")
	project := filepath.Join("work", "proj")

	user, proj := s.Roots(home, project)
	wantUser := filepath.Join(home, ".config", "kiro")
	if runtime.GOOS == "darwin" {
		wantUser = filepath.Join(home, ".kiro")
	}
	if user != wantUser {
		t.Errorf("user root = %q, want %q", user, wantUser)
	}
	if want := filepath.Join(project, ".kiro"); proj != want {
		t.Errorf("project root = %q, want %q", proj, want)
	}
}

func TestDescriptionsNonEmpty(t *testing.T) {
	for _, name := range Names() {
		if Get(name).Description() == "" {
			t.Errorf("%s: empty description", name)
		}
	}
}

func TestOnlyClaudeCodeInstalls(t *testing.T) {
	for _, name := range Names() {
		_, ok := Get(name).(Installer)
		if want := name == "claude-code"; ok != want {
			t.Errorf("%s: Installer = %v, want %v", name, ok, want)
		}
	}
}
