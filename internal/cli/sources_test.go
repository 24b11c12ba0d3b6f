package cli

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSourcesCmdTable(t *testing.T) {
	resetFlags(t)
	t.Setenv("HOME", t.TempDir())

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"sources"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	for _, name := range []string{"claude-code", "codex", "crib", "cursor", "kiro"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("output missing source %q:\n%s", name, stdout)
		}
	}
	if !strings.Contains(stdout, "Claude Code directories and session hooks") {
		t.Errorf("expected descriptions, got:\n%s", stdout)
	}
}

func TestSourcesCmdJSON(t *testing.T) {
	resetFlags(t)
	t.Setenv("HOME", t.TempDir())

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"sources", "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})

	var sources []sourceInfo
	if err := json.Unmarshal([]byte(stdout), &sources); err != nil {
		t.Fatalf("unmarshal JSON output: %v\noutput: %s", err, stdout)
	}
	if len(sources) != 5 {
		t.Fatalf("got %d sources, want 5", len(sources))
	}
	if sources[0].Name != "claude-code" {
		t.Errorf("sources should be sorted, first = %q", sources[0].Name)
	}

	byName := make(map[string]sourceInfo, len(sources))
	for _, s := range sources {
		byName[s.Name] = s
	}

	cc := byName["claude-code"]
	if !cc.Installer {
		t.Error("claude-code should report an installer")
	}
	if cc.Installed == nil {
		t.Error("claude-code should report install state")
	} else if *cc.Installed {
		t.Error("claude-code should not be installed in a fresh home")
	}

	crib := byName["crib"]
	if crib.Installer {
		t.Error("crib is not an installer")
	}
	if crib.Installed != nil {
		t.Error("non-installers should report null install state")
	}
}
