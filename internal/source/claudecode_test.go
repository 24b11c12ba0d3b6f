package source

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// readHookEntries parses the settings file and returns the entries
// registered under the given event.
func readHookEntries(t *testing.T, settingsPath, event string) []claudeHookEntry {
	t.Helper()
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("reading settings: %v", err)
	}
	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("parsing settings: %v", err)
	}
	hooksRaw, ok := settings["hooks"]
	if !ok {
		t.Fatal("settings should contain hooks")
	}
	var hooks map[string]json.RawMessage
	if err := json.Unmarshal(hooksRaw, &hooks); err != nil {
		t.Fatalf("parsing hooks: %v", err)
	}
	eventRaw, ok := hooks[event]
	if !ok {
		t.Fatalf("hooks should contain %s", event)
	}
	var entries []claudeHookEntry
	if err := json.Unmarshal(eventRaw, &entries); err != nil {
		t.Fatalf("parsing %s: %v", event, err)
	}
	return entries
}

func TestClaudeCodeInstall(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), ".claude", "settings.json")

	c := &claudeCode{}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	entries := readHookEntries(t, settingsPath, "SessionStart")
	if len(entries) != 1 {
		t.Fatalf("expected 1 hook entry, got %d", len(entries))
	}
	if entries[0].Hooks[0].Command != cribHookCommand {
		t.Errorf("command = %q, want %q", entries[0].Hooks[0].Command, cribHookCommand)
	}
	if entries[0].Hooks[0].Type != "command" {
		t.Errorf("type = %q, want command", entries[0].Hooks[0].Type)
	}
}

func TestClaudeCodeInstallPromptEvent(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), ".claude", "settings.json")

	c := &claudeCode{}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath, Event: "prompt"}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	entries := readHookEntries(t, settingsPath, "UserPromptSubmit")
	if len(entries) != 1 {
		t.Fatalf("expected 1 hook entry, got %d", len(entries))
	}
}

func TestClaudeCodeInstallUnknownEvent(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	c := &claudeCode{}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath, Event: "always"}); err == nil {
		t.Fatal("expected error for unknown event")
	}
	if _, err := os.Stat(settingsPath); !os.IsNotExist(err) {
		t.Error("settings file should not be created on invalid event")
	}
}

func TestClaudeCodeInstallIdempotent(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), ".claude", "settings.json")

	c := &claudeCode{}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath}); err != nil {
		t.Fatalf("first Install() error: %v", err)
	}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath}); err != nil {
		t.Fatalf("second Install() error: %v", err)
	}

	entries := readHookEntries(t, settingsPath, "SessionStart")
	if len(entries) != 1 {
		t.Fatalf("expected 1 hook entry after double install, got %d", len(entries))
	}
}

func TestClaudeCodeInstallPreservesExisting(t *testing.T) {
	claudeDir := filepath.Join(t.TempDir(), ".claude")
	if err := os.MkdirAll(claudeDir, 0o700); err != nil {
		t.Fatal(err)
	}
	settingsPath := filepath.Join(claudeDir, "settings.json")

	existing := `{
  "hooks": {
    "SessionStart": [
      {
        "hooks": [
          {
            "type": "command",
            "command": "other-tool warmup",
            "timeout": 3
          }
        ]
      }
    ],
    "PreToolUse": [
      {
        "matcher": "Bash",
        "hooks": [
          {
            "type": "command",
            "command": "echo pre-bash"
          }
        ]
      }
    ]
  },
  "other_setting": "preserved"
}`
	if err := os.WriteFile(settingsPath, []byte(existing), 0o600); err != nil {
		t.Fatal(err)
	}

	c := &claudeCode{}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("reading settings: %v", err)
	}
	var settings map[string]json.RawMessage
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("parsing settings: %v", err)
	}
	if _, ok := settings["other_setting"]; !ok {
		t.Error("other_setting should be preserved")
	}

	var hooks map[string]json.RawMessage
	if err := json.Unmarshal(settings["hooks"], &hooks); err != nil {
		t.Fatalf("parsing hooks: %v", err)
	}
	if _, ok := hooks["PreToolUse"]; !ok {
		t.Error("PreToolUse hook should be preserved")
	}

	entries := readHookEntries(t, settingsPath, "SessionStart")
	if len(entries) != 2 {
		t.Fatalf("expected 2 SessionStart entries, got %d", len(entries))
	}
	if entries[0].Hooks[0].Command != "other-tool warmup" {
		t.Errorf("existing hook clobbered: %q", entries[0].Hooks[0].Command)
	}
}

func TestClaudeCodeInstallMalformedSettings(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(settingsPath, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := &claudeCode{}
	if err := c.Install(InstallOpts{SettingsPath: settingsPath}); err == nil {
		t.Fatal("expected error for malformed settings")
	}
}

func TestClaudeCodeIsInstalled(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), ".claude", "settings.json")
	c := &claudeCode{}

	installed, err := c.IsInstalled(InstallOpts{SettingsPath: settingsPath})
	if err != nil {
		t.Fatalf("IsInstalled() error: %v", err)
	}
	if installed {
		t.Error("IsInstalled() = true before install")
	}

	if err := c.Install(InstallOpts{SettingsPath: settingsPath}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	installed, err = c.IsInstalled(InstallOpts{SettingsPath: settingsPath})
	if err != nil {
		t.Fatalf("IsInstalled() error: %v", err)
	}
	if !installed {
		t.Error("IsInstalled() = false after install")
	}
}

func TestClaudeCodeIsInstalledMatchesAnyFlags(t *testing.T) {
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	settings := `{
  "hooks": {
    "UserPromptSubmit": [
      {
        "hooks": [
          {"type": "command", "command": "crib load --hook --budget 4000"}
        ]
      }
    ]
  }
}`
	if err := os.WriteFile(settingsPath, []byte(settings), 0o600); err != nil {
		t.Fatal(err)
	}

	c := &claudeCode{}
	installed, err := c.IsInstalled(InstallOpts{SettingsPath: settingsPath})
	if err != nil {
		t.Fatalf("IsInstalled() error: %v", err)
	}
	if !installed {
		t.Error("IsInstalled() should match a crib load command with extra flags")
	}
}
