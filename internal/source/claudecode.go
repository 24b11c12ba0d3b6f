package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// claudeCode implements Source for Claude Code. Besides mapping the
// catalog roots it installs the hook that runs crib at the start of a
// session (or on every prompt) and feeds the output into context.
type claudeCode struct{}

func init() {
	Register(&claudeCode{})
}

// Name returns "claude-code".
func (c *claudeCode) Name() string { return "claude-code" }

// Description returns a short human-readable description of this source.
func (c *claudeCode) Description() string { return "Claude Code directories and session hooks" }

// Roots returns the user and project catalog roots.
func (c *claudeCode) Roots(home, project string) (string, string) {
	return filepath.Join(home, ".claude"), filepath.Join(project, ".claude")
}

// claudeSettings represents the relevant subset of a Claude Code settings file.
type claudeSettings map[string]json.RawMessage

// claudeHookEntry represents a single hook entry in the hooks config.
type claudeHookEntry struct {
	Matcher string            `json:"matcher,omitempty"`
	Hooks   []claudeHookInner `json:"hooks"`
}

// claudeHookInner represents the inner hook command definition.
type claudeHookInner struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// cribHookCommand is the command installed on the chosen hook event.
const cribHookCommand = "crib load --hook"

// hookEventName maps an InstallOpts.Event to a Claude Code hook event.
// SessionStart payloads carry no prompt text; UserPromptSubmit payloads do.
func hookEventName(event string) (string, error) {
	switch event {
	case "", "session":
		return "SessionStart", nil
	case "prompt":
		return "UserPromptSubmit", nil
	default:
		return "", fmt.Errorf("unknown hook event %q (use \"session\" or \"prompt\")", event)
	}
}

// defaultSettingsPath returns ~/.claude/settings.json.
func defaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "settings.json"), nil
}

// Install merges the crib hook into the Claude Code settings file without
// clobbering existing hooks or unrelated settings. Installing twice is a
// no-op. opts.SettingsPath overrides the default ~/.claude/settings.json.
func (c *claudeCode) Install(opts InstallOpts) error {
	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		p, err := defaultSettingsPath()
		if err != nil {
			return err
		}
		settingsPath = p
	}
	eventName, err := hookEventName(opts.Event)
	if err != nil {
		return err
	}

	settings, err := readClaudeSettings(settingsPath)
	if err != nil {
		return err
	}

	cribHook := claudeHookEntry{
		Hooks: []claudeHookInner{
			{
				Type:    "command",
				Command: cribHookCommand,
				Timeout: 10,
			},
		},
	}

	hooks, err := mergeHookEvent(settings, eventName, cribHook)
	if err != nil {
		return err
	}

	hooksJSON, err := json.Marshal(hooks)
	if err != nil {
		return fmt.Errorf("marshal hooks: %w", err)
	}
	settings["hooks"] = hooksJSON

	return writeClaudeSettings(settingsPath, settings)
}

// IsInstalled reports whether any hook event already runs a crib load
// command in the settings file named by opts.
func (c *claudeCode) IsInstalled(opts InstallOpts) (bool, error) {
	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		p, err := defaultSettingsPath()
		if err != nil {
			return false, err
		}
		settingsPath = p
	}

	settings, err := readClaudeSettings(settingsPath)
	if err != nil {
		return false, err
	}

	raw, ok := settings["hooks"]
	if !ok {
		return false, nil
	}
	var hooks map[string]json.RawMessage
	if err := json.Unmarshal(raw, &hooks); err != nil {
		return false, fmt.Errorf("parse hooks: %w", err)
	}

	for _, eventRaw := range hooks {
		var entries []claudeHookEntry
		if err := json.Unmarshal(eventRaw, &entries); err != nil {
			continue
		}
		if hasCribCommand(entries) {
			return true, nil
		}
	}
	return false, nil
}

// readClaudeSettings reads and parses the settings file, returning an empty
// map if the file does not exist.
func readClaudeSettings(path string) (claudeSettings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(claudeSettings), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var s claudeSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// mergeHookEvent merges cribHook into the named event's hook list without
// clobbering existing hooks.
func mergeHookEvent(settings claudeSettings, eventName string, cribHook claudeHookEntry) (map[string]json.RawMessage, error) {
	hooks := make(map[string]json.RawMessage)
	if raw, ok := settings["hooks"]; ok {
		if err := json.Unmarshal(raw, &hooks); err != nil {
			return nil, fmt.Errorf("parse existing hooks: %w", err)
		}
	}

	var entries []claudeHookEntry
	if raw, ok := hooks[eventName]; ok {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("parse %s hooks: %w", eventName, err)
		}
	}

	if hasCribCommand(entries) {
		return hooks, nil
	}

	entries = append(entries, cribHook)
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", eventName, err)
	}
	hooks[eventName] = entriesJSON

	return hooks, nil
}

// hasCribCommand returns true if entries already contain a hook running a
// crib load command, whatever its flags.
func hasCribCommand(entries []claudeHookEntry) bool {
	for _, e := range entries {
		for _, h := range e.Hooks {
			if strings.Contains(h.Command, "crib load") {
				return true
			}
		}
	}
	return false
}

// writeClaudeSettings writes settings back to the file, creating the parent
// directory if needed. Settings files may hold credentials, so the file is
// created private.
func writeClaudeSettings(path string, settings claudeSettings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
