// Package transcript recovers human prompt text from assistant session
// logs. A session log is a JSONL event stream; only user events whose
// message content is a plain string carry human text, everything else
// (tool results, assistant turns, system events) is skipped.
package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// event is the minimal JSONL event shape prompt recovery needs.
type event struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message,omitempty"`
}

// messageEnvelope is the shape of the message field on user events.
type messageEnvelope struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// RecentPrompts reads a session log from r and returns up to the last n
// human prompts, oldest first. Lines that fail to parse are skipped; a
// session log is appended to by another process and may end mid-write.
func RecentPrompts(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	scanner := bufio.NewScanner(r)
	// One event per line, and tool outputs make some lines very large.
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	var prompts []string
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		text, ok := humanText(&e)
		if !ok {
			continue
		}
		if len(prompts) == n {
			copy(prompts, prompts[1:])
			prompts[n-1] = text
		} else {
			prompts = append(prompts, text)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session log: %w", err)
	}
	return prompts, nil
}

// humanText extracts the text of a user event. String content is human
// text; array content is tool results and is not. Slash-command echoes
// are user events too but carry no prompt worth matching.
func humanText(e *event) (string, bool) {
	if e.Type != "user" || len(e.Message) == 0 {
		return "", false
	}
	var env messageEnvelope
	if err := json.Unmarshal(e.Message, &env); err != nil {
		return "", false
	}
	if env.Role != "user" || len(env.Content) == 0 || env.Content[0] != '"' {
		return "", false
	}
	var text string
	if err := json.Unmarshal(env.Content, &text); err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "<command-") {
		return "", false
	}
	return text, true
}
