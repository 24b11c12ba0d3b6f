// Package frontmatter parses the annotation block crib reference documents
// carry at the top of the file. The grammar is deliberately restricted: one
// level of nesting (the four trigger lists under "triggers"), dash-item
// arrays, bracketed inline arrays, and scalar coercion for booleans and
// integers. It is a small explicit-state line parser, not a general YAML
// parser; the accepted grammar is pinned by the package tests.
package frontmatter

import (
	"strconv"
	"strings"
)

// Fields holds the parsed annotation block. Scalar values are string, bool,
// or int; the "triggers" key maps to a Triggers value.
type Fields map[string]any

// Triggers maps a trigger-kind name to its list of patterns.
type Triggers map[string][]string

// triggerKinds are the list-valued keys that always nest under "triggers",
// whether or not the document spelled out a triggers: line.
var triggerKinds = map[string]bool{
	"filePatterns": true,
	"imports":      true,
	"dependencies": true,
	"keywords":     true,
}

// Parse splits text into its front-matter fields and the remaining body.
// Documents that do not open with a `---` fence line, or that never close
// it, parse as having no block at all: empty fields and the full original
// text as body.
func Parse(text string) (Fields, string) {
	block, body, ok := split(text)
	if !ok {
		return Fields{}, text
	}
	return parseBlock(block), body
}

// Str returns the string value for key, when present and a string.
func (f Fields) Str(key string) (string, bool) {
	v, ok := f[key].(string)
	return v, ok
}

// Int returns the integer value for key, when present and an int.
func (f Fields) Int(key string) (int, bool) {
	v, ok := f[key].(int)
	return v, ok
}

// Bool returns the boolean value for key, when present and a bool.
func (f Fields) Bool(key string) (bool, bool) {
	v, ok := f[key].(bool)
	return v, ok
}

// Trig returns the parsed trigger lists, when the document declared any.
func (f Fields) Trig() (Triggers, bool) {
	v, ok := f["triggers"].(Triggers)
	return v, ok
}

// split isolates the fenced block from the body. The opening fence must be
// the first line of the document and both fences must be exactly three
// dashes alone on their line (a trailing \r is tolerated).
func split(text string) (block, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, "\r") != "---" {
		return "", "", false
	}
	var b strings.Builder
	for {
		line, tail, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == "---" {
			return b.String(), tail, true
		}
		if !more {
			// Ran out of lines without a closing fence.
			return "", "", false
		}
		b.WriteString(line)
		b.WriteByte('\n')
		rest = tail
	}
}

// parseBlock walks the block line by line with two states: top-level and
// array-context. Only the four trigger kinds open an array context; a dash
// item outside one is ignored, as is any line the grammar does not cover.
func parseBlock(block string) Fields {
	fields := Fields{}
	activeList := "" // trigger-kind name currently accepting dash items

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if item, isItem := strings.CutPrefix(trimmed, "- "); isItem {
			if activeList == "" {
				continue
			}
			trig := ensureTriggers(fields)
			trig[activeList] = append(trig[activeList], stripQuotes(strings.TrimSpace(item)))
			continue
		}

		key, value, hasColon := strings.Cut(trimmed, ":")
		if !hasColon {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Any recognized key line ends the current array context.
		activeList = ""

		if value == "" {
			switch {
			case triggerKinds[key]:
				trig := ensureTriggers(fields)
				if trig[key] == nil {
					trig[key] = []string{}
				}
				activeList = key
			case key == "triggers":
				ensureTriggers(fields)
			}
			continue
		}

		if triggerKinds[key] {
			trig := ensureTriggers(fields)
			trig[key] = append(trig[key], toList(value)...)
			continue
		}
		if key == "triggers" {
			// A scalar triggers value has no meaning; drop the line.
			continue
		}
		fields[key] = coerce(value)
	}
	return fields
}

func ensureTriggers(fields Fields) Triggers {
	if trig, ok := fields["triggers"].(Triggers); ok {
		return trig
	}
	trig := Triggers{}
	fields["triggers"] = trig
	return trig
}

// toList interprets a scalar trigger value: bracketed values split on commas,
// anything else becomes a single-item list.
func toList(value string) []string {
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return []string{stripQuotes(value)}
	}
	inner := value[1 : len(value)-1]
	var items []string
	for _, part := range strings.Split(inner, ",") {
		part = stripQuotes(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// coerce types a scalar: true/false become bool, integer strings become int,
// everything else is a string with surrounding quotes stripped.
func coerce(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return stripQuotes(value)
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
