// Package docgen renders the reference document scaffold used by crib new
// and the layout diagram used by crib investigate.
package docgen

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/scbrown/crib/internal/analyze"
)

// Scaffold fills the reference document template.
type Scaffold struct {
	Name         string
	Description  string
	Priority     int
	MaxTokens    int
	FilePatterns []string
	Imports      []string
	Dependencies []string
	Keywords     []string
}

// Triggers reports whether any trigger list is populated.
func (s Scaffold) Triggers() bool {
	return len(s.FilePatterns)+len(s.Imports)+len(s.Dependencies)+len(s.Keywords) > 0
}

// List items are wrapped in plain double quotes, not strconv.Quote: the
// front-matter parser strips surrounding quotes without unescaping, so
// backslashes in import regexes must pass through untouched.
var scaffoldTmpl = template.Must(template.New("reference").
	Funcs(template.FuncMap{"quote": func(s string) string { return `"` + s + `"` }}).
	Parse(`---
name: {{.Name}}
{{- if .Description}}
description: {{.Description}}
{{- end}}
priority: {{.Priority}}
maxTokens: {{.MaxTokens}}
{{- if .Triggers}}
triggers:
{{- if .FilePatterns}}
  filePatterns:
{{- range .FilePatterns}}
    - {{quote .}}
{{- end}}
{{- end}}
{{- if .Imports}}
  imports:
{{- range .Imports}}
    - {{quote .}}
{{- end}}
{{- end}}
{{- if .Dependencies}}
  dependencies:
{{- range .Dependencies}}
    - {{quote .}}
{{- end}}
{{- end}}
{{- if .Keywords}}
  keywords:
{{- range .Keywords}}
    - {{quote .}}
{{- end}}
{{- end}}
{{- end}}
---

# {{.Name}}

## Overview

Describe when this reference applies and what it covers.

## Conventions

- List the rules the assistant should follow here.

## Pitfalls

- List the mistakes this reference exists to prevent.
`))

// Render produces the scaffolded reference document.
func Render(s Scaffold) (string, error) {
	var sb strings.Builder
	if err := scaffoldTmpl.Execute(&sb, s); err != nil {
		return "", fmt.Errorf("rendering scaffold: %w", err)
	}
	return sb.String(), nil
}

// Diagram renders a mermaid graph of a tree's top-level layout.
func Diagram(root string, layout []analyze.Dir) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	fmt.Fprintf(&sb, "    root[%q]\n", root)
	for i, d := range layout {
		fmt.Fprintf(&sb, "    root --> d%d[\"%s (%d files)\"]\n", i, d.Name, d.Files)
	}
	return sb.String()
}
