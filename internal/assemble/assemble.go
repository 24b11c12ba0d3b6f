// Package assemble packs matched reference bodies into one context block
// under a global token budget. The budget is advisory: it counts each
// entry's declared maxTokens, not the measured size of its body.
package assemble

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/scbrown/crib/internal/frontmatter"
	"github.com/scbrown/crib/internal/trigger"
)

type section struct {
	name     string
	evidence string
	body     string
}

// Assemble walks the priority-ordered matches, loading each body that still
// fits under budget. An entry that would overflow is skipped and later,
// cheaper entries are still attempted; an unreadable body is skipped without
// consuming budget. ok is false when nothing loaded at all.
func Assemble(matches []trigger.Match, budget int, logger *log.Logger) (string, bool) {
	var sections []section
	var names []string
	used := 0
	for _, m := range matches {
		if used+m.MaxTokens > budget {
			logger.Info("reference over budget, skipping",
				"name", m.Name, "maxTokens", m.MaxTokens, "used", used, "budget", budget)
			continue
		}
		data, err := os.ReadFile(m.Path)
		if err != nil {
			logger.Warn("cannot read reference body, skipping", "name", m.Name, "path", m.Path, "err", err)
			continue
		}
		_, body := frontmatter.Parse(string(data))
		sections = append(sections, section{
			name:     m.Name,
			evidence: strings.Join(m.Evidence, "; "),
			body:     strings.TrimSpace(body),
		})
		names = append(names, m.Name)
		used += m.MaxTokens
	}
	if len(sections) == 0 {
		return "", false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Loaded references: %s\n", strings.Join(names, ", "))
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		fmt.Fprintf(&sb, "\n## %s", s.name)
		if s.evidence != "" {
			fmt.Fprintf(&sb, " (%s)", s.evidence)
		}
		sb.WriteString("\n\n")
		sb.WriteString(s.body)
		sb.WriteString("\n")
	}
	return sb.String(), true
}
