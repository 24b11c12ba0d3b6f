// Package glob compiles the small glob dialect crib file triggers use into
// regular expressions: * and ? match within a path segment, ** crosses
// segments, and {a,b} alternates. Patterns match slash-separated paths
// relative to the scanned root.
package glob

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pattern is a compiled glob.
type Pattern struct {
	raw   string
	re    *regexp.Regexp
	depth int // segment depth the pattern can address; 0 means unbounded
}

// Compile parses a pattern. A leading ./ is stripped and a trailing slash
// means "everything under this directory". Empty patterns, nested braces,
// and unbalanced braces are errors; callers skip such patterns.
func Compile(pattern string) (*Pattern, error) {
	raw := pattern
	pattern = strings.TrimPrefix(pattern, "./")
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	expr, err := translate(pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", raw, err)
	}
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", raw, err)
	}
	return &Pattern{raw: raw, re: re, depth: segmentDepth(pattern)}, nil
}

// Match reports whether the slash-separated relative path matches.
func (p *Pattern) Match(path string) bool { return p.re.MatchString(path) }

// String returns the original pattern text.
func (p *Pattern) String() string { return p.raw }

// MaxDepth returns how many path segments the pattern can address, or 0 when
// ** or a slash inside braces makes the depth unbounded. Walkers use it to
// prune recursion.
func (p *Pattern) MaxDepth() int { return p.depth }

func segmentDepth(pattern string) int {
	if strings.Contains(pattern, "**") {
		return 0
	}
	// A slash inside an alternation defeats simple segment counting.
	inBrace := false
	count := 1
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			inBrace = true
		case '}':
			inBrace = false
		case '/':
			if inBrace {
				return 0
			}
			count++
		}
	}
	return count
}

// translate converts one glob sequence to a regexp fragment.
func translate(pattern string) (string, error) {
	var sb strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// **/ also matches zero directories.
					sb.WriteString(`(?:.*/)?`)
					i += 3
				} else {
					sb.WriteString(`.*`)
					i += 2
				}
				continue
			}
			sb.WriteString(`[^/]*`)
			i++
		case '?':
			sb.WriteString(`[^/]`)
			i++
		case '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return "", errors.New("unclosed {")
			}
			inner := pattern[i+1 : i+end]
			if strings.ContainsRune(inner, '{') {
				return "", errors.New("nested braces")
			}
			alts := strings.Split(inner, ",")
			parts := make([]string, 0, len(alts))
			for _, alt := range alts {
				expr, err := translate(alt)
				if err != nil {
					return "", err
				}
				parts = append(parts, expr)
			}
			sb.WriteString("(?:" + strings.Join(parts, "|") + ")")
			i += end + 1
		case '}':
			return "", errors.New("unbalanced }")
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return sb.String(), nil
}
