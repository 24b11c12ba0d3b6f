package trigger

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/scbrown/crib/internal/glob"
)

// matchFiles scans the working tree pattern by pattern; the first pattern
// that yields any match wins and at most three matching paths are retained.
// Invalid patterns are skipped without ending the loop.
func (ev *evaluator) matchFiles(patterns []string) ([]string, bool) {
	for _, raw := range patterns {
		p, err := glob.Compile(raw)
		if err != nil {
			ev.logger.Debug("skipping invalid file pattern", "pattern", raw, "err", err)
			continue
		}
		if paths := ev.walkMatches(p); len(paths) > 0 {
			return paths, true
		}
	}
	return nil, false
}

// walkMatches collects up to maxEvidencePaths relative paths matching the
// pattern. The walk is lexical, so evidence is deterministic; excluded
// directories are pruned and, for depth-bounded patterns, so are directories
// too deep to contain a match. Unreadable subtrees are skipped.
func (ev *evaluator) walkMatches(p *glob.Pattern) []string {
	var found []string
	maxDepth := p.MaxDepth()
	_ = filepath.WalkDir(ev.workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(ev.workdir, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if ev.exclude[d.Name()] {
				return fs.SkipDir
			}
			if maxDepth > 0 && segments(rel) >= maxDepth {
				// Files below here have more segments than the pattern
				// can address.
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if p.Match(rel) {
			found = append(found, rel)
			if len(found) >= maxEvidencePaths {
				return fs.SkipAll
			}
		}
		return nil
	})
	return found
}

func segments(rel string) int {
	return strings.Count(rel, "/") + 1
}
