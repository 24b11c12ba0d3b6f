package trigger

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// matchImports reports the earliest pattern in list order that matches the
// contents of any scanned source file. Each pattern is searched in its own
// right rather than folded into one alternation, so the evidence names the
// pattern that actually matched. A pattern compiles as a regular expression
// when it is one and falls back to a quoted literal otherwise.
func (ev *evaluator) matchImports(patterns []string) (string, bool) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, raw := range patterns {
		if raw == "" {
			continue
		}
		re, err := regexp.Compile(raw)
		if err != nil {
			re, err = regexp.Compile(regexp.QuoteMeta(raw))
			if err != nil {
				ev.logger.Debug("skipping import pattern", "pattern", raw, "err", err)
				continue
			}
		}
		compiled[i] = re
	}

	// best tracks the lowest pattern index seen matching so far; files are
	// read once each and only patterns that could improve it are tried.
	best := len(patterns)
	for _, path := range ev.sourceFiles() {
		if best == 0 {
			break
		}
		data, err := os.ReadFile(path)
		if err != nil {
			ev.logger.Debug("skipping unreadable source file", "path", path, "err", err)
			continue
		}
		for i := 0; i < best; i++ {
			if compiled[i] == nil {
				continue
			}
			if compiled[i].Match(data) {
				best = i
				break
			}
		}
	}
	if best < len(patterns) {
		return patterns[best], true
	}
	return "", false
}

// collectSourceFiles walks the working tree once, gathering the regular
// files with a recognized source extension that are small enough to search.
func (ev *evaluator) collectSourceFiles() []string {
	var files []string
	_ = filepath.WalkDir(ev.workdir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != ev.workdir && ev.exclude[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !ev.exts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > maxFileSize {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files
}
