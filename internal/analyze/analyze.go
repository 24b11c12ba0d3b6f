// Package analyze surveys a working tree for the signals that inform
// reference writing: which languages are present, which manifests are
// declared, how the top level is laid out, and how much marker debt the
// code carries. Pure filesystem, no process spawns.
package analyze

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/scbrown/crib/internal/manifest"
	"github.com/scbrown/crib/internal/trigger"
)

// markers are the comment annotations the survey counts.
var markers = []string{"TODO", "FIXME", "HACK", "XXX"}

// maxFileSize caps how large a file the marker scan will read.
const maxFileSize = 1 << 20

// Survey describes a working tree.
type Survey struct {
	Root      string         `json:"root"`
	Files     int            `json:"files"`
	Languages map[string]int `json:"languages,omitempty"`
	Manifests []string       `json:"manifests,omitempty"`
	Layout    []Dir          `json:"layout,omitempty"`
	Markers   map[string]int `json:"markers,omitempty"`
}

// Dir is one top-level directory and the number of files under it.
type Dir struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
}

// Options shape a scan. Zero values fall back to the evaluator's defaults
// so surveys and trigger matching agree on what counts as source.
type Options struct {
	SourceExts  []string
	ExcludeDirs []string
	Logger      *log.Logger
}

// Scan walks root and builds its survey. Unreadable files are skipped;
// only a missing or unreadable root is an error.
func Scan(root string, opts Options) (*Survey, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	exts := extSet(opts.SourceExts)
	excluded := make(map[string]bool)
	for _, d := range trigger.DefaultExcludeDirs {
		excluded[d] = true
	}
	for _, d := range opts.ExcludeDirs {
		excluded[d] = true
	}

	s := &Survey{
		Root:      root,
		Languages: make(map[string]int),
		Markers:   make(map[string]int),
	}
	topLevel := make(map[string]int)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("skipping during survey", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		s.Files++
		if top, _, ok := strings.Cut(rel, "/"); ok {
			topLevel[top]++
		}

		ext := strings.ToLower(filepath.Ext(rel))
		if !exts[ext] {
			return nil
		}
		s.Languages[ext]++
		countMarkers(path, d, s.Markers)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, file := range manifest.Files {
		if fi, err := os.Stat(filepath.Join(root, file)); err == nil && fi.Mode().IsRegular() {
			s.Manifests = append(s.Manifests, file)
		}
	}

	for name, files := range topLevel {
		s.Layout = append(s.Layout, Dir{Name: name, Files: files})
	}
	sort.Slice(s.Layout, func(i, j int) bool { return s.Layout[i].Name < s.Layout[j].Name })

	if len(s.Languages) == 0 {
		s.Languages = nil
	}
	if len(s.Markers) == 0 {
		s.Markers = nil
	}
	return s, nil
}

// countMarkers adds path's marker occurrences to counts. Oversized or
// unreadable files contribute nothing.
func countMarkers(path string, d fs.DirEntry, counts map[string]int) {
	if fi, err := d.Info(); err != nil || fi.Size() > maxFileSize {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	text := string(data)
	for _, m := range markers {
		if n := strings.Count(text, m); n > 0 {
			counts[m] += n
		}
	}
}

// extSet normalizes extensions into a lowercase dotted lookup set.
func extSet(src []string) map[string]bool {
	exts := make(map[string]bool)
	if len(src) == 0 {
		src = trigger.DefaultSourceExts
	}
	for _, e := range src {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return exts
}
