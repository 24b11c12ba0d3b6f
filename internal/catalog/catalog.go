// Package catalog defines crib reference catalogs: the entry and trigger
// types, the layered directory loader, the cascade merge, and the index
// document read and written under references/index.json.
package catalog

import (
	"sort"
	"strings"
)

const (
	// DefaultPriority orders entries that do not declare one.
	DefaultPriority = 50
	// DefaultMaxTokens is the advisory token cost for entries that do not
	// declare one.
	DefaultMaxTokens = 2000
	// RefsDir is the subdirectory of a catalog root that holds reference
	// documents.
	RefsDir = "references"
	// IndexFile is the precomputed catalog document inside a references
	// directory.
	IndexFile = "index.json"
)

// Entry origins, recorded during a merge for provenance display.
const (
	OriginUser    = "user"
	OriginProject = "project"
	OriginMerged  = "user+project"
)

// TriggerSet holds the four independent trigger kinds. Each list is an
// OR-condition on its own, and any kind firing activates the entry.
type TriggerSet struct {
	FilePatterns []string `json:"filePatterns,omitempty"`
	Imports      []string `json:"imports,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// Empty reports whether no kind declares any pattern.
func (t TriggerSet) Empty() bool {
	return len(t.FilePatterns) == 0 && len(t.Imports) == 0 &&
		len(t.Dependencies) == 0 && len(t.Keywords) == 0
}

// Entry is one unit of loadable reference documentation.
type Entry struct {
	Name             string     `json:"name"`
	Path             string     `json:"path"`
	Description      string     `json:"description,omitempty"`
	Triggers         TriggerSet `json:"triggers"`
	Priority         int        `json:"priority"`
	MaxTokens        int        `json:"maxTokens"`
	Disabled         bool       `json:"disabled,omitempty"`
	OverrideTriggers bool       `json:"overrideTriggers,omitempty"`

	// Origin records which layer(s) produced the entry after a merge.
	// In-memory only.
	Origin string `json:"-"`
}

// Key returns the catalog key for the entry: its lower-cased name.
func (e Entry) Key() string { return strings.ToLower(e.Name) }

// Catalog maps lower-cased entry names to entries. A nil Catalog means the
// source directory did not exist; a non-nil empty one means it existed but
// declared no entries.
type Catalog map[string]Entry

// Keys returns the catalog keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ordered returns the entries sorted by descending priority, ties broken by
// key, which is the order they are presented and loaded in.
func (c Catalog) Ordered() []Entry {
	entries := make([]Entry, 0, len(c))
	for _, k := range c.Keys() {
		entries = append(entries, c[k])
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority > entries[j].Priority
	})
	return entries
}
