package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/scbrown/crib/internal/frontmatter"
)

// Load reads the catalog under root's references directory. It returns nil
// when that directory does not exist; that is the normal "no catalog here"
// state, not an error. A present directory always yields a catalog, however
// degraded: a malformed index falls back to scanning the documents, and
// unreadable or annotation-less documents are skipped.
func Load(root string, logger *log.Logger) Catalog {
	refs := filepath.Join(root, RefsDir)
	fi, err := os.Stat(refs)
	if err != nil || !fi.IsDir() {
		return nil
	}
	if cat, ok := loadIndex(refs, logger); ok {
		return cat
	}
	return scan(refs, logger)
}

// rawEntry is the tolerant wire form of an index entry. Pointer fields
// distinguish "absent" from zero so defaults apply only when omitted.
type rawEntry struct {
	Name             string     `json:"name"`
	Path             string     `json:"path"`
	Description      string     `json:"description"`
	Triggers         TriggerSet `json:"triggers"`
	Priority         *int       `json:"priority"`
	MaxTokens        *int       `json:"maxTokens"`
	Disabled         bool       `json:"disabled"`
	OverrideTriggers bool       `json:"overrideTriggers"`
}

func (re rawEntry) entry(key, refs string) Entry {
	e := Entry{
		Name:             re.Name,
		Path:             re.Path,
		Description:      re.Description,
		Triggers:         re.Triggers,
		Priority:         DefaultPriority,
		MaxTokens:        DefaultMaxTokens,
		Disabled:         re.Disabled,
		OverrideTriggers: re.OverrideTriggers,
	}
	if re.Priority != nil {
		e.Priority = *re.Priority
	}
	if re.MaxTokens != nil {
		e.MaxTokens = *re.MaxTokens
	}
	if e.Name == "" {
		e.Name = key
	}
	if e.Path == "" {
		e.Path = strings.ToLower(e.Name) + ".md"
	}
	if !filepath.IsAbs(e.Path) {
		e.Path = filepath.Join(refs, e.Path)
	}
	return e
}

// loadIndex tries the precomputed index document. ok is false when there is
// no index or it cannot be parsed, in which case the caller scans instead.
func loadIndex(refs string, logger *log.Logger) (Catalog, bool) {
	data, err := os.ReadFile(filepath.Join(refs, IndexFile))
	if err != nil {
		return nil, false
	}
	var raw map[string]rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("invalid reference index, scanning documents instead", "dir", refs, "err", err)
		return nil, false
	}
	cat := make(Catalog, len(raw))
	for key, re := range raw {
		e := re.entry(key, refs)
		cat[e.Key()] = e
	}
	return cat, true
}

// scan builds the catalog from the front-matter of the .md documents sitting
// directly in the references directory. README.md is never an entry, and
// documents lacking a name or triggers annotation are ordinary docs, not
// errors.
func scan(refs string, logger *log.Logger) Catalog {
	dirents, err := os.ReadDir(refs)
	if err != nil {
		logger.Warn("cannot read references directory", "dir", refs, "err", err)
		return Catalog{}
	}
	cat := Catalog{}
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if !strings.EqualFold(filepath.Ext(name), ".md") || strings.EqualFold(name, "README.md") {
			continue
		}
		path := filepath.Join(refs, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("skipping unreadable reference document", "path", path, "err", err)
			continue
		}
		e, ok := FromDoc(string(data), path)
		if !ok {
			continue
		}
		cat[e.Key()] = e
	}
	return cat
}

// FromDoc builds an Entry from a reference document's front-matter. The
// document's own location becomes the entry path. ok is false when the
// annotation lacks a name or a triggers declaration, which marks the
// document as not a catalog entry.
func FromDoc(text, path string) (Entry, bool) {
	fields, _ := frontmatter.Parse(text)
	name, _ := fields.Str("name")
	trig, hasTrig := fields.Trig()
	if name == "" || !hasTrig {
		return Entry{}, false
	}
	e := Entry{
		Name:      name,
		Path:      path,
		Priority:  DefaultPriority,
		MaxTokens: DefaultMaxTokens,
		Triggers: TriggerSet{
			FilePatterns: trig["filePatterns"],
			Imports:      trig["imports"],
			Dependencies: trig["dependencies"],
			Keywords:     trig["keywords"],
		},
	}
	if desc, ok := fields.Str("description"); ok {
		e.Description = desc
	}
	if p, ok := fields.Int("priority"); ok {
		e.Priority = p
	}
	if mt, ok := fields.Int("maxTokens"); ok {
		e.MaxTokens = mt
	}
	if d, ok := fields.Bool("disabled"); ok {
		e.Disabled = d
	}
	if o, ok := fields.Bool("overrideTriggers"); ok {
		e.OverrideTriggers = o
	}
	return e, true
}
