package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// BuildIndex scans the front-matter documents in a references directory and
// returns the catalog they declare, the same shape Load's fast path
// consumes. Any existing index file is ignored; the documents are the source
// of truth.
func BuildIndex(refs string, logger *log.Logger) (Catalog, error) {
	fi, err := os.Stat(refs)
	if err != nil {
		return nil, fmt.Errorf("stat references directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", refs)
	}
	return scan(refs, logger), nil
}

// EncodeIndex renders the catalog as index-document JSON. Entry paths inside
// the references directory are written relative so the index survives the
// tree moving; key order is stable.
func EncodeIndex(refs string, cat Catalog) ([]byte, error) {
	out := make(map[string]Entry, len(cat))
	for key, e := range cat {
		if rel, err := filepath.Rel(refs, e.Path); err == nil && !strings.HasPrefix(rel, "..") {
			e.Path = filepath.ToSlash(rel)
		}
		out[key] = e
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteIndex writes the catalog to <refs>/index.json.
func WriteIndex(refs string, cat Catalog) error {
	data, err := EncodeIndex(refs, cat)
	if err != nil {
		return err
	}
	path := filepath.Join(refs, IndexFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
