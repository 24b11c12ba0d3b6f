package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
)

var (
	indexUser  bool
	indexDir   string
	indexCheck bool
	indexWatch bool
)

// watchDebounce is the quiet period after the last document event before
// the index is rebuilt, so editor write bursts coalesce into one rebuild.
const watchDebounce = 500 * time.Millisecond

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Regenerate references/index.json from the documents",
	Long: `Index scans the .md documents in a references directory and rewrites
index.json, the precomputed catalog the loader prefers over scanning. Run it
after editing front-matter by hand, or leave it running with --watch.

--check verifies the index instead of writing it and exits non-zero when it
is stale or missing; useful in CI.`,
	Example: `  crib index
  crib index --user
  crib index --dir docs/references
  crib index --check
  crib index --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := indexTarget()
		if err != nil {
			return err
		}
		if indexCheck {
			return checkIndex(refs)
		}
		if err := writeIndexOnce(refs); err != nil {
			return err
		}
		if indexWatch {
			return watchIndex(cmd.Context(), refs)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&indexUser, "user", false, "index the user layer instead of the project layer")
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "index this references directory instead of a layer")
	indexCmd.Flags().BoolVar(&indexCheck, "check", false, "verify the index is current instead of writing it")
	indexCmd.Flags().BoolVar(&indexWatch, "watch", false, "keep running and reindex when documents change")
	rootCmd.AddCommand(indexCmd)
}

// indexTarget picks the references directory the flags select. The project
// layer is the default.
func indexTarget() (string, error) {
	if indexDir != "" {
		return indexDir, nil
	}
	return layerRefs(indexUser)
}

// writeIndexOnce rebuilds the index from the documents and reports what it
// wrote.
func writeIndexOnce(refs string) error {
	cat, err := catalog.BuildIndex(refs, logger)
	if err != nil {
		return err
	}
	if err := catalog.WriteIndex(refs, cat); err != nil {
		return err
	}
	path := filepath.Join(refs, catalog.IndexFile)
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"path": path, "references": len(cat)})
	}
	fmt.Printf("Wrote %s (%d references)\n", path, len(cat))
	return nil
}

// checkIndex compares the on-disk index with what the documents declare.
func checkIndex(refs string) error {
	cat, err := catalog.BuildIndex(refs, logger)
	if err != nil {
		return err
	}
	want, err := catalog.EncodeIndex(refs, cat)
	if err != nil {
		return err
	}
	path := filepath.Join(refs, catalog.IndexFile)
	got, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s does not exist; run: crib index", path)
		}
		return fmt.Errorf("read index: %w", err)
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s is stale; run: crib index", path)
	}
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"path": path, "current": true, "references": len(cat)})
	}
	fmt.Printf("%s is current (%d references)\n", path, len(cat))
	return nil
}

// watchIndex reindexes after bursts of document changes settle. It runs
// until the context is cancelled.
func watchIndex(ctx context.Context, refs string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(refs); err != nil {
		return fmt.Errorf("watch %s: %w", refs, err)
	}

	// The timer starts stopped; every relevant event resets it, so the
	// rebuild fires once per editing burst. Index writes are filtered out
	// by extension.
	debounce := time.NewTimer(watchDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	logger.Info("watching references", "dir", refs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(evt.Name) != ".md" {
				continue
			}
			if !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Write) &&
				!evt.Has(fsnotify.Remove) && !evt.Has(fsnotify.Rename) {
				continue
			}
			debounce.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch", "err", err)
		case <-debounce.C:
			if err := writeIndexOnce(refs); err != nil {
				logger.Error("reindex", "err", err)
			}
		}
	}
}
