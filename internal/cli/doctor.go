package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/engine"
	"github.com/scbrown/crib/internal/glob"
)

// issue is one doctor finding. Level "error" means detection is or will be
// broken; "warn" means something is off but degrades quietly.
type issue struct {
	Layer   string `json:"layer,omitempty"`
	Level   string `json:"level"`
	Ref     string `json:"ref,omitempty"`
	Problem string `json:"problem"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the catalogs for problems",
	Long: `Doctor validates both catalog layers: reference bodies that do not exist,
file patterns and import regexes that do not compile, an index.json that no
longer matches the documents, names that collide case-insensitively, and
entries that can never fit the token budget.

It exits non-zero when any error-level problem is found; warnings alone exit
zero.`,
	Example: `  crib doctor
  crib doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := workDir()
		if err != nil {
			return err
		}
		userRoot, projectRoot, err := resolveRoots(work)
		if err != nil {
			return err
		}

		issues := checkLayer("user", userRoot)
		issues = append(issues, checkLayer("project", projectRoot)...)

		opts, err := engineOptions(work, "")
		if err != nil {
			return err
		}
		budget := cfg.ContextBudget
		if budget <= 0 {
			budget = engine.DefaultBudget
		}
		for _, e := range engine.Catalog(opts).Ordered() {
			if e.MaxTokens > budget {
				issues = append(issues, issue{
					Level:   "warn",
					Ref:     e.Name,
					Problem: fmt.Sprintf("maxTokens %d exceeds the %d budget; it can never load", e.MaxTokens, budget),
				})
			}
		}

		if jsonOutput {
			if issues == nil {
				issues = []issue{}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(issues); err != nil {
				return err
			}
			return exitFor(issues)
		}

		if len(issues) == 0 {
			fmt.Println("No problems found.")
			return nil
		}
		tbl := NewTable(os.Stdout, "LAYER", "LEVEL", "REF", "PROBLEM")
		for _, is := range issues {
			layer := is.Layer
			if layer == "" {
				layer = "-"
			}
			ref := is.Ref
			if ref == "" {
				ref = "-"
			}
			tbl.Row(layer, is.Level, ref, is.Problem)
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
		return exitFor(issues)
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func exitFor(issues []issue) error {
	errors := 0
	for _, is := range issues {
		if is.Level == "error" {
			errors++
		}
	}
	if errors > 0 {
		return fmt.Errorf("%d problem(s) need fixing", errors)
	}
	return nil
}

// checkLayer validates one layer's references directory. An absent layer is
// normal and produces nothing.
func checkLayer(layerName, root string) []issue {
	refs := filepath.Join(root, catalog.RefsDir)
	if fi, err := os.Stat(refs); err != nil || !fi.IsDir() {
		return nil
	}
	var issues []issue
	add := func(level, ref, format string, args ...any) {
		issues = append(issues, issue{
			Layer:   layerName,
			Level:   level,
			Ref:     ref,
			Problem: fmt.Sprintf(format, args...),
		})
	}

	// Read the documents directly: the loader collapses case-colliding
	// names by lower-cased key, so collisions are only visible here.
	byKey := map[string][]string{}
	docs, _ := filepath.Glob(filepath.Join(refs, "*.md"))
	for _, doc := range docs {
		if strings.EqualFold(filepath.Base(doc), "README.md") {
			continue
		}
		data, err := os.ReadFile(doc)
		if err != nil {
			add("error", "", "%s: %v", doc, err)
			continue
		}
		e, ok := catalog.FromDoc(string(data), doc)
		if !ok {
			add("warn", "", "%s has no usable front-matter (needs name and triggers)", filepath.Base(doc))
			continue
		}
		byKey[e.Key()] = append(byKey[e.Key()], filepath.Base(doc))
	}
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if files := byKey[key]; len(files) > 1 {
			sort.Strings(files)
			add("error", key, "declared by %s; only one survives loading", strings.Join(files, " and "))
		}
	}

	// The loaded view: missing bodies, dead patterns, trigger-less entries.
	cat := catalog.Load(root, logger)
	for _, key := range cat.Keys() {
		e := cat[key]
		if _, err := os.Stat(e.Path); err != nil {
			add("error", e.Name, "body %s does not exist", e.Path)
		}
		for _, pat := range e.Triggers.FilePatterns {
			if _, err := glob.Compile(pat); err != nil {
				add("error", e.Name, "file pattern %q does not compile: %v", pat, err)
			}
		}
		for _, pat := range e.Triggers.Imports {
			if _, err := regexp.Compile(pat); err != nil {
				add("error", e.Name, "import pattern %q does not compile: %v", pat, err)
			}
		}
		if e.Triggers.Empty() && !e.Disabled {
			add("warn", e.Name, "no triggers declared; it can never load")
		}
	}

	// Stale index.
	indexPath := filepath.Join(refs, catalog.IndexFile)
	if got, err := os.ReadFile(indexPath); err == nil {
		built, buildErr := catalog.BuildIndex(refs, logger)
		if buildErr == nil {
			if want, encErr := catalog.EncodeIndex(refs, built); encErr == nil && !bytes.Equal(got, want) {
				add("warn", "", "index.json does not match the documents; run: crib index")
			}
		}
	}

	return issues
}
