package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/docgen"
)

var (
	newDescription  string
	newKeywords     []string
	newFilePatterns []string
	newImports      []string
	newDeps         []string
	newPriority     int
	newMaxTokens    int
	newUser         bool
	newForce        bool
)

var newCmd = &cobra.Command{
	Use:   "new NAME",
	Short: "Scaffold a reference document",
	Long: `New writes a reference document skeleton into the references directory: a
front-matter block declaring the triggers you pass, then Overview,
Conventions and Pitfalls headings to fill in. When the directory already has
an index.json, new refreshes it so the loader sees the document immediately.

--file-patterns and --imports are repeatable rather than comma-separated,
because globs and regexes legitimately contain commas.`,
	Example: `  crib new terraform --file-patterns '*.tf' --deps terraform
  crib new "Auth Guide" --keywords oauth,login --priority 70
  crib new react --file-patterns '*.{jsx,tsx}' --file-patterns '*.css'
  crib new payments --imports 'stripe' --description "Stripe API conventions"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("reference name is empty")
		}
		refs, err := layerRefs(newUser)
		if err != nil {
			return err
		}

		doc, err := docgen.Render(docgen.Scaffold{
			Name:         name,
			Description:  newDescription,
			Priority:     newPriority,
			MaxTokens:    newMaxTokens,
			FilePatterns: newFilePatterns,
			Imports:      newImports,
			Dependencies: newDeps,
			Keywords:     newKeywords,
		})
		if err != nil {
			return err
		}

		path := filepath.Join(refs, docSlug(name)+".md")
		if !newForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.MkdirAll(refs, 0o755); err != nil {
			return fmt.Errorf("create references directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write reference: %w", err)
		}

		refreshed := false
		if _, err := os.Stat(filepath.Join(refs, catalog.IndexFile)); err == nil {
			if err := refreshIndex(refs); err != nil {
				logger.Warn("refreshing index", "err", err)
			} else {
				refreshed = true
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"path": path, "index_refreshed": refreshed})
		}
		fmt.Printf("Created %s\n", path)
		if refreshed {
			fmt.Println("Refreshed index.json")
		}
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newDescription, "description", "", "one-line description")
	newCmd.Flags().StringSliceVar(&newKeywords, "keywords", nil, "prompt keywords that load this reference")
	newCmd.Flags().StringArrayVar(&newFilePatterns, "file-patterns", nil, "glob over the working tree (repeatable)")
	newCmd.Flags().StringArrayVar(&newImports, "imports", nil, "regex matched against source file contents (repeatable)")
	newCmd.Flags().StringSliceVar(&newDeps, "deps", nil, "manifest dependency names")
	newCmd.Flags().IntVar(&newPriority, "priority", catalog.DefaultPriority, "load priority (higher loads first)")
	newCmd.Flags().IntVar(&newMaxTokens, "max-tokens", catalog.DefaultMaxTokens, "declared token cost")
	newCmd.Flags().BoolVar(&newUser, "user", false, "write into the user layer instead of the project layer")
	newCmd.Flags().BoolVar(&newForce, "force", false, "overwrite an existing document")
	rootCmd.AddCommand(newCmd)
}

// docSlug maps a display name to its file name.
func docSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// refreshIndex rebuilds an existing index after a document change.
func refreshIndex(refs string) error {
	cat, err := catalog.BuildIndex(refs, logger)
	if err != nil {
		return err
	}
	return catalog.WriteIndex(refs, cat)
}
