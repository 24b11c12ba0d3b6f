package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/engine"
	"github.com/scbrown/crib/internal/frontmatter"
)

var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show one merged reference entry and its body",
	Long: `Show prints one entry of the merged catalog in full: every trigger
pattern, the layer it came from, and the document body with its front-matter
stripped. Names are case-insensitive.`,
	Example: `  crib show terraform
  crib show "Auth Guide" --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := workDir()
		if err != nil {
			return err
		}
		opts, err := engineOptions(work, "")
		if err != nil {
			return err
		}
		cat := engine.Catalog(opts)
		e, ok := cat[strings.ToLower(args[0])]
		if !ok {
			return fmt.Errorf("no reference named %q", args[0])
		}

		body := ""
		if data, err := os.ReadFile(e.Path); err == nil {
			_, body = frontmatter.Parse(string(data))
			body = strings.TrimSpace(body)
		} else {
			logger.Warn("reading reference body", "path", e.Path, "err", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				catalog.Entry
				Layer string `json:"layer"`
				Body  string `json:"body,omitempty"`
			}{e, e.Origin, body})
		}

		fmt.Printf("Name:        %s\n", e.Name)
		fmt.Printf("Layer:       %s\n", e.Origin)
		fmt.Printf("Path:        %s\n", e.Path)
		if e.Description != "" {
			fmt.Printf("Description: %s\n", e.Description)
		}
		fmt.Printf("Priority:    %d\n", e.Priority)
		fmt.Printf("Max tokens:  %d\n", e.MaxTokens)
		fmt.Printf("Triggers:    %s\n", triggerDetail(e.Triggers))
		if body != "" {
			fmt.Printf("\n%s\n", body)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// triggerDetail lists every declared pattern, kind by kind.
func triggerDetail(t catalog.TriggerSet) string {
	var parts []string
	if len(t.FilePatterns) > 0 {
		parts = append(parts, "files "+strings.Join(t.FilePatterns, ", "))
	}
	if len(t.Imports) > 0 {
		parts = append(parts, "imports "+strings.Join(t.Imports, ", "))
	}
	if len(t.Dependencies) > 0 {
		parts = append(parts, "deps "+strings.Join(t.Dependencies, ", "))
	}
	if len(t.Keywords) > 0 {
		parts = append(parts, "keywords "+strings.Join(t.Keywords, ", "))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, "; ")
}
