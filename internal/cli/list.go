package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/engine"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the merged reference catalog",
	Long: `List displays every entry of the merged catalog with the layer it came
from, ordered the way detection would load it: descending priority, ties by
name. Disabled entries are already gone at this point; use crib doctor to
look at a single layer.`,
	Example: `  crib list
  crib list --source claude-code
  crib list --json`,
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

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(listEntries(cat))
		}

		if cat == nil {
			fmt.Println("No catalogs found. Create one with: crib init")
			return nil
		}
		if len(cat) == 0 {
			fmt.Println("No references declared.")
			return nil
		}

		tbl := NewTable(os.Stdout, "NAME", "LAYER", "PRIORITY", "TOKENS", "TRIGGERS")
		for _, e := range cat.Ordered() {
			tbl.Row(
				e.Name,
				e.Origin,
				strconv.Itoa(e.Priority),
				strconv.Itoa(e.MaxTokens),
				triggerSummary(e.Triggers),
			)
		}
		return tbl.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// listEntry is the JSON row for the list command; Origin does not serialize
// on the entry itself, so it rides along as "layer".
type listEntry struct {
	catalog.Entry
	Layer string `json:"layer"`
}

func listEntries(cat catalog.Catalog) []listEntry {
	entries := cat.Ordered()
	out := make([]listEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, listEntry{Entry: e, Layer: e.Origin})
	}
	return out
}

// triggerSummary compacts a trigger set into one table cell.
func triggerSummary(t catalog.TriggerSet) string {
	var parts []string
	if n := len(t.FilePatterns); n > 0 {
		parts = append(parts, fmt.Sprintf("files:%d", n))
	}
	if n := len(t.Imports); n > 0 {
		parts = append(parts, fmt.Sprintf("imports:%d", n))
	}
	if n := len(t.Dependencies); n > 0 {
		parts = append(parts, fmt.Sprintf("deps:%d", n))
	}
	if n := len(t.Keywords); n > 0 {
		parts = append(parts, fmt.Sprintf("keywords:%d", n))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
