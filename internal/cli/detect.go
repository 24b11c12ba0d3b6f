package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/engine"
	"github.com/scbrown/crib/internal/trigger"
)

var detectPrompt string

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Dry run: show which references would load and why",
	Long: `Detect runs trigger evaluation without reading any reference bodies and
prints the matches with their evidence, highest priority first. Use it to
check why a reference does or does not fire before relying on crib load.`,
	Example: `  crib detect
  crib detect --prompt "migrate the database"
  crib detect --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := workDir()
		if err != nil {
			return err
		}
		opts, err := engineOptions(work, detectPrompt)
		if err != nil {
			return err
		}
		matches := engine.Detect(cmd.Context(), opts)

		if jsonOutput {
			if matches == nil {
				matches = []trigger.Match{}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		}

		if len(matches) == 0 {
			fmt.Println("No references matched.")
			return nil
		}

		tbl := NewTable(os.Stdout, "NAME", "PRIORITY", "TOKENS", "EVIDENCE")
		for _, m := range matches {
			tbl.Row(
				m.Name,
				strconv.Itoa(m.Priority),
				strconv.Itoa(m.MaxTokens),
				truncate(strings.Join(m.Evidence, "; "), 60),
			)
		}
		return tbl.Flush()
	},
}

func init() {
	detectCmd.Flags().StringVar(&detectPrompt, "prompt", "", "prompt text to match keywords against")
	rootCmd.AddCommand(detectCmd)
}
