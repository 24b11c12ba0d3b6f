package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/engine"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the merged catalog as index-document JSON",
	Long: `Export prints the merged catalog in the same JSON shape as
references/index.json. Redirect it to a file to snapshot the effective
catalog of a tree, or feed it to tooling that consumes the index format.
Entry paths stay as the merge resolved them.`,
	Example: `  crib export > catalog.json
  crib export --source claude-code`,
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
		if cat == nil {
			return fmt.Errorf("no catalogs found under %s", work)
		}

		// An empty base directory keeps the merged absolute paths.
		data, err := catalog.EncodeIndex("", cat)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
