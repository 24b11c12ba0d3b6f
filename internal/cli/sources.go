package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/source"
)

// sourceInfo is the JSON structure for the sources command output.
type sourceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Installer   bool   `json:"installer"`
	Installed   *bool  `json:"installed"` // nil when not an installer
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the registered source conventions",
	Long: `Display every registered source convention: its name, description, whether
it can install the assistant hook, and whether that hook is currently
installed.`,
	Example: `  crib sources
  crib sources --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listSources()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func listSources() error {
	names := source.Names()
	sources := make([]sourceInfo, 0, len(names))

	for _, name := range names {
		src := source.Get(name)
		info := sourceInfo{
			Name:        src.Name(),
			Description: src.Description(),
		}
		if inst, ok := src.(source.Installer); ok {
			info.Installer = true
			if installed, err := inst.IsInstalled(source.InstallOpts{}); err == nil {
				info.Installed = &installed
			}
		}
		sources = append(sources, info)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sources)
	}

	tbl := NewTable(os.Stdout, "NAME", "DESCRIPTION", "INSTALLER", "INSTALLED")
	for _, s := range sources {
		installer := "no"
		if s.Installer {
			installer = "yes"
		}
		installed := "-"
		if s.Installed != nil {
			if *s.Installed {
				installed = "yes"
			} else {
				installed = "no"
			}
		}
		tbl.Row(s.Name, s.Description, installer, installed)
	}
	return tbl.Flush()
}
