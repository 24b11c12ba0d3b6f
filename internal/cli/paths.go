package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
)

// pathsInfo is the JSON structure for the paths command output.
type pathsInfo struct {
	Source      string `json:"source"`
	WorkDir     string `json:"work_dir"`
	UserRoot    string `json:"user_root"`
	UserRefs    string `json:"user_references"`
	ProjectRoot string `json:"project_root"`
	ProjectRefs string `json:"project_references"`
	Config      string `json:"config"`
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show the resolved catalog locations",
	Long: `Paths prints where the active source convention puts both catalog layers
after the --home, CRIB_HOME and --project-dir overrides are applied, plus
the config file location. Use it when detection is not finding what you
expected.`,
	Example: `  crib paths
  crib paths --source claude-code
  crib paths --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := workDir()
		if err != nil {
			return err
		}
		userRoot, projectRoot, err := resolveRoots(work)
		if err != nil {
			return err
		}
		info := pathsInfo{
			Source:      sourceName,
			WorkDir:     work,
			UserRoot:    userRoot,
			UserRefs:    filepath.Join(userRoot, catalog.RefsDir),
			ProjectRoot: projectRoot,
			ProjectRefs: filepath.Join(projectRoot, catalog.RefsDir),
			Config:      configPath,
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		fmt.Printf("Source:             %s\n", info.Source)
		fmt.Printf("Working directory:  %s\n", info.WorkDir)
		fmt.Printf("User root:          %s\n", info.UserRoot)
		fmt.Printf("User references:    %s\n", info.UserRefs)
		fmt.Printf("Project root:       %s\n", info.ProjectRoot)
		fmt.Printf("Project references: %s\n", info.ProjectRefs)
		fmt.Printf("Config:             %s\n", info.Config)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
