package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/docgen"
	"github.com/scbrown/crib/internal/source"
)

var (
	initUser  bool
	initHooks bool
	initEvent string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a references directory, optionally with the assistant hook",
	Long: `Init creates the references directory for the selected layer and drops a
starter document in it when the directory is new.

With --hooks, init also wires the active source's assistant to run
"crib load --hook": claude-code merges a SessionStart entry into
~/.claude/settings.json without touching unrelated settings. Pass
--event prompt to hook UserPromptSubmit instead; that event carries the
prompt text into keyword detection.`,
	Example: `  crib init
  crib init --user
  crib init --hooks --source claude-code
  crib init --hooks --source claude-code --event prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := layerRefs(initUser)
		if err != nil {
			return err
		}

		created := false
		if _, err := os.Stat(refs); errors.Is(err, os.ErrNotExist) {
			created = true
		}
		if err := os.MkdirAll(refs, 0o755); err != nil {
			return fmt.Errorf("create references directory: %w", err)
		}

		starter := filepath.Join(refs, "example.md")
		if created {
			if err := writeStarter(starter); err != nil {
				logger.Warn("writing starter document", "err", err)
			}
		}

		hookInstalled := false
		if initHooks {
			fresh, err := installHook(initEvent)
			if err != nil {
				return err
			}
			hookInstalled = fresh
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"references": refs,
				"created":    created,
				"hooks":      hookInstalled,
			})
		}
		fmt.Printf("References directory: %s\n", refs)
		if created {
			fmt.Printf("Starter document:     %s\n", starter)
		}
		if hookInstalled {
			fmt.Printf("Hook installed for %s\n", sourceName)
		}
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Println("  crib new NAME --keywords ...   scaffold a real reference")
		fmt.Println("  crib detect                    see what fires")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initUser, "user", false, "initialize the user layer instead of the project layer")
	initCmd.Flags().BoolVar(&initHooks, "hooks", false, "also install the assistant hook for the active source")
	initCmd.Flags().StringVar(&initEvent, "event", "", `hook event: "session" (default) or "prompt"`)
	rootCmd.AddCommand(initCmd)
}

// writeStarter scaffolds the first document of a fresh references
// directory.
func writeStarter(path string) error {
	doc, err := docgen.Render(docgen.Scaffold{
		Name:        "Example",
		Description: "Replace with your first reference",
		Priority:    catalog.DefaultPriority,
		MaxTokens:   catalog.DefaultMaxTokens,
		Keywords:    []string{"crib example"},
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(doc), 0o644)
}

// installHook wires the active source's assistant to run crib on the chosen
// event. fresh is false when a crib hook was already in place.
func installHook(event string) (fresh bool, err error) {
	src, err := activeSource()
	if err != nil {
		return false, err
	}
	installer, ok := src.(source.Installer)
	if !ok {
		return false, fmt.Errorf("source %q does not support hook install", src.Name())
	}
	opts := source.InstallOpts{Event: event}
	installed, err := installer.IsInstalled(opts)
	if err == nil && installed {
		fmt.Printf("hook already configured for %s\n", src.Name())
		return false, nil
	}
	if err := installer.Install(opts); err != nil {
		return false, err
	}
	return true, nil
}
