package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/docgen"
	"github.com/scbrown/crib/internal/investigate"
)

var (
	investigateDiagram bool
	investigateSave    bool
	investigateDepth   int
)

var investigateCmd = &cobra.Command{
	Use:   "investigate",
	Short: "Survey the working tree: languages, manifests, git activity",
	Long: `Investigate collects repository signals in one pass: a language and layout
survey of the working tree, the dependencies its manifests declare, and
recent git activity when the tree is a repository. The survey walks with the
same exclusion list trigger evaluation uses, so the report doubles as a
detection debugging aid.

--save writes the report as JSON under the project catalog root's
investigations directory; --diagram prints a mermaid graph of the top-level
layout instead of the summary.`,
	Example: `  crib investigate
  crib investigate --diagram
  crib investigate --save
  crib investigate --depth 100 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := workDir()
		if err != nil {
			return err
		}
		rep, err := investigate.Gather(cmd.Context(), investigate.Options{
			Root:        work,
			GitDepth:    investigateDepth,
			SourceExts:  cfg.SourceExtensions,
			ExcludeDirs: cfg.ExcludeDirs,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		saved := ""
		if investigateSave {
			_, projectRoot, err := resolveRoots(work)
			if err != nil {
				return err
			}
			saved, err = rep.Save(projectRoot)
			if err != nil {
				return err
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}

		if investigateDiagram && rep.Survey != nil {
			fmt.Print(docgen.Diagram(rep.Root, rep.Survey.Layout))
		} else {
			printReport(rep)
		}
		if saved != "" {
			fmt.Printf("\nSaved %s\n", saved)
		}
		return nil
	},
}

func init() {
	investigateCmd.Flags().BoolVar(&investigateDiagram, "diagram", false, "print a mermaid diagram of the top-level layout")
	investigateCmd.Flags().BoolVar(&investigateSave, "save", false, "write the report under the project root's investigations directory")
	investigateCmd.Flags().IntVar(&investigateDepth, "depth", 0, "commits the git signals cover (default 30)")
	rootCmd.AddCommand(investigateCmd)
}

func printReport(rep *investigate.Report) {
	fmt.Printf("Root:      %s\n", rep.Root)
	fmt.Printf("Took:      %s\n", rep.Duration.Round(time.Millisecond))
	if s := rep.Survey; s != nil {
		fmt.Printf("Files:     %d\n", s.Files)
		if len(s.Languages) > 0 {
			fmt.Printf("Languages: %s\n", countSummary(s.Languages))
		}
		if len(s.Markers) > 0 {
			fmt.Printf("Markers:   %s\n", countSummary(s.Markers))
		}
		if len(s.Manifests) > 0 {
			fmt.Printf("Manifests: %s\n", strings.Join(s.Manifests, ", "))
		}
	}

	if rep.Git != nil && len(rep.Git.Commits) > 0 {
		fmt.Println()
		fmt.Println("Recent commits:")
		for i, c := range rep.Git.Commits {
			if i == 5 {
				fmt.Printf("  ... %d more\n", len(rep.Git.Commits)-i)
				break
			}
			fmt.Printf("  %s  %s\n", shortCommit(c.Hash), truncate(c.Subject, 60))
		}
		if len(rep.Git.TouchedFiles) > 0 {
			fmt.Println()
			tbl := NewTable(os.Stdout, "CHANGES", "FILE")
			for _, fc := range rep.Git.TouchedFiles {
				tbl.Row(strconv.Itoa(fc.Changes), fc.Path)
			}
			tbl.Flush()
		}
	}

	if len(rep.Errors) > 0 {
		fmt.Println()
		for _, e := range rep.Errors {
			fmt.Printf("warning: %s\n", e)
		}
	}
}

// countSummary renders a histogram map as "key:n" pairs, largest first.
func countSummary(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
