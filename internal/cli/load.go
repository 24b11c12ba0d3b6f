package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/engine"
	"github.com/scbrown/crib/internal/transcript"
)

var (
	loadPrompt string
	loadHook   bool
	loadBudget int
	loadQuiet  bool
)

// hookPayload is the assistant hook event read from stdin. Only the fields
// crib uses are declared; everything else in the event is ignored.
type hookPayload struct {
	CWD            string `json:"cwd"`
	Prompt         string `json:"prompt"`
	TranscriptPath string `json:"transcript_path"`
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Detect and print the references for this tree and prompt",
	Long: `Load runs the full cycle: read both catalog layers, merge them, evaluate
every trigger against the working tree and prompt, and print the matched
reference bodies as one block, packed under the token budget.

With --hook, load reads a hook event JSON from stdin and takes the working
directory and prompt from it; this is the form assistant hooks invoke. Events
with no prompt of their own (session start) fall back to the last few human
prompts in the session log the event names. The block goes to stdout so the
assistant can append it to context. When nothing matches, nothing is printed
and load exits zero.`,
	Example: `  crib load --prompt "wire up oauth"
  crib load --budget 4000
  echo '{"cwd":"/work/api","prompt":"fix the login"}' | crib load --hook
  crib load --hook --quiet < event.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		work, err := workDir()
		if err != nil {
			return err
		}
		prompt := loadPrompt

		if loadHook {
			payload := readHookPayload(cmd.InOrStdin())
			if payload.CWD != "" && !cmd.Flags().Changed("cwd") {
				work = payload.CWD
			}
			if payload.Prompt != "" && prompt == "" {
				prompt = payload.Prompt
			}
			if prompt == "" && payload.TranscriptPath != "" {
				prompt = transcriptPrompt(payload.TranscriptPath)
			}
		}

		opts, err := engineOptions(work, prompt)
		if err != nil {
			return err
		}
		if loadBudget > 0 {
			opts.Budget = loadBudget
		}

		block, ok := engine.Run(cmd.Context(), opts)

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"loaded": ok, "block": block})
		}
		if !ok {
			if !loadQuiet && !loadHook {
				fmt.Fprintln(os.Stderr, "No references matched.")
			}
			return nil
		}
		fmt.Print(block)
		return nil
	},
}

func init() {
	loadCmd.Flags().StringVar(&loadPrompt, "prompt", "", "prompt text to match keywords against")
	loadCmd.Flags().BoolVar(&loadHook, "hook", false, "read the working directory and prompt from a hook event on stdin")
	loadCmd.Flags().IntVar(&loadBudget, "budget", 0, "token budget for this run (default config context_budget, else 8000)")
	loadCmd.Flags().BoolVar(&loadQuiet, "quiet", false, "print nothing when no references match")
	rootCmd.AddCommand(loadCmd)
}

// readHookPayload decodes the hook event leniently: malformed or empty
// input behaves like an event with no cwd and no prompt.
func readHookPayload(r io.Reader) hookPayload {
	var p hookPayload
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		logger.Debug("reading hook payload", "err", err)
		return p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Debug("parsing hook payload", "err", err)
	}
	return p
}

// recentPromptCount bounds how much of the session log feeds keyword
// matching when the event itself carries no prompt (session start).
const recentPromptCount = 3

// transcriptPrompt recovers recent human prompt text from the session log
// the hook event names. Any failure is absorbed; the hook runs without a
// prompt rather than breaking the session.
func transcriptPrompt(path string) string {
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("opening session log", "path", path, "err", err)
		return ""
	}
	defer f.Close()
	prompts, err := transcript.RecentPrompts(f, recentPromptCount)
	if err != nil {
		logger.Debug("reading session log", "path", path, "err", err)
		return ""
	}
	return strings.Join(prompts, "\n")
}
