// Package cli defines the cobra command tree for the crib CLI.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/catalog"
	"github.com/scbrown/crib/internal/config"
	"github.com/scbrown/crib/internal/engine"
	"github.com/scbrown/crib/internal/source"
)

var (
	jsonOutput  bool
	sourceName  string
	homeFlag    string
	projectFlag string
	cwdFlag     string
	verbose     bool
)

// configPath is the path to the config file, settable for testing.
var configPath = config.Path()

// cfg and logger are rebuilt by the root PersistentPreRun on every
// execution, after the flags have been parsed.
var (
	cfg    = &config.Config{}
	logger = log.New(os.Stderr)
)

// rootCmd is the top-level crib command.
var rootCmd = &cobra.Command{
	Use:   "crib",
	Short: "Crib - load the right reference docs into your AI assistant",
	Long: `crib keeps a catalog of reference documents in layered references
directories and decides, per session or prompt, which of them an AI coding
assistant should read. Detection looks at the files in the working tree, the
imports they make, the dependencies the manifests declare, and the prompt
text; matched documents are packed under a token budget and printed as one
block.

Catalogs live in ~/.crib/references (user layer, configurable via CRIB_HOME
or --home) and ./.crib/references (project layer). Project entries override
user entries. All read-out commands support --json.`,
	Example: `  # Print the references matching the current tree and prompt
  crib load --prompt "add oauth to the login flow"

  # See what would load and why
  crib detect --prompt "add oauth"

  # Scaffold a reference and keep the index fresh
  crib new terraform --file-patterns '*.tf' --deps terraform
  crib index

  # Wire crib into Claude Code session start
  crib init --hooks --source claude-code`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loaded, err := config.LoadFrom(configPath)
		if err != nil {
			loaded = &config.Config{}
		}
		cfg = loaded
		if cfg.DefaultFormat == "json" && !cmd.Flags().Changed("json") {
			jsonOutput = true
		}
		if cfg.DefaultSource != "" && !cmd.Flags().Changed("source") {
			sourceName = cfg.DefaultSource
		}
		logger = newLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "crib", "source convention for catalog roots")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "user catalog root (overrides the source default and CRIB_HOME)")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project-dir", "", "project catalog root (default per source, under the working directory)")
	rootCmd.PersistentFlags().StringVarP(&cwdFlag, "cwd", "C", "", "working directory to detect against (default current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// newLogger builds the stderr logger. --verbose wins over the configured
// log_level; the warn default keeps absorbed-failure noise out of hook
// output.
func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: "crib"})
	level := log.WarnLevel
	if cfg.LogLevel != "" {
		if parsed, err := log.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = log.DebugLevel
	}
	l.SetLevel(level)
	return l
}

// workDir resolves the directory detection runs against.
func workDir() (string, error) {
	if cwdFlag != "" {
		abs, err := filepath.Abs(cwdFlag)
		if err != nil {
			return "", fmt.Errorf("resolve --cwd: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return wd, nil
}

// activeSource resolves the source convention the catalog roots come from.
func activeSource() (source.Source, error) {
	src := source.Get(sourceName)
	if src == nil {
		return nil, fmt.Errorf("unknown source %q (available: %s)", sourceName, strings.Join(source.Names(), ", "))
	}
	return src, nil
}

// resolveRoots maps the active source onto concrete catalog roots around
// work, then applies the explicit overrides.
func resolveRoots(work string) (userRoot, projectRoot string, err error) {
	src, err := activeSource()
	if err != nil {
		return "", "", err
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	userRoot, projectRoot = src.Roots(home, work)
	if src.Name() == "crib" {
		// config.HomeDir honors CRIB_HOME; keep the native catalog with it.
		userRoot = config.HomeDir()
	}
	if homeFlag != "" {
		userRoot = homeFlag
	}
	if projectFlag != "" {
		projectRoot = projectFlag
	}
	return userRoot, projectRoot, nil
}

// layerRefs returns the references directory of one catalog layer.
func layerRefs(user bool) (string, error) {
	work, err := workDir()
	if err != nil {
		return "", err
	}
	userRoot, projectRoot, err := resolveRoots(work)
	if err != nil {
		return "", err
	}
	if user {
		return filepath.Join(userRoot, catalog.RefsDir), nil
	}
	return filepath.Join(projectRoot, catalog.RefsDir), nil
}

// engineOptions assembles one detection cycle around work and prompt.
func engineOptions(work, prompt string) (engine.Options, error) {
	userRoot, projectRoot, err := resolveRoots(work)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		UserDir:     userRoot,
		ProjectDir:  projectRoot,
		WorkDir:     work,
		Prompt:      prompt,
		Budget:      cfg.ContextBudget,
		SourceExts:  cfg.SourceExtensions,
		ExcludeDirs: cfg.ExcludeDirs,
		Concurrency: cfg.Concurrency,
		Logger:      logger,
	}, nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
