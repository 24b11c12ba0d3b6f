package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scbrown/crib/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or modify configuration",
	Long: `View or change crib configuration stored in ~/.crib/config.toml.

With no arguments, shows all configuration settings.
With one argument, shows the value of that key.
With two arguments, sets the key to the given value.

Settings:
  concurrency        Worker count for trigger evaluation (default: 4)
  context_budget     Token ceiling for assembled context (default: 8000)
  default_format     Default output format: "table" or "json"
  default_source     Source convention to use when --source is not given
  exclude_dirs       Comma-separated directories skipped during scans
  log_level          Log verbosity: debug, info, warn, or error
  source_extensions  Comma-separated extensions scanned for imports`,
	Example: `  crib config
  crib config context_budget
  crib config context_budget 12000
  crib config default_source claude-code
  crib config exclude_dirs node_modules,dist,vendor
  crib config default_format json`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileCfg, err := config.LoadFrom(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		switch len(args) {
		case 0:
			return showConfig(fileCfg)
		case 1:
			return getConfig(fileCfg, args[0])
		default:
			return setConfig(fileCfg, args[0], args[1])
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func showConfig(cfg *config.Config) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, key := range config.ValidKeys() {
		val, _ := cfg.Get(key)
		if val == "" {
			val = "(not set)"
		}
		fmt.Fprintf(w, "%s\t%s\n", key, val)
	}
	return w.Flush()
}

func getConfig(cfg *config.Config, key string) error {
	val, err := cfg.Get(key)
	if err != nil {
		return err
	}
	if val == "" {
		return nil
	}
	fmt.Println(val)
	return nil
}

func setConfig(cfg *config.Config, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}
