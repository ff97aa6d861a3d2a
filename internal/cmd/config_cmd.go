package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/datagrid/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set datagrid configuration values.

Without arguments, lists all configuration keys.
With one argument, shows the value of that key.
With two arguments, sets the key to the value.

Configuration is stored in ~/.config/datagrid/config.yaml (XDG compliant).
Columns are edited in that file directly.

Keys are in the format: section.key
Sections: endpoint, grid, log

Examples:
  datagrid config                              # List all keys
  datagrid config endpoint.base_url            # Get the endpoint
  datagrid config endpoint.collection albums   # Browse another collection
  datagrid config grid.page_size_options 10,25,50`,
	GroupID: groupSetup,
	Args:    cobra.MaximumNArgs(2),
	RunE:    runConfig,
}

func init() {
	configCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")
	rootCmd.AddCommand(configCmd)
}

// configFile returns the file the config command reads and writes.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPaths().ConfigFile()
}

func runConfig(cmd *cobra.Command, args []string) error {
	applyColorMode()

	path := configFile()
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	switch len(args) {
	case 0:
		return listConfig(out, cfg, path)
	case 1:
		return getConfig(out, cfg, args[0])
	case 2:
		return setConfig(out, cfg, path, args[0], args[1])
	}

	return nil
}

func listConfig(w io.Writer, cfg *config.Config, path string) error {
	fmt.Fprintf(w, "%sConfiguration Keys%s\n", colorBold, colorReset)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintln(w)

	keys := config.ListKeys()
	var failedKeys []string
	for _, key := range keys {
		value, err := cfg.Get(key)
		if err != nil {
			failedKeys = append(failedKeys, key)
			continue
		}

		// Format empty values
		displayValue := value
		if displayValue == "" {
			displayValue = colorDim + "(not set)" + colorReset
		}

		fmt.Fprintf(w, "  %s%s%s = %s\n", colorCyan, key, colorReset, displayValue)
	}

	if len(failedKeys) > 0 {
		fmt.Fprintf(w, "\n%sWarning:%s Failed to retrieve keys: %s\n", colorYellow, colorReset, strings.Join(failedKeys, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %scolumns%s = %s\n", colorCyan, colorReset, columnIDs(cfg))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Config file: %s\n", path)

	return nil
}

func columnIDs(cfg *config.Config) string {
	ids := make([]string, 0, len(cfg.Columns))
	for _, c := range cfg.Columns {
		id := c.ID
		if c.Hidden {
			id += " (hidden)"
		}
		ids = append(ids, id)
	}
	return strings.Join(ids, ", ")
}

func getConfig(w io.Writer, cfg *config.Config, key string) error {
	value, err := cfg.Get(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Fprintf(w, "%s(not set)%s\n", colorDim, colorReset)
	} else {
		fmt.Fprintln(w, value)
	}

	return nil
}

func setConfig(w io.Writer, cfg *config.Config, path, key, value string) error {
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.SaveToFile(path); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s%s%s = %s\n", colorCyan, key, colorReset, value)
	fmt.Fprintf(w, "%sSaved to:%s %s\n", colorGreen, colorReset, path)

	return nil
}
