package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/datagrid/internal/config"
	"github.com/runger/datagrid/internal/grid"
	"github.com/runger/datagrid/internal/logging"
)

// Command groups shown in help output.
const (
	groupData  = "data"
	groupSetup = "setup"
)

// Flags shared by the grid and fetch commands.
var (
	configPath     string
	endpointFlag   string
	collectionFlag string
	pageSizeFlag   int
	printLocation  bool
)

var rootCmd = &cobra.Command{
	Use:   "datagrid [location]",
	Short: "Browse a paginated REST collection in a terminal grid",
	Long: `datagrid - a paginated, searchable, sortable grid over a REST list endpoint

The optional location seeds the view state, e.g. "?q=jazz" starts with the
server filter set to jazz. The search line accepts plain text, which is
sent to the server as q, or /pattern/flags, which filters the current page.

Keys: n/p next/previous page, g/G first/last, +/- page size, / search,
s sort, c columns, r refresh, alt+left/right history, ? help, q quit.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGrid,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError:%s %v\n", colorRed, colorReset, err)
	}
	return err
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupData, Title: "Data Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/datagrid/config.yaml)")
	pf.StringVar(&endpointFlag, "endpoint", "", "endpoint base URL, e.g. http://localhost:3000")
	pf.StringVar(&collectionFlag, "collection", "", "collection to list, e.g. users")
	pf.IntVar(&pageSizeFlag, "page-size", 0, "initial page size")

	rootCmd.Flags().BoolVar(&printLocation, "print-location", false, "print the final location to stdout on exit")
}

// loadConfig loads the config file and applies command line overrides.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if endpointFlag != "" {
		cfg.Endpoint.BaseURL = endpointFlag
	}
	if collectionFlag != "" {
		cfg.Endpoint.Collection = collectionFlag
	}
	if pageSizeFlag != 0 {
		cfg.Grid.PageSize = pageSizeFlag
		if !slices.Contains(cfg.Grid.PageSizeOptions, pageSizeFlag) {
			opts := append(slices.Clone(cfg.Grid.PageSizeOptions), pageSizeFlag)
			slices.Sort(opts)
			cfg.Grid.PageSizeOptions = opts
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// logTarget opens the configured log file. The TUI owns the terminal, so
// logs never go to stderr while it runs.
func logTarget(cfg *config.Config) (io.WriteCloser, error) {
	if cfg.Log.File != "" {
		return logging.OpenFile(cfg.Log.File)
	}
	paths := config.DefaultPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}
	return logging.OpenFile(paths.LogFile())
}

func runGrid(cmd *cobra.Command, args []string) error {
	tty, err := openTTY()
	if err != nil {
		return err
	}
	if tty != nil {
		defer tty.Close()
		if err := checkTermWidth(tty); err != nil {
			return err
		}
	}
	if err := checkTERM(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logFile, err := logTarget(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.New(&logging.Config{Output: logFile, Level: logging.ParseLevel(cfg.Log.Level)})

	raw := "/"
	if len(args) == 1 {
		raw = args[0]
	}
	s, err := newSession(cfg, raw, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	logging.LogStartup(logger, logging.StartupInfo{
		Version:    Version,
		ConfigPath: configPath,
		Endpoint:   cfg.Endpoint.BaseURL,
		Collection: cfg.Endpoint.Collection,
		Location:   s.loc.String(),
		PageSize:   cfg.Grid.PageSize,
		PID:        os.Getpid(),
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if tty != nil {
		// Detect the profile from the tty: stdout may be a pipe when
		// --print-location output is captured.
		lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())
		opts = append(opts, tea.WithInput(tty), tea.WithOutput(tty))
	}

	final, err := tea.NewProgram(s.model, opts...).Run()
	if err != nil {
		logging.LogShutdown(logger, s.loc.String(), err)
		return fmt.Errorf("TUI error: %w", err)
	}

	m, ok := final.(grid.Model)
	if !ok {
		return errors.New("unexpected model type")
	}
	logging.LogShutdown(logger, m.Location(), nil)

	if printLocation {
		fmt.Fprintln(cmd.OutOrStdout(), m.Location())
	}
	return nil
}
