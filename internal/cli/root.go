// Package cli holds the cobra commands behind the midlo binary
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"midlo/internal/api"
	"midlo/internal/config"
	"midlo/internal/eventbus"
	"midlo/internal/history"
	"midlo/internal/logging"
)

// globalFlags are shared by every command
type globalFlags struct {
	configPath string
	apiURL     string
	webURL     string
	logLevel   string
}

// CLI holds the resources a command needs
type CLI struct {
	Config    *config.Config
	ConfigSvc config.ConfigService
	Logger    *zap.Logger
	Client    *api.Client

	history *history.Store
}

// NewCLI loads configuration and builds the backend client. Commands that
// own the terminal pass their own logger; nil selects a console logger.
func NewCLI(flags *globalFlags, bus eventbus.EventBus, logger *zap.Logger) (*CLI, error) {
	svc := config.NewConfigServiceWithBus(bus, flags.configPath)
	cfg, err := svc.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.apiURL != "" {
		cfg.APIBaseURL = flags.apiURL
	}
	if flags.webURL != "" {
		cfg.WebBaseURL = flags.webURL
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if logger == nil {
		logger = logging.NewConsole(cfg.LogLevel)
	}

	return &CLI{
		Config:    cfg,
		ConfigSvc: svc,
		Logger:    logger,
		Client:    api.NewClient(cfg.APIClientConfig(), logger),
	}, nil
}

// History opens the search history store on first use. It returns nil when
// history is disabled in config.
func (c *CLI) History() (*history.Store, error) {
	if !c.Config.History.Enabled {
		return nil, nil
	}
	if c.history != nil {
		return c.history, nil
	}
	store, err := history.Open(c.Config.HistoryPath(), c.Config.History.Keep, c.Logger)
	if err != nil {
		return nil, err
	}
	c.history = store
	return store, nil
}

// Close releases the history database and flushes the logger
func (c *CLI) Close() error {
	_ = c.Logger.Sync()
	if c.history != nil {
		return c.history.Close()
	}
	return nil
}

// NewRootCmd creates the midlo command tree
func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "midlo",
		Short: "Find a fair place to meet between two addresses",
		Long: `Midlo finds the midpoint between two addresses and lists places nearby.
Run without arguments to start the interactive terminal UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, flags)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Backend base URL")
	rootCmd.PersistentFlags().StringVar(&flags.webURL, "web-url", "", "Web app base URL used in share links")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "midlo %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newSuggestCmd(flags))
	rootCmd.AddCommand(newMidpointCmd(flags))
	rootCmd.AddCommand(newHistoryCmd(flags))
	rootCmd.AddCommand(newShareCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newServeCmd(flags))

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withCLI builds a CLI for one command run and closes it afterwards
func withCLI(flags *globalFlags, fn func(c *CLI) error) error {
	c, err := NewCLI(flags, nil, nil)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close history: %v\n", closeErr)
		}
	}()
	return fn(c)
}
