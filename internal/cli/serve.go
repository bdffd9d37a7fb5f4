package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"midlo/internal/share"
)

// newServeCmd creates the serve command
func newServeCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve link previews for shared searches and places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCLI(flags, func(c *CLI) error {
				return runServe(cmd, c)
			})
		},
	}
	cmd.Flags().String("addr", "", "Listen address (defaults to share.addr from config)")
	return cmd
}

// NewShareServerCmd is the root command of the standalone preview server
func NewShareServerCmd(version string) *cobra.Command {
	flags := &globalFlags{}
	cmd := newServeCmd(flags)
	cmd.Use = "midlo-share"
	cmd.Version = version
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&flags.apiURL, "api-url", "", "Backend base URL")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return cmd
}

func runServe(cmd *cobra.Command, c *CLI) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = c.Config.Share.Addr
	}

	ctx, cancel := signal.NotifyContext(backgroundContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := share.NewCachedSource(
		share.APISource{Client: c.Client, Logger: c.Logger},
		c.Config.Share.CacheSize,
		c.Config.Share.CacheTTL.Duration,
	)
	srv := share.NewServer(share.ServerConfig{
		Source:     source,
		APIBaseURL: c.Client.BaseURL(),
	}, c.Logger)

	c.Logger.Info("starting share server",
		zap.String("addr", addr),
		zap.String("api", c.Client.BaseURL()),
		zap.Int("cache_size", c.Config.Share.CacheSize))

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
