package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"midlo/internal/api"
	"midlo/internal/config"
	"midlo/internal/eventbus"
	"midlo/internal/logging"
	"midlo/internal/planner"
	"midlo/internal/ui"
)

// e2eEnv switches the UI into test-driver mode
const e2eEnv = "MIDLO_E2E_TEST"

func runTUI(cmd *cobra.Command, flags *globalFlags) error {
	// The log file location comes from config, so read it before anything logs
	bootstrap, err := config.NewConfigServiceWithBus(nil, flags.configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	level := bootstrap.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger, closeLog, err := logging.NewFile(bootstrap.LogFile, level)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signal.NotifyContext(backgroundContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bus := eventbus.New(logger)
	defer bus.Close()

	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigLoadedEvent); ok {
			logger.Info("config loaded",
				zap.String("path", event.Path),
				zap.String("api", event.APIBaseURL),
				zap.String("web", event.WebBaseURL))
		}
	})

	c, err := NewCLI(flags, bus, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			logger.Warn("failed to close history", zap.Error(closeErr))
		}
	}()

	var recorder planner.Recorder
	store, err := c.History()
	if err != nil {
		// history is a convenience, the UI still works without it
		logger.Warn("history unavailable", zap.Error(err))
	} else if store != nil {
		recorder = store
	}

	plannerSvc := planner.NewPlannerService(bus, c.Client, recorder, logger)
	defer plannerSvc.Stop()

	msgs := make(chan tea.Msg, 256)
	stopForwarding := ui.ForwardEvents(bus, msgs, logger)
	defer stopForwarding()

	model := ui.NewModel(ui.Options{
		Bus:        bus,
		Lookup:     api.SuggestionLookup{Client: c.Client},
		Suggest:    c.Config.SuggestOptions(),
		WebBaseURL: c.Config.WebBaseURL,
		Messages:   msgs,
		Logger:     logger,
		E2E:        os.Getenv(e2eEnv) == "1",
	})
	defer model.Dispose()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	logger.Info("starting UI", zap.String("api", c.Client.BaseURL()))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("error running program", zap.Error(err))
		return fmt.Errorf("error running program: %w", err)
	}
	logger.Info("UI exited normally")
	return nil
}

// backgroundContext is used by commands that have no cobra context yet
func backgroundContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
