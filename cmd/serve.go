package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/personabot-ai/personabot/internal/agent"
	"github.com/personabot-ai/personabot/internal/config"
	"github.com/personabot-ai/personabot/internal/logging"
	"github.com/personabot-ai/personabot/internal/notify"
	"github.com/personabot-ai/personabot/internal/persona"
	"github.com/personabot-ai/personabot/internal/server"
	"github.com/personabot-ai/personabot/internal/session"
	"github.com/personabot-ai/personabot/internal/tools"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the persona chat UI and API",
		Long:  "Loads the persona profile, connects the model provider and serves the\nweb chat until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

// runServe wires the full persona stack and serves it until SIGINT/SIGTERM.
func runServe() error {
	cfg := initConfig()
	logger := logging.Logger

	p, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	notifier := notify.NewPushover(cfg.Pushover.URL, cfg.Pushover.Token, cfg.Pushover.User, logger)

	profile, err := persona.LoadProfile(cfg.Persona, persona.PDFExtractor{})
	if err != nil {
		return fmt.Errorf("load persona profile: %w", err)
	}
	logger.Info("persona profile loaded",
		"name", profile.Name,
		"summary_bytes", len(profile.Summary),
		"bio_bytes", len(profile.Bio),
	)

	registry := tools.PersonaRegistry(notifier, logger)
	executor := tools.NewExecutor(registry,
		time.Duration(cfg.Tools.TimeoutSec)*time.Second,
		cfg.Tools.MaxOutputBytes,
		logger,
	)

	chatAgent := agent.New(p, executor, agent.Options{
		Model:         cfg.Model,
		SystemPrompt:  profile.SystemPrompt(),
		MaxTokens:     cfg.MaxTokens,
		MaxIterations: cfg.MaxIterations,
		Logger:        logger,
	})

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := server.New(cfg, chatAgent, store, logger)
	if err != nil {
		return err
	}
	logger.Info("serving persona chat",
		"persona", profile.Name,
		"provider", cfg.Provider,
		"model", chatAgent.Model(),
		"url", srv.URL(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openStore picks sqlite or in-memory persistence for transcripts.
// An empty db_path keeps sessions in memory only.
func openStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.DBPath == "" {
		return session.NewMemoryStore(), nil
	}
	store, err := session.NewSQLiteStore(cfg.Session.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}
