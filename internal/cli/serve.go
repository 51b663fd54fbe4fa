package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/config"
	"github.com/undercut/pitwall/internal/degradation"
	"github.com/undercut/pitwall/internal/gbrt"
	"github.com/undercut/pitwall/internal/logger"
	"github.com/undercut/pitwall/internal/race"
	"github.com/undercut/pitwall/internal/server"
	"github.com/undercut/pitwall/internal/storage"
	"github.com/undercut/pitwall/internal/strategy"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Run the pitwall server",
	Long:    `Run the pitwall server in foreground mode.`,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config
	cfg := config.LoadOrDefault(cfgFile)

	// Override if specified via flag
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Create logger
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("pitwall starting",
		"version", Version,
		"config", cfgFile,
	)

	cat := catalog.Default()

	// Create prediction engine
	model := degradation.New(cat, gbrt.Config{
		Trees:        cfg.Training.Trees,
		MaxDepth:     cfg.Training.MaxDepth,
		LearningRate: cfg.Training.LearningRate,
		MinLeaf:      cfg.Training.MinLeaf,
	}, log)

	// Create strategy evaluator
	evaluator := strategy.NewEvaluator(model, cat, strategy.Policy{
		PitStopSeconds: cfg.Strategy.PitStopSeconds,
		GoodWithin:     cfg.Strategy.GoodWithin,
		ConsiderWithin: cfg.Strategy.ConsiderWithin,
	}, log)

	// Create pit stop optimizer
	agentCfg := race.DefaultAgentConfig()
	agentCfg.LearningRate = cfg.Optimizer.LearningRate
	agentCfg.Discount = cfg.Optimizer.Discount
	agentCfg.EpsilonDecay = cfg.Optimizer.EpsilonDecay
	agentCfg.EpsilonMin = cfg.Optimizer.EpsilonMin
	agent := race.NewAgent(agentCfg, race.DefaultSimConfig(), model, log)

	// Create artifact store
	store := storage.New(cfg.Storage.DataDir, cfg.Storage.ModelFile, cfg.Storage.AgentFile, log)

	// Restore persisted artifacts; a fresh data dir is not an error
	if snap, err := store.LoadModel(); err == nil {
		model.Restore(snap)
	} else if !errors.Is(err, storage.ErrNoArtifact) {
		log.Warn("failed to load tire model artifact", "error", err)
	}
	if state, err := store.LoadAgent(); err == nil {
		if err := agent.Restore(state); err != nil {
			log.Warn("failed to restore pit agent", "error", err)
		}
	} else if !errors.Is(err, storage.ErrNoArtifact) {
		log.Warn("failed to load pit agent artifact", "error", err)
	}

	// Write PID file if configured
	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	// Create and start server
	srv := server.New(cfg, cat, model, evaluator, agent, store, log, Version)

	// Signal channels
	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Handle SIGHUP for hot-reload
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration")

				newCfg := config.LoadOrDefault(cfgFile)
				if err := newCfg.Validate(); err != nil {
					log.Error("invalid configuration, reload aborted", "error", err)
					continue
				}

				srv.ReloadConfig(newCfg)
			case <-shutdownDone:
				return
			}
		}
	}()

	// Handle shutdown signals
	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		// Stop receiving signals
		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("pitwall ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("pitwall stopped")
	return nil
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", pid)), 0644)
}
