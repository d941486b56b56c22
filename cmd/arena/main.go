// Command arena runs the werewolf arena: twelve language-model agents
// around a table, a spectator websocket stream, and a match archive.
package main

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

	"github.com/renlu07/wolf-arena/internal/agents"
	"github.com/renlu07/wolf-arena/internal/engine"
	"github.com/renlu07/wolf-arena/internal/infra/ai"
	"github.com/renlu07/wolf-arena/internal/infra/storage"
	"github.com/renlu07/wolf-arena/internal/network"
	"github.com/renlu07/wolf-arena/internal/platform/config"
	"github.com/renlu07/wolf-arena/internal/platform/logger"
	"github.com/renlu07/wolf-arena/internal/platform/metrics"
	"github.com/renlu07/wolf-arena/internal/tts"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:          "arena",
		Short:        "AI werewolf arena",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "arena.yaml", "path to the configuration file")
	root.AddCommand(serveCmd(), simulateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the arena server with the spectator stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func simulateCmd() *cobra.Command {
	var matches int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run headless matches back to back",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd.Context(), matches)
		},
	}
	cmd.Flags().IntVarP(&matches, "matches", "n", 1, "number of matches to play")
	return cmd
}

func buildRegistry(cfg *config.Config, log *logger.Logger) *ai.Registry {
	reg := ai.NewRegistry(cfg.Fallback, log)
	for _, p := range cfg.Providers {
		reg.Register(ai.NewOpenAICompatible(p.Name, p.Endpoint, p.KeyEnv))
	}
	return reg
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logger.New()
	defer log.Sync()
	m := metrics.New()

	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	executor := agents.NewExecutor(buildRegistry(cfg, log), log, m, cfg.Tuning.ProviderTimeout)

	// The hub needs the engine for controls and the engine needs the hub
	// as its sink, so the sink is wired second.
	eng := engine.New(engine.Params{
		Agent:   executor,
		Speaker: tts.NewPacedSpeaker(log),
		Store:   storage.NewMatchRepository(db, log),
		Logger:  log,
		Metrics: m,
		Config:  cfg,
	})
	hub := network.NewHub(eng, log, m)
	eng.SetSink(hub)
	go hub.Run()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	eng.Play()
	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("engine stopped", "error", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("arena listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runSimulate(ctx context.Context, matches int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.Tuning.PhaseDelay = 0
	cfg.Tuning.AutoLoop = true

	log := logger.New()
	defer log.Sync()
	m := metrics.New()

	executor := agents.NewExecutor(buildRegistry(cfg, log), log, m, cfg.Tuning.ProviderTimeout)
	eng := engine.New(engine.Params{
		Agent:   executor,
		Logger:  log,
		Metrics: m,
		Config:  cfg,
	})
	eng.Play()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- eng.Run(runCtx) }()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-ticker.C:
			if n := m.MatchesFinished.Load(); n >= int64(matches) {
				cancel()
				<-done
				fmt.Printf("played %d matches\n", n)
				return nil
			}
		}
	}
}
