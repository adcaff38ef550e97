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
	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/config"
)

var (
	configPath string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "agentcy",
	Short: "AGENTCY tactical AI backend",
	Long: `agentcy forwards mission, intelligence, planning and threat requests
to a generative-language gateway and returns structured tactical records.

Run without a subcommand to start the runtime named by server.runtime.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, cfg.Server.Runtime)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the synchronous HTTP server runtime",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, config.RuntimeServer)
	},
}

var edgeCmd = &cobra.Command{
	Use:   "edge",
	Short: "Run the event-loop edge runtime behind the HTTP listener",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, config.RuntimeEdge)
	},
}

func init() {
	def := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", def, "path to config.yaml")
	rootCmd.AddCommand(serveCmd, edgeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}
	logger, err = newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config, runtime string) error {
	defer logger.Sync()

	a, err := build(ctx, cfg, logger, runtime)
	if err != nil {
		return err
	}
	defer a.Close()

	// The edge loop outlives the signal context so requests that
	// srv.Shutdown is still draining get their real response.
	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer stopLoop()
	loopDone := make(chan error, 1)
	if a.edge != nil {
		go func() { loopDone <- a.edge.Run(loopCtx) }()
	} else {
		close(loopDone)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     a.handler,
		ReadTimeout: 15 * time.Second,
		// leaves room for a full gateway round-trip
		WriteTimeout: cfg.Gateway.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", addr),
			zap.String("runtime", runtime),
			zap.String("provider", cfg.Gateway.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		logger.Error("server stopped", zap.Error(err))
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout+5*time.Second)
	defer cancel()
	shutdownErr := srv.Shutdown(ctx2)
	if shutdownErr != nil {
		logger.Warn("shutdown error", zap.Error(shutdownErr))
	}

	stopLoop()
	select {
	case <-loopDone:
	case <-ctx2.Done():
		logger.Warn("edge runtime did not drain before deadline")
	}
	return shutdownErr
}
