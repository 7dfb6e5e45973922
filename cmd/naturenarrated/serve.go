package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"naturenarrated/internal/api"
	"naturenarrated/pkg/examples"
	"naturenarrated/pkg/logging"
	"naturenarrated/pkg/probe"
	"naturenarrated/pkg/version"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the story and audio HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Address = serveAddr
		}

		cleanupLogs, err := logging.Init(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		defer cleanupLogs()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.address)")
	rootCmd.AddCommand(serveCmd)
}

func runServer(ctx context.Context) error {
	slog.Info("NatureNarrated Started", "version", version.Version, "llm", cfg.LLM.Provider, "tts", cfg.TTS.Engine)

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}

	// Startup Verification
	_ = probe.AnalyzeResults(probe.Run(ctx, probe.Startup(svcs.llm, svcs.speech)))

	catalog, err := examples.Load()
	if err != nil {
		return fmt.Errorf("failed to load example stories: %w", err)
	}

	srv := api.NewServer(cfg.Server, api.Handlers{
		Story:   api.NewStoryHandler(svcs.narrator),
		Audio:   api.NewAudioHandler(svcs.speech, cfg.TTS.RequestsPerMinute, speechVoice(cfg)),
		Catalog: api.NewCatalogHandler(catalog),
		Stats:   api.NewStatsHandler(svcs.tracker, svcs.gate),
	})
	return runServerLifecycle(ctx, srv)
}

func runServerLifecycle(ctx context.Context, srv *http.Server) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
