package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/docspell/internal/config"
	"github.com/dgallion1/docspell/internal/pipeline"
)

// Run serves the API on cfg.Port until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	tool, err := cfg.NewTool()
	if err != nil {
		return err
	}

	results := pipeline.NewResultStore(cfg.ResultTTL)
	go results.RunCleanup(ctx, time.Minute)

	srv := NewServer(tool.Language(), results, pipeline.NewStats(time.Hour), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting docspell", "port", cfg.Port, "language", tool.Language().Code)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
