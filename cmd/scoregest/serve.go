package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/scoregest/internal/api"
	"github.com/dgallion1/scoregest/internal/metrics"
	"github.com/dgallion1/scoregest/internal/pathstore"
	"github.com/dgallion1/scoregest/internal/pipeline"
	"github.com/dgallion1/scoregest/internal/protocol"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the parse HTTP API",
		Long: `Run the HTTP API: uploaded PDFs are queued, parsed by a worker pool
and, when pathstore_url is configured, stored in pathstore.

Requires SCOREGEST_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}

			ctx := cmd.Context()
			m := metrics.NewManager(
				metrics.WithNamespace(cfg.Metrics.Namespace),
				metrics.WithHistogramBuckets(cfg.Metrics.ParseBuckets),
			)
			parser := protocol.NewParser(cfg.Template, log, protocol.WithMetrics(m))

			// Initialize pathstore only when configured.
			var store pipeline.Store
			if cfg.PathstoreURL != "" {
				ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
				defer ps.Close()
				store = ps
			}

			orch := pipeline.NewOrchestrator(*cfg, parser, store, m, log)
			orch.Start(ctx)

			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      api.NewServer(orch, m, log, *cfg),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			done := make(chan struct{})
			go func() {
				defer close(done)
				<-ctx.Done()
				log.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				httpServer.Shutdown(shutdownCtx)
				orch.Stop()
			}()

			log.Info("starting scoregest", "port", cfg.Port, "workers", cfg.WorkerCount, "pathstore", store != nil)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-done
			return nil
		},
	}
}
