package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/oib/internal/engine"
	"github.com/Veraticus/oib/internal/httpapi"
	"github.com/Veraticus/oib/internal/i18n"
	"github.com/Veraticus/oib/internal/metrics"
	"github.com/Veraticus/oib/internal/platform/httpserver"
	"github.com/Veraticus/oib/internal/platform/tlscert"
	"github.com/Veraticus/oib/internal/service"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the validator and generator over HTTP",
		Long: `Serve exposes the JSON API under /v1 together with /healthz and
Prometheus metrics on /metrics. It shuts down gracefully on SIGINT or SIGTERM.

With --tls a self-signed localhost certificate is created under
server.tls_dir and reused until shortly before it expires.`,
		Example: `  oib serve --addr :8080
  OIB_STORAGE_BACKEND=redis OIB_REDIS_URL=redis://localhost:6379/0 oib serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			app, cleanup, err := initApp(ctx, engine.WithMetrics(metrics.New(reg)))
			if err != nil {
				return err
			}
			defer cleanup()

			logger := slog.Default()
			handler := httpapi.New(app.engine, logger,
				httpapi.WithMaxBatch(app.settings.Server.MaxBatch),
				httpapi.WithLanguage(i18n.Match(app.settings.Language)),
			)

			var health service.HealthChecker
			if hc, ok := app.store.(service.HealthChecker); ok {
				health = hc
			}

			srv := httpserver.New(app.settings.Server.Addr, httpapi.NewRouter(handler, httpapi.RouterConfig{
				Logger:   logger,
				Gatherer: reg,
				Health:   health,
			}))

			if app.settings.Server.TLS {
				certs := tlscert.New(app.settings.Server.TLSDir)
				tlsConfig, err := certs.TLSConfig()
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
				srv.TLSConfig = tlsConfig
				logger.Info("Serving with self-signed certificate", "cert", certs.CertFile())
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("HTTP server listening",
					"addr", srv.Addr,
					"tls", srv.TLSConfig != nil,
					"backend", app.settings.Storage.Backend,
					"language", app.settings.Language)
				var err error
				if srv.TLSConfig != nil {
					err = srv.ListenAndServeTLS("", "")
				} else {
					err = srv.ListenAndServe()
				}
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.settings.Server.ShutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("graceful shutdown failed: %w", err)
				}
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}
