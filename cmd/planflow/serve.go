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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/planflow"
	planhttp "github.com/aretw0/planflow/pkg/adapters/http"
	"github.com/aretw0/planflow/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves navigation sessions as a JSON API over HTTP. Flows are read from
--dir and sessions are kept in the selected --store. Prometheus metrics are
exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		dir, _ := cmd.Flags().GetString("dir")

		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		manager, closeStore, err := newManager(cmd, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		hooks := observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))

		api := planhttp.NewHandler(manager, newLoader(cmd),
			planhttp.WithLogger(logger),
			planhttp.WithEngineOptions(
				planflow.WithLogger(logger),
				planflow.WithLifecycleHooks(hooks),
			),
		)

		r := chi.NewRouter()
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		r.Mount("/", api)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			fmt.Fprintf(out, "Starting planflow server on %s\n", srv.Addr)
			fmt.Fprintf(out, "Serving flows from: %s\n", dir)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			fmt.Fprintln(out, "\nStart shutdown...")

			// Give outstanding requests a deadline for completion.
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(sctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("failed to stop server: %w", err)
				}
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}
		fmt.Fprintln(out, "planflow server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
