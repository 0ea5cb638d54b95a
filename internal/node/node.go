// Copyright 2025 Gramsetu Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gramsetu/adarsh"
	"github.com/gramsetu/adarsh/api"
	"github.com/gramsetu/adarsh/internal/config"
	"github.com/gramsetu/adarsh/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newCore builds the core from the loaded configuration
func newCore(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*adarsh.Core, error) {
	shutdownTimeout, err := cfg.ShutdownDuration()
	if err != nil {
		return nil, err
	}
	return adarsh.New(
		adarsh.NewConfig(
			adarsh.WithLogger(logger),
			adarsh.WithDatabasePath(cfg.DatabasePath),
			adarsh.WithBlobPlugin(cfg.BlobPlugin),
			adarsh.WithMetadataPlugin(cfg.MetadataPlugin),
			adarsh.WithPrometheusRegistry(promRegistry),
			adarsh.WithRecomputeMode(scoring.Mode(cfg.RecomputeMode)),
			adarsh.WithRecomputeConcurrency(cfg.RecomputeConcurrency),
			adarsh.WithTracing(cfg.Tracing),
			adarsh.WithTracingStdout(cfg.TracingStdout),
			adarsh.WithShutdownTimeout(shutdownTimeout),
		),
	)
}

// Run serves the API and metrics until SIGINT or SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	shutdownTimeout, err := cfg.ShutdownDuration()
	if err != nil {
		return err
	}
	// Enable metrics with default prometheus registry
	core, err := newCore(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	apiServer := api.New(
		api.ApiConfig{
			ListenAddress: fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.ApiPort),
		},
		core,
		logger,
	)
	// The API is stopped explicitly below so that it drains before the core
	// closes the database
	apiCtx, apiCancel := context.WithCancel(context.Background())
	defer apiCancel()
	if err := apiServer.Start(apiCtx); err != nil {
		_ = core.Stop()
		return err
	}

	// Metrics listener
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errChan := make(chan error, 1)
	if cfg.MetricsPort > 0 {
		logger.Info(
			"serving prometheus metrics on "+metricsServer.Addr,
			"component", "node",
		)
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics listener: %w", err)
			}
		}()
	}

	// Wait for signal or error
	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown", "component", "node")
	case runErr = <-errChan:
		logger.Error("node error", "error", runErr, "component", "node")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err, "component", "node")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err, "component", "node")
	}
	if err := core.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err, "component", "node")
		return errors.Join(runErr, err)
	}
	if runErr == nil {
		logger.Info("shutdown complete", "component", "node")
	}
	return runErr
}
