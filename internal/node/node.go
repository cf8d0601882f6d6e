// Copyright 2025 Blink Labs Software
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
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/kelpie"
	"github.com/blinklabs-io/kelpie/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Open builds and opens a node from cfg for one-shot commands. The caller
// must Stop it
func Open(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	logEvents bool,
) (*kelpie.Node, error) {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	programID, err := cfg.ProgramPublicKey()
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := cfg.ShutdownDuration()
	if err != nil {
		return nil, err
	}
	n, err := kelpie.New(
		kelpie.NewConfig(
			kelpie.WithLogger(logger),
			kelpie.WithDatabasePath(cfg.DatabasePath),
			kelpie.WithBadgerCacheSizes(
				cfg.BadgerBlockCacheSize,
				cfg.BadgerIndexCacheSize,
			),
			kelpie.WithProgramID(programID),
			kelpie.WithPrometheusRegistry(promRegistry),
			kelpie.WithTracing(cfg.TracingEnabled),
			kelpie.WithTracingStdout(cfg.TracingStdout),
			kelpie.WithEventLogging(logEvents),
			kelpie.WithShutdownTimeout(shutdownTimeout),
		),
	)
	if err != nil {
		return nil, err
	}
	if err := n.Open(); err != nil {
		_ = n.Stop()
		return nil, err
	}
	return n, nil
}

// Run serves the governance node with a metrics endpoint until SIGINT or
// SIGTERM
func Run(cfg *config.Config, logger *slog.Logger) error {
	shutdownTimeout, err := cfg.ShutdownDuration()
	if err != nil {
		return err
	}
	// Enable metrics with default prometheus registry
	n, err := Open(cfg, logger, prometheus.DefaultRegisterer, true)
	if err != nil {
		return err
	}
	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	logger.Info(
		"serving prometheus metrics on "+cfg.MetricsAddr(),
		"component",
		"node",
	)
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr(),
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			logger.Error(
				fmt.Sprintf("failed to start metrics listener: %s", err),
				"component", "node",
			)
			os.Exit(1)
		}
	}()
	// Wait for interrupt/termination signal
	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	runErr := n.Run(signalCtx)
	if runErr == nil {
		logger.Info("signal received, initiating graceful shutdown")
	} else {
		logger.Error("node error", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return err
	}
	logger.Info("shutdown complete")
	return runErr
}
