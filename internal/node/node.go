// Copyright 2026 Blink Labs Software
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
	_ "net/http/pprof" // #nosec G108
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinklabs-io/rotary"
	"github.com/blinklabs-io/rotary/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// nodeOptions translates the application config into node options
func nodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
) ([]rotary.ConfigOptionFunc, error) {
	shutdownTimeout, err := cfg.ParsedShutdownTimeout()
	if err != nil {
		return nil, err
	}
	withdrawalRule, err := cfg.ParsedWithdrawalRule()
	if err != nil {
		return nil, fmt.Errorf("invalid withdrawal rule: %w", err)
	}
	executionPolicy, err := cfg.ParsedExecutionPolicy()
	if err != nil {
		return nil, fmt.Errorf("invalid execution policy: %w", err)
	}
	opts := []rotary.ConfigOptionFunc{
		rotary.WithLogger(logger),
		rotary.WithInMemory(cfg.InMemory),
		rotary.WithWithdrawalRule(withdrawalRule),
		rotary.WithExecutionPolicy(executionPolicy),
		rotary.WithShutdownTimeout(shutdownTimeout),
		rotary.WithTracing(cfg.Tracing),
		rotary.WithTracingStdout(cfg.TracingStdout),
		rotary.WithTracingEndpoint(cfg.TracingEndpoint),
	}
	if !cfg.InMemory {
		opts = append(opts, rotary.WithDatabasePath(cfg.DatabasePath))
	}
	return opts, nil
}

// Open creates and starts a node for a single command. The caller must Stop it
func Open(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	extraOpts ...rotary.ConfigOptionFunc,
) (*rotary.Node, error) {
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts = append(opts, extraOpts...)
	n, err := rotary.New(rotary.NewConfig(opts...))
	if err != nil {
		return nil, err
	}
	if err := n.Start(ctx); err != nil {
		_ = n.Stop()
		return nil, err
	}
	return n, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(fmt.Sprintf("config: %+v", cfg), "component", "node")
	opts, err := nodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	shutdownTimeout, err := cfg.ParsedShutdownTimeout()
	if err != nil {
		return err
	}
	opts = append(
		opts,
		// Enable metrics with default prometheus registry
		rotary.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	)
	n, err := rotary.New(rotary.NewConfig(opts...))
	if err != nil {
		return err
	}
	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	metricsAddr := fmt.Sprintf("%s:%d", cfg.BindAddr, cfg.MetricsPort)
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
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

	// Run node in goroutine
	errChan := make(chan error, 1)
	go func() {
		//nolint:contextcheck
		errChan <- n.Run(signalCtx)
	}()

	shutdown := func() error {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			shutdownTimeout,
		)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(
				"metrics server shutdown error",
				"component", "node",
				"error", err,
			)
		}
		if err := n.Stop(); err != nil {
			logger.Error(
				"shutdown errors occurred",
				"component", "node",
				"error", err,
			)
			return err
		}
		return nil
	}

	// Wait for signal or error
	select {
	case <-signalCtx.Done():
		logger.Info(
			"signal received, initiating graceful shutdown",
			"component", "node",
		)
		if err := shutdown(); err != nil {
			return err
		}
		logger.Info("shutdown complete", "component", "node")
		return nil
	case err := <-errChan:
		if err == nil {
			logger.Info("node stopped", "component", "node")
			return shutdown()
		}
		logger.Error("node error", "component", "node", "error", err)
		signalCtxStop()
		_ = shutdown()
		return err
	}
}
