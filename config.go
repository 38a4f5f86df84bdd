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

package rotary

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/rotary/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	clock           ledger.Clock
	withdrawalRule  ledger.WithdrawalRule
	dataDir         string
	tracingEndpoint string
	executionPolicy ledger.ExecutionPolicy
	inMemory        bool
	tracing         bool
	tracingStdout   bool
	shutdownTimeout time.Duration
}

func (n *Node) configValidate() error {
	if n.config.inMemory && n.config.dataDir != "" {
		return errors.New(
			"database path cannot be combined with in-memory mode",
		)
	}
	switch n.config.executionPolicy {
	case ledger.ExecutionPolicyAdminOrSigner,
		ledger.ExecutionPolicyAdminOnly,
		ledger.ExecutionPolicySignerOnly:
	default:
		return errors.New(
			"invalid execution policy: " + n.config.executionPolicy.String(),
		)
	}
	if n.config.tracingStdout && !n.config.tracing {
		return errors.New("stdout tracing requires tracing to be enabled")
	}
	if n.config.shutdownTimeout < 0 {
		return errors.New("shutdown timeout cannot be negative")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new rotary config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		withdrawalRule:  ledger.FullCycleRule,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithInMemory disables the database entirely. Ledger state lives only in memory and no journal is kept
func WithInMemory(inMemory bool) ConfigOptionFunc {
	return func(c *Config) {
		c.inMemory = inMemory
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to. In most cases, prometheus.DefaultRegistry would be
// a good choice to get metrics working
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithClock specifies the time source used for payment gating and record timestamps. This defaults to the system clock
func WithClock(clock ledger.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clock
	}
}

// WithWithdrawalRule specifies the rule deciding when a member may withdraw. This defaults to ledger.FullCycleRule
func WithWithdrawalRule(rule ledger.WithdrawalRule) ConfigOptionFunc {
	return func(c *Config) {
		c.withdrawalRule = rule
	}
}

// WithExecutionPolicy specifies who may execute approved proposals. This defaults to the collection admin or any signer
func WithExecutionPolicy(policy ledger.ExecutionPolicy) ConfigOptionFunc {
	return func(c *Config) {
		c.executionPolicy = policy
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables tracing output to stdout. This also requires tracing to enabled separately. This is mostly useful for debugging
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithTracingEndpoint specifies the OTLP HTTP endpoint URL for spans. This overrides the OTEL_EXPORTER_OTLP_* env vars
func WithTracingEndpoint(endpoint string) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingEndpoint = endpoint
	}
}

// WithShutdownTimeout specifies how long a graceful shutdown may take. This defaults to 30s
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
