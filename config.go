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

package kelpie

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/clock"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	logger         *slog.Logger
	promRegistry   prometheus.Registerer
	clock          clock.Clock
	dataDir        string
	programID      solana.PublicKey
	blockCacheSize uint64
	indexCacheSize uint64
	// Tracing
	tracing       bool
	tracingStdout bool
	// Events
	logEvents       bool
	shutdownTimeout time.Duration
}

func (n *Node) configValidate() error {
	if n.config.programID.IsZero() {
		return errors.New("program ID must not be empty")
	}
	if n.config.tracingStdout && !n.config.tracing {
		return errors.New("stdout tracing requires tracing to be enabled")
	}
	if n.config.shutdownTimeout < 0 {
		return errors.New("shutdown timeout must not be negative")
	}
	return nil
}

// ConfigOptionFunc is a type that represents functions that modify the Connection config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new config object with the provided options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:           clock.System{},
		programID:       address.MustProgramID(),
		shutdownTimeout: 30 * time.Second,
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

// WithBadgerCacheSizes sets the block and index cache sizes of the account store in bytes
func WithBadgerCacheSizes(blockCache, indexCache uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.blockCacheSize = blockCache
		c.indexCacheSize = indexCache
	}
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithProgramID specifies the address the governance program runs under
func WithProgramID(id solana.PublicKey) ConfigOptionFunc {
	return func(c *Config) {
		c.programID = id
	}
}

// WithClock specifies the ledger clock used for voting windows. The default is the system clock
func WithClock(clk clock.Clock) ConfigOptionFunc {
	return func(c *Config) {
		c.clock = clk
	}
}

// WithPrometheusRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables tracing. By default, spans are submitted to a HTTP(s) endpoint using OTLP. This can be configured
// using the OTEL_EXPORTER_OTLP_* env vars documented in the README for [go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp]
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

// WithEventLogging logs every committed governance event at info level
func WithEventLogging(logEvents bool) ConfigOptionFunc {
	return func(c *Config) {
		c.logEvents = logEvents
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown. The default is 30 seconds
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
