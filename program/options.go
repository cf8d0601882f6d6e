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

package program

import (
	"log/slog"

	"github.com/blinklabs-io/kelpie/clock"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

type ProgramOptionFunc func(*Program)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ProgramOptionFunc {
	return func(p *Program) {
		p.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) ProgramOptionFunc {
	return func(p *Program) {
		p.promRegistry = registry
	}
}

// WithTracerProvider specifies the OpenTelemetry tracer provider
func WithTracerProvider(provider trace.TracerProvider) ProgramOptionFunc {
	return func(p *Program) {
		p.tracerProvider = provider
	}
}

// WithEventBus specifies the event bus governance events are published on
func WithEventBus(bus *event.EventBus) ProgramOptionFunc {
	return func(p *Program) {
		p.eventBus = bus
	}
}

// WithClock specifies the ledger clock
func WithClock(c clock.Clock) ProgramOptionFunc {
	return func(p *Program) {
		p.clock = c
	}
}

// WithProgramID specifies the address of the governance program
func WithProgramID(id solana.PublicKey) ProgramOptionFunc {
	return func(p *Program) {
		p.id = id
	}
}
