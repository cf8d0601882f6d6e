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
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type programMetrics struct {
	operations           *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	conflicts            prometheus.Counter
	daos                 prometheus.Counter
	proposals            prometheus.Counter
	votes                *prometheus.CounterVec
	votePower            *prometheus.CounterVec
	instructionsExecuted prometheus.Counter
	proposalsExecuted    prometheus.Counter
	receiptsClosed       prometheus.Counter
}

func (p *Program) initMetrics() {
	promautoFactory := promauto.With(p.promRegistry)
	p.metrics = &programMetrics{
		operations: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kelpie_operations_total",
				Help: "total program operations by name and result",
			},
			[]string{"operation", "result"},
		),
		operationDuration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kelpie_operation_duration_seconds",
				Help:    "program operation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		conflicts: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "kelpie_operation_conflicts_total",
			Help: "total operations rejected with a retryable conflict",
		}),
		daos: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "kelpie_daos_initialized_total",
			Help: "total DAOs initialized",
		}),
		proposals: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "kelpie_proposals_initialized_total",
			Help: "total proposals initialized",
		}),
		votes: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kelpie_votes_total",
				Help: "total votes cast by direction and kind",
			},
			[]string{"direction", "kind"},
		),
		votePower: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kelpie_vote_power_total",
				Help: "total voting power cast by direction",
			},
			[]string{"direction"},
		),
		instructionsExecuted: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "kelpie_instructions_executed_total",
				Help: "total proposal instructions executed",
			},
		),
		proposalsExecuted: promautoFactory.NewCounter(
			prometheus.CounterOpts{
				Name: "kelpie_proposals_executed_total",
				Help: "total proposals fully executed",
			},
		),
		receiptsClosed: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: "kelpie_receipts_closed_total",
			Help: "total receipts closed",
		}),
	}
}

func (m *programMetrics) observe(operation string, start time.Time, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAccountAlreadyInitialized):
		result = "conflict"
		m.conflicts.Inc()
	default:
		result = "error"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(
		time.Since(start).Seconds(),
	)
}
