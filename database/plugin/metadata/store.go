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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/kelpie/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// EventFilter narrows an event log query
type EventFilter = sqlite.EventFilter

type MetadataStore interface {
	// Database
	Close() error
	GetCheckpoint() (models.Checkpoint, error)
	SetCheckpoint(int64, types.Txn) error
	Transaction() types.Txn

	// Event log
	AddEvent(*models.Event, types.Txn) error
	GetEvents(EventFilter, types.Txn) ([]models.Event, error)

	// Vote index
	AddVote(*models.Vote, types.Txn) error
	GetVote([]byte, types.Txn) (*models.Vote, error)
	GetVotes([]byte, []byte, types.Txn) ([]models.Vote, error)
	SetVoteClosed([]byte, int64, types.Txn) error
}

// New returns a sqlite-backed metadata store
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	tracerProvider trace.TracerProvider,
) (MetadataStore, error) {
	store, err := sqlite.New(
		sqlite.WithDataDir(dataDir),
		sqlite.WithLogger(logger),
		sqlite.WithPromRegistry(promRegistry),
		sqlite.WithTracerProvider(tracerProvider),
	)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	return store, nil
}
