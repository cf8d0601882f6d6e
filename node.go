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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/kelpie/client"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/mr-tron/base58"
	"go.opentelemetry.io/otel"
)

// Node hosts the governance program over a persistent account store
type Node struct {
	db            *database.Database
	eventBus      *event.EventBus
	program       *program.Program
	client        *client.Client
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	openOnce      sync.Once
	openErr       error
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	n := &Node{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		eventBus.Stop()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Open loads the database and the governance program. It is safe to call
// more than once
func (n *Node) Open() error {
	n.openOnce.Do(func() {
		n.openErr = n.open()
	})
	return n.openErr
}

func (n *Node) open() error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		TracerProvider: otel.GetTracerProvider(),
		BlockCacheSize: n.config.blockCacheSize,
		IndexCacheSize: n.config.indexCacheSize,
	})
	if err != nil {
		var dbErr database.CheckpointError
		if errors.As(err, &dbErr) {
			n.config.logger.Error(
				"account store and governance index diverged",
				"component", "node",
				"index_behind", dbErr.IndexBehind(),
				"last_event_id", dbErr.LastEventID,
				"error", err,
			)
		}
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load governance program
	prog, err := program.New(
		n.db,
		program.WithLogger(n.config.logger),
		program.WithPromRegistry(n.config.promRegistry),
		program.WithTracerProvider(otel.GetTracerProvider()),
		program.WithEventBus(n.eventBus),
		program.WithClock(n.config.clock),
		program.WithProgramID(n.config.programID),
	)
	if err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	n.program = prog
	n.client = client.New(prog, client.WithLogger(n.config.logger))
	if n.config.logEvents {
		for _, eventType := range event.GovernanceEventTypes {
			n.eventBus.SubscribeFunc(eventType, n.logEvent)
		}
	}
	checkpoint, err := n.db.Checkpoint()
	if err != nil {
		return fmt.Errorf("failed to read index checkpoint: %w", err)
	}
	n.config.logger.Info(
		"governance program loaded",
		"component", "node",
		"program", n.config.programID.String(),
		"data_dir", n.config.dataDir,
		"last_event_id", checkpoint.LastEventID,
		"open_votes", checkpoint.OpenVotes,
	)
	return nil
}

// Run opens the node and blocks until ctx is done or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Open(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

func (n *Node) Program() *program.Program {
	return n.program
}

func (n *Node) Client() *client.Client {
	return n.client
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) logEvent(evt event.Event) {
	payload, ok := evt.Data.(event.GovernanceEvent)
	if !ok {
		return
	}
	n.config.logger.Info(
		"governance event",
		"component", "node",
		"type", string(evt.Type),
		"dao", base58.Encode(payload.DaoAddress()),
		"subject", base58.Encode(payload.SubjectAddress()),
		"actor", base58.Encode(payload.ActorAddress()),
		"ledger_time", evt.Timestamp.Unix(),
	)
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Stop delivering events before the store goes away
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	// Flush spans last so the shutdown itself is traced
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
