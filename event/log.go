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

package event

import (
	"context"
	"log/slog"

	"github.com/mr-tron/base58"
)

// LogSubscriber writes every delivered event to a logger
type LogSubscriber struct {
	logger *slog.Logger
	level  slog.Level
}

func NewLogSubscriber(logger *slog.Logger, level slog.Level) *LogSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSubscriber{
		logger: logger.With("component", "event"),
		level:  level,
	}
}

func (l *LogSubscriber) Deliver(evt Event) error {
	attrs := []any{
		"type", evt.Type,
		"timestamp", evt.Timestamp.Unix(),
	}
	if ge, ok := evt.Data.(GovernanceEvent); ok {
		attrs = append(
			attrs,
			"dao", FormatAddress(ge.DaoAddress()),
			"subject", FormatAddress(ge.SubjectAddress()),
			"actor", FormatAddress(ge.ActorAddress()),
		)
	}
	l.logger.Log(context.Background(), l.level, "governance event", attrs...)
	return nil
}

func (l *LogSubscriber) Close() {}

// SubscribeAll registers sub for every governance event type
func (e *EventBus) SubscribeAll(sub Subscriber) []EventSubscriberId {
	ids := make([]EventSubscriberId, 0, len(GovernanceEventTypes))
	for _, eventType := range GovernanceEventTypes {
		ids = append(ids, e.RegisterSubscriber(eventType, sub))
	}
	return ids
}

// FormatAddress renders a raw account address as base58
func FormatAddress(address []byte) string {
	if len(address) == 0 {
		return ""
	}
	return base58.Encode(address)
}
