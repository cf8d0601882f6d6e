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
	"time"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/event"
)

// emit appends an event to the persisted log in txn and publishes it on
// the event bus once txn commits
func (p *Program) emit(
	txn *database.Txn,
	eventType event.EventType,
	payload event.GovernanceEvent,
	now int64,
) error {
	data, err := event.EncodeGovernanceEvent(payload)
	if err != nil {
		return err
	}
	err = p.db.AddEvent(
		&models.Event{
			Type:      string(eventType),
			Dao:       payload.DaoAddress(),
			Subject:   payload.SubjectAddress(),
			Actor:     payload.ActorAddress(),
			Timestamp: now,
			Data:      data,
		},
		txn,
	)
	if err != nil {
		return err
	}
	if p.eventBus != nil {
		evt := event.NewEventAt(eventType, payload, time.Unix(now, 0))
		txn.OnCommit(func() {
			p.eventBus.PublishAsync(eventType, evt)
		})
	}
	return nil
}
