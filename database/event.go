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

package database

import (
	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/database/plugin/metadata"
	"github.com/blinklabs-io/kelpie/database/types"
)

// EventFilter narrows an event log query
type EventFilter = metadata.EventFilter

// AddEvent appends an entry to the event log
func (d *Database) AddEvent(event *models.Event, txn *Txn) error {
	return d.metadata.AddEvent(event, metadataTxn(txn))
}

// GetEvents returns event log entries matching the filter
func (d *Database) GetEvents(
	filter EventFilter,
	txn *Txn,
) ([]models.Event, error) {
	return d.metadata.GetEvents(filter, metadataTxn(txn))
}

// metadataTxn returns the metadata handle of txn, or nil to run the query
// outside of a transaction
func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}
