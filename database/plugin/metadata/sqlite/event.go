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

package sqlite

import (
	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/database/types"
)

// EventFilter narrows an event log query. Zero values match everything
type EventFilter struct {
	Type    string
	Dao     []byte
	Subject []byte
	AfterID uint
	Limit   int
}

// AddEvent appends an entry to the event log
func (d *MetadataStoreSqlite) AddEvent(
	event *models.Event,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(event); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetEvents returns event log entries matching the filter in insertion order
func (d *MetadataStoreSqlite) GetEvents(
	filter EventFilter,
	txn types.Txn,
) ([]models.Event, error) {
	var ret []models.Event
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where("id > ?", filter.AfterID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if len(filter.Dao) > 0 {
		query = query.Where("dao = ?", filter.Dao)
	}
	if len(filter.Subject) > 0 {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if result := query.Order("id").Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
