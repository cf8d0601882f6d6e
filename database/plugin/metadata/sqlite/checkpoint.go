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
	"errors"

	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const checkpointRowID = 1

// GetCheckpoint returns the last recorded checkpoint, or a zero checkpoint
// for an empty store
func (d *MetadataStoreSqlite) GetCheckpoint() (models.Checkpoint, error) {
	var ret models.Checkpoint
	result := d.DB().First(&ret, checkpointRowID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return models.Checkpoint{}, nil
		}
		return models.Checkpoint{}, result.Error
	}
	return ret, nil
}

// SetCheckpoint stamps txn with timestamp along with the event log head and
// the vote counts as they stand inside txn
func (d *MetadataStoreSqlite) SetCheckpoint(
	timestamp int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	checkpoint := models.Checkpoint{
		ID:        checkpointRowID,
		Timestamp: timestamp,
	}
	result := db.Model(&models.Event{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&checkpoint.LastEventID)
	if result.Error != nil {
		return result.Error
	}
	if result := db.Model(&models.Vote{}).Count(&checkpoint.Votes); result.Error != nil {
		return result.Error
	}
	result = db.Model(&models.Vote{}).
		Where("closed_at IS NULL").
		Count(&checkpoint.OpenVotes)
	if result.Error != nil {
		return result.Error
	}
	result = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"timestamp", "last_event_id", "votes", "open_votes"},
		),
	}).Create(&checkpoint)
	return result.Error
}
