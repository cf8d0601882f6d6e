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
)

// AddVote records the vote index entry for a newly created receipt
func (d *MetadataStoreSqlite) AddVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(vote); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetVote returns the vote recorded for a receipt address. Returns nil if
// no vote was recorded
func (d *MetadataStoreSqlite) GetVote(
	receipt []byte,
	txn types.Txn,
) (*models.Vote, error) {
	var vote models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("receipt = ?", receipt).First(&vote); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &vote, nil
}

// GetVotes returns the votes cast on a proposal in casting order. Limited
// to a single voter, they come in receipt index order
func (d *MetadataStoreSqlite) GetVotes(
	proposal []byte,
	authority []byte,
	txn types.Txn,
) ([]models.Vote, error) {
	var ret []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where("proposal = ?", proposal).Order("id")
	if len(authority) > 0 {
		query = db.Where("proposal = ? AND authority = ?", proposal, authority).
			Order("receipt_index")
	}
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetVoteClosed marks the vote for a receipt as closed
func (d *MetadataStoreSqlite) SetVoteClosed(
	receipt []byte,
	closedAt int64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Vote{}).
		Where("receipt = ? AND closed_at IS NULL", receipt).
		Update("closed_at", closedAt)
	if result.Error != nil {
		return result.Error
	}
	return nil
}
