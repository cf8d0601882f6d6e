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
)

// AddVote records the vote index entry for a receipt
func (d *Database) AddVote(vote *models.Vote, txn *Txn) error {
	return d.metadata.AddVote(vote, metadataTxn(txn))
}

// GetVote returns the vote recorded for a receipt address, or nil
func (d *Database) GetVote(receipt []byte, txn *Txn) (*models.Vote, error) {
	return d.metadata.GetVote(receipt, metadataTxn(txn))
}

// GetVotes returns the votes on a proposal, optionally for a single voter
func (d *Database) GetVotes(
	proposal []byte,
	authority []byte,
	txn *Txn,
) ([]models.Vote, error) {
	return d.metadata.GetVotes(proposal, authority, metadataTxn(txn))
}

// SetVoteClosed marks the vote for a receipt as closed
func (d *Database) SetVoteClosed(receipt []byte, closedAt int64, txn *Txn) error {
	return d.metadata.SetVoteClosed(receipt, closedAt, metadataTxn(txn))
}
