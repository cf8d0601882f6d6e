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
	"fmt"

	"github.com/blinklabs-io/kelpie/database/models"
)

// CheckpointError reports that the account store and the governance index
// were not committed together. The accounts are authoritative; an index
// behind them is missing the events and votes of the lost commit
type CheckpointError struct {
	AccountsTimestamp int64
	IndexTimestamp    int64
	LastEventID       uint
}

func (e CheckpointError) Error() string {
	return fmt.Sprintf(
		"accounts committed at %d but event and vote index at %d (last event %d)",
		e.AccountsTimestamp,
		e.IndexTimestamp,
		e.LastEventID,
	)
}

// IndexBehind reports whether the index missed commits the accounts have
func (e CheckpointError) IndexBehind() bool {
	return e.IndexTimestamp < e.AccountsTimestamp
}

// Checkpoint returns the index position at the last paired commit
func (d *Database) Checkpoint() (models.Checkpoint, error) {
	return d.metadata.GetCheckpoint()
}

func (d *Database) checkCheckpoint() error {
	checkpoint, err := d.metadata.GetCheckpoint()
	if err != nil {
		return fmt.Errorf("read index checkpoint: %w", err)
	}
	accountsTimestamp, err := d.blob.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read account commit timestamp: %w", err)
	}
	if accountsTimestamp != checkpoint.Timestamp {
		return CheckpointError{
			AccountsTimestamp: accountsTimestamp,
			IndexTimestamp:    checkpoint.Timestamp,
			LastEventID:       checkpoint.LastEventID,
		}
	}
	return nil
}

// stampCommit writes the same timestamp to both stores inside txn
func (d *Database) stampCommit(txn *Txn, timestamp int64) error {
	if err := d.metadata.SetCheckpoint(timestamp, txn.Metadata()); err != nil {
		return fmt.Errorf("index checkpoint: %w", err)
	}
	if err := d.blob.SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return fmt.Errorf("account commit timestamp: %w", err)
	}
	return nil
}
