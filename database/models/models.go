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

package models

// MigrateModels lists the governance index tables
var MigrateModels = []any{
	&Checkpoint{},
	&Event{},
	&Vote{},
}

// Checkpoint records the last commit shared with the account store and how
// far the event log and vote index had advanced at that commit
type Checkpoint struct {
	ID          uint `gorm:"primarykey"`
	Timestamp   int64
	LastEventID uint
	Votes       int64
	OpenVotes   int64
}

func (Checkpoint) TableName() string {
	return "checkpoint"
}
