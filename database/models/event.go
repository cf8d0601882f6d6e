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

// Event is an entry in the governance event log. Events are written in the
// same transaction as the account changes they describe
type Event struct {
	ID        uint   `gorm:"primarykey"`
	Type      string `gorm:"size:64;index;not null"`
	Dao       []byte `gorm:"size:32;index"`
	Subject   []byte `gorm:"size:32;index"`
	Actor     []byte `gorm:"size:32"`
	Timestamp int64  `gorm:"index;not null"` // ledger clock, unix seconds
	Data      []byte // CBOR-encoded payload
}

// TableName returns the table name
func (Event) TableName() string {
	return "event"
}
