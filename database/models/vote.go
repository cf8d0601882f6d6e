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

import "github.com/blinklabs-io/kelpie/database/types"

// Vote direction constants
const (
	VoteAgainst = 0
	VoteFor     = 1
)

// Vote indexes the receipt created by a vote. The receipt account itself does
// not record the vote direction
type Vote struct {
	ID           uint         `gorm:"primarykey"`
	Receipt      []byte       `gorm:"size:32;uniqueIndex;not null"`
	Proposal     []byte       `gorm:"size:32;index:idx_vote_proposal_authority,priority:1;not null"`
	Authority    []byte       `gorm:"size:32;index:idx_vote_proposal_authority,priority:2;not null"`
	ReceiptIndex types.Uint64 `gorm:"not null"`
	Amount       types.Uint64 `gorm:"not null"`
	Mint         []byte       `gorm:"size:32;not null"`
	Direction    uint8        `gorm:"not null"` // 0=Against, 1=For
	Nft          bool         `gorm:"not null"`
	CastAt       int64        `gorm:"not null"`
	ClosedAt     *int64       `gorm:"index"`
}

// TableName returns the table name
func (Vote) TableName() string {
	return "vote"
}
