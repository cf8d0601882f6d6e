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

package client

import (
	"cmp"
	"slices"
	"time"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

type DaoEntry struct {
	Address solana.PublicKey
	Dao     *schema.Dao
}

type ProposalEntry struct {
	Address  solana.PublicKey
	Proposal *schema.Proposal
}

// Event is a decoded entry of the governance event log
type Event struct {
	ID        uint
	Type      event.EventType
	Timestamp time.Time
	Payload   event.GovernanceEvent
}

type EventFilter struct {
	Type    event.EventType
	Dao     solana.PublicKey
	Subject solana.PublicKey
	AfterID uint
	Limit   int
}

// ListDaos returns every stored DAO
func (c *Client) ListDaos() ([]DaoEntry, error) {
	var ret []DaoEntry
	err := c.program.Database().IterateAccounts(
		nil,
		func(addr []byte, data []byte) error {
			if schema.KindOf(data) != schema.DaoAccountName {
				return nil
			}
			dao := &schema.Dao{}
			if err := schema.Decode(data, dao); err != nil {
				return err
			}
			ret = append(ret, DaoEntry{
				Address: solana.PublicKeyFromBytes(addr),
				Dao:     dao,
			})
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ListProposals returns the proposals of dao ordered by index
func (c *Client) ListProposals(dao solana.PublicKey) ([]ProposalEntry, error) {
	var ret []ProposalEntry
	err := c.program.Database().IterateAccounts(
		nil,
		func(addr []byte, data []byte) error {
			if schema.KindOf(data) != schema.ProposalAccountName {
				return nil
			}
			proposal := &schema.Proposal{}
			if err := schema.Decode(data, proposal); err != nil {
				return err
			}
			if !proposal.Dao.Equals(dao) {
				return nil
			}
			ret = append(ret, ProposalEntry{
				Address:  solana.PublicKeyFromBytes(addr),
				Proposal: proposal,
			})
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(ret, func(a, b ProposalEntry) int {
		return cmp.Compare(a.Proposal.Index, b.Proposal.Index)
	})
	return ret, nil
}

// ListEvents returns persisted governance events in log order
func (c *Client) ListEvents(filter EventFilter) ([]Event, error) {
	dbFilter := database.EventFilter{
		Type:    string(filter.Type),
		AfterID: filter.AfterID,
		Limit:   filter.Limit,
	}
	if !filter.Dao.IsZero() {
		dbFilter.Dao = filter.Dao.Bytes()
	}
	if !filter.Subject.IsZero() {
		dbFilter.Subject = filter.Subject.Bytes()
	}
	rows, err := c.program.Database().GetEvents(dbFilter, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]Event, 0, len(rows))
	for _, row := range rows {
		eventType := event.EventType(row.Type)
		payload, err := event.DecodeGovernanceEvent(eventType, row.Data)
		if err != nil {
			return nil, err
		}
		ret = append(ret, Event{
			ID:        row.ID,
			Type:      eventType,
			Timestamp: time.Unix(row.Timestamp, 0),
			Payload:   payload,
		})
	}
	return ret, nil
}

// Votes returns the vote index entries on proposal, optionally for a
// single voter
func (c *Client) Votes(
	proposal solana.PublicKey,
	authority solana.PublicKey,
) ([]models.Vote, error) {
	var authorityBytes []byte
	if !authority.IsZero() {
		authorityBytes = authority.Bytes()
	}
	return c.program.Database().GetVotes(proposal.Bytes(), authorityBytes, nil)
}
