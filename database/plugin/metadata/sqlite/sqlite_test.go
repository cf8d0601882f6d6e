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
	"bytes"
	"testing"

	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...SqliteOptionFunc) *MetadataStoreSqlite {
	t.Helper()
	store, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func addr(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestInMemoryStoresAreIsolated(t *testing.T) {
	storeA := newTestStore(t)
	storeB := newTestStore(t)
	require.NoError(t, storeA.AddEvent(&models.Event{Type: "dao.initialized", Timestamp: 1}, nil))
	eventsA, err := storeA.GetEvents(EventFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, eventsA, 1)
	eventsB, err := storeB.GetEvents(EventFilter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, eventsB)
}

func TestEventFilter(t *testing.T) {
	store := newTestStore(t)
	testEvents := []models.Event{
		{Type: "dao.initialized", Dao: addr(1), Subject: addr(1), Timestamp: 10},
		{Type: "proposal.initialized", Dao: addr(1), Subject: addr(2), Timestamp: 11},
		{Type: "proposal.initialized", Dao: addr(3), Subject: addr(4), Timestamp: 12},
		{Type: "vote.cast", Dao: addr(1), Subject: addr(2), Timestamp: 13},
	}
	for i := range testEvents {
		require.NoError(t, store.AddEvent(&testEvents[i], nil))
	}
	testDefs := []struct {
		name     string
		filter   EventFilter
		expected []int64
	}{
		{name: "all", filter: EventFilter{}, expected: []int64{10, 11, 12, 13}},
		{name: "by type", filter: EventFilter{Type: "proposal.initialized"}, expected: []int64{11, 12}},
		{name: "by dao", filter: EventFilter{Dao: addr(1)}, expected: []int64{10, 11, 13}},
		{name: "by subject", filter: EventFilter{Subject: addr(2)}, expected: []int64{11, 13}},
		{name: "after id", filter: EventFilter{AfterID: testEvents[1].ID}, expected: []int64{12, 13}},
		{name: "limit", filter: EventFilter{Limit: 2}, expected: []int64{10, 11}},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			events, err := store.GetEvents(testDef.filter, nil)
			require.NoError(t, err)
			var timestamps []int64
			for _, event := range events {
				timestamps = append(timestamps, event.Timestamp)
			}
			assert.Equal(t, testDef.expected, timestamps)
		})
	}
}

func TestVoteIndex(t *testing.T) {
	store := newTestStore(t)
	vote := &models.Vote{
		Receipt:      addr(9),
		Proposal:     addr(2),
		Authority:    addr(5),
		ReceiptIndex: 0,
		Amount:       80,
		Mint:         addr(7),
		Direction:    models.VoteFor,
		CastAt:       12,
	}
	require.NoError(t, store.AddVote(vote, nil))
	require.Error(t, store.AddVote(&models.Vote{Receipt: addr(9), Proposal: addr(2), Authority: addr(5), Mint: addr(7)}, nil))

	tmpVote, err := store.GetVote(addr(9), nil)
	require.NoError(t, err)
	require.NotNil(t, tmpVote)
	assert.Equal(t, types.Uint64(80), tmpVote.Amount)
	assert.Nil(t, tmpVote.ClosedAt)

	missing, err := store.GetVote(addr(8), nil)
	require.NoError(t, err)
	assert.Nil(t, missing)

	votes, err := store.GetVotes(addr(2), addr(5), nil)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
	votes, err = store.GetVotes(addr(2), addr(6), nil)
	require.NoError(t, err)
	assert.Empty(t, votes)

	require.NoError(t, store.SetVoteClosed(addr(9), 25, nil))
	tmpVote, err = store.GetVote(addr(9), nil)
	require.NoError(t, err)
	require.NotNil(t, tmpVote.ClosedAt)
	assert.Equal(t, int64(25), *tmpVote.ClosedAt)
}

func TestTransactionRollback(t *testing.T) {
	store := newTestStore(t)
	txn := store.Transaction()
	require.NoError(t, store.AddEvent(&models.Event{Type: "vote.cast", Timestamp: 1}, txn))
	require.NoError(t, txn.Rollback())
	events, err := store.GetEvents(EventFilter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	txn = store.Transaction()
	require.NoError(t, store.AddEvent(&models.Event{Type: "vote.cast", Timestamp: 2}, txn))
	require.NoError(t, txn.Commit())
	// A finished transaction cannot be reused
	require.ErrorIs(t, store.AddEvent(&models.Event{Type: "vote.cast"}, txn), types.ErrTxnFinished)
	events, err = store.GetEvents(EventFilter{}, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCheckpoint(t *testing.T) {
	store := newTestStore(t)
	checkpoint, err := store.GetCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, models.Checkpoint{}, checkpoint)

	txn := store.Transaction()
	require.NoError(t, store.AddEvent(&models.Event{Type: "vote.cast", Timestamp: 1}, txn))
	require.NoError(t, store.AddVote(&models.Vote{
		Receipt:   addr(1),
		Proposal:  addr(2),
		Authority: addr(3),
		Mint:      addr(4),
	}, txn))
	require.NoError(t, store.SetCheckpoint(42, txn))
	require.NoError(t, txn.Commit())
	checkpoint, err = store.GetCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, int64(42), checkpoint.Timestamp)
	assert.Equal(t, uint(1), checkpoint.LastEventID)
	assert.Equal(t, int64(1), checkpoint.Votes)
	assert.Equal(t, int64(1), checkpoint.OpenVotes)

	// a later stamp overwrites the single row
	txn = store.Transaction()
	require.NoError(t, store.SetVoteClosed(addr(1), 5, txn))
	require.NoError(t, store.SetCheckpoint(43, txn))
	require.NoError(t, txn.Commit())
	checkpoint, err = store.GetCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, int64(43), checkpoint.Timestamp)
	assert.Zero(t, checkpoint.OpenVotes)
}

func TestVotesByVoterFollowReceiptIndex(t *testing.T) {
	store := newTestStore(t)
	// receipt 10 is recorded before receipt 9
	for i, index := range []uint64{10, 9} {
		require.NoError(t, store.AddVote(&models.Vote{
			Receipt:      addr(byte(i + 1)),
			Proposal:     addr(7),
			Authority:    addr(8),
			Mint:         addr(9),
			ReceiptIndex: types.Uint64(index),
		}, nil))
	}
	votes, err := store.GetVotes(addr(7), addr(8), nil)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, types.Uint64(9), votes[0].ReceiptIndex)
	assert.Equal(t, types.Uint64(10), votes[1].ReceiptIndex)
	votes, err = store.GetVotes(addr(7), nil, nil)
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, types.Uint64(10), votes[0].ReceiptIndex)
}

func TestWrongTxnType(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetEvents(EventFilter{}, fakeTxn{})
	require.ErrorIs(t, err, types.ErrTxnWrongType)
}

func TestDiskStoreWithMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	store := newTestStore(
		t,
		WithDataDir(t.TempDir()),
		WithPromRegistry(registry),
	)
	require.NoError(t, store.AddEvent(&models.Event{Type: "dao.initialized", Timestamp: 1}, nil))
	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
	require.NoError(t, store.runVacuum())
}

type fakeTxn struct{}

func (fakeTxn) Commit() error   { return nil }
func (fakeTxn) Rollback() error { return nil }
