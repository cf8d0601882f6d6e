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

package token_test

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	var ret solana.PublicKey
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func newTestLedger(t *testing.T) (*database.Database, *token.Ledger) {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db, token.NewLedger(db)
}

func TestLedgerMintAndTransfer(t *testing.T) {
	_, ledger := newTestLedger(t)
	mint, alice, bob := key(1), key(2), key(3)
	require.NoError(t, ledger.Mint(nil, mint, alice, 100))
	require.NoError(t, ledger.Transfer(nil, mint, alice, bob, 30))
	bal, err := ledger.Balance(mint, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), bal)
	bal, err = ledger.Balance(mint, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), bal)
	// other mints are unaffected
	bal, err = ledger.Balance(key(9), alice, nil)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestLedgerErrors(t *testing.T) {
	_, ledger := newTestLedger(t)
	mint, alice, bob := key(1), key(2), key(3)
	require.NoError(t, ledger.Mint(nil, mint, alice, 10))
	err := ledger.Transfer(nil, mint, alice, bob, 11)
	assert.ErrorIs(t, err, token.ErrInsufficientFunds)
	err = ledger.Transfer(nil, mint, alice, bob, 0)
	assert.ErrorIs(t, err, token.ErrInvalidAmount)
	require.NoError(t, ledger.Mint(nil, mint, bob, ^uint64(0)))
	err = ledger.Transfer(nil, mint, alice, bob, 1)
	assert.ErrorIs(t, err, token.ErrBalanceOverflow)
	bal, err := ledger.Balance(mint, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), bal)
}

func TestLedgerSelfTransfer(t *testing.T) {
	_, ledger := newTestLedger(t)
	require.NoError(t, ledger.Mint(nil, key(1), key(2), 5))
	require.NoError(t, ledger.Transfer(nil, key(1), key(2), key(2), 5))
	bal, err := ledger.Balance(key(1), key(2), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), bal)
}

func TestBalanceAddressDistinct(t *testing.T) {
	a, err := token.BalanceAddress(key(1), key(2))
	require.NoError(t, err)
	b, err := token.BalanceAddress(key(2), key(1))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenProgram(t *testing.T) {
	db, ledger := newTestLedger(t)
	rt := runtime.New(nil)
	require.NoError(t, token.Register(rt, ledger))
	mint, alice, bob := key(1), key(2), key(3)
	require.NoError(t, ledger.Mint(nil, mint, alice, 50))
	ix := token.NewTransferInstruction(mint, alice, bob, 20)
	err := db.BlobTransaction(true).Do(func(txn *database.Txn) error {
		return rt.Invoke(context.Background(), txn, ix, []solana.PublicKey{alice})
	})
	require.NoError(t, err)
	bal, err := ledger.Balance(mint, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), bal)
	// bob did not sign
	ix = token.NewTransferInstruction(mint, bob, alice, 5)
	err = db.BlobTransaction(true).Do(func(txn *database.Txn) error {
		return rt.Invoke(context.Background(), txn, ix, []solana.PublicKey{alice})
	})
	assert.ErrorIs(t, err, runtime.ErrMissingSignature)
	// failed transfers leave balances untouched
	ix = token.NewTransferInstruction(mint, alice, bob, 1000)
	err = db.BlobTransaction(true).Do(func(txn *database.Txn) error {
		return rt.Invoke(context.Background(), txn, ix, []solana.PublicKey{alice})
	})
	assert.ErrorIs(t, err, token.ErrInsufficientFunds)
	bal, err = ledger.Balance(mint, alice, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), bal)
}

func TestTokenProgramBadData(t *testing.T) {
	db, ledger := newTestLedger(t)
	rt := runtime.New(nil)
	require.NoError(t, token.Register(rt, ledger))
	ix := token.NewTransferInstruction(key(1), key(2), key(3), 1)
	ix.Data = ix.Data[:4]
	err := db.BlobTransaction(true).Do(func(txn *database.Txn) error {
		return rt.Invoke(context.Background(), txn, ix, []solana.PublicKey{key(2)})
	})
	assert.ErrorIs(t, err, token.ErrInvalidInstruction)
}

func TestSystemProgram(t *testing.T) {
	db, ledger := newTestLedger(t)
	rt := runtime.New(nil)
	require.NoError(t, token.Register(rt, ledger))
	alice, bob := key(2), key(3)
	require.NoError(t, ledger.Mint(nil, token.NativeMint, alice, 1_000))
	ix, err := token.NewNativeTransferInstruction(alice, bob, 250)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, ix.ProgramID)
	require.Len(t, ix.Data, 12)
	assert.Equal(t, token.SystemTransferInstruction, binary.LittleEndian.Uint32(ix.Data))
	err = db.BlobTransaction(true).Do(func(txn *database.Txn) error {
		return rt.Invoke(context.Background(), txn, ix, []solana.PublicKey{alice})
	})
	require.NoError(t, err)
	bal, err := ledger.Balance(token.NativeMint, bob, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), bal)
}
