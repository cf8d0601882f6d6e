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

// Package token keeps fungible balances in the account store and exposes
// them to other programs as the token and system transfer programs.
package token

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// NativeMint identifies the native asset moved by the system program
var NativeMint = solana.SystemProgramID

const BalanceAccountName = "TokenBalance"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrBalanceOverflow   = errors.New("balance overflow")
	ErrOwnerMismatch     = errors.New("balance owner mismatch")
)

// Balance is the amount of a mint held by an owner
type Balance struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

func (Balance) AccountName() string {
	return BalanceAccountName
}

// BalanceAddress returns the account holding owner's balance of mint
func BalanceAddress(mint, owner solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("balance address: %w", err)
	}
	return addr, nil
}

// Ledger reads and moves balances
type Ledger struct {
	db *database.Database
}

func NewLedger(db *database.Database) *Ledger {
	return &Ledger{db: db}
}

func (l *Ledger) load(
	mint, owner solana.PublicKey,
	txn *database.Txn,
) (solana.PublicKey, *Balance, error) {
	addr, err := BalanceAddress(mint, owner)
	if err != nil {
		return addr, nil, err
	}
	bal := &Balance{Mint: mint, Owner: owner}
	data, err := l.db.GetAccount(addr.Bytes(), txn)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return addr, bal, nil
		}
		return addr, nil, err
	}
	if err := schema.Decode(data, bal); err != nil {
		return addr, nil, err
	}
	if !bal.Mint.Equals(mint) || !bal.Owner.Equals(owner) {
		return addr, nil, fmt.Errorf("%w: %s", ErrOwnerMismatch, addr)
	}
	return addr, bal, nil
}

func (l *Ledger) store(
	addr solana.PublicKey,
	bal *Balance,
	txn *database.Txn,
) error {
	data, err := schema.Encode(bal)
	if err != nil {
		return err
	}
	return l.db.SetAccount(addr.Bytes(), data, txn)
}

// Balance returns the amount of mint held by owner. Missing balances are
// zero
func (l *Ledger) Balance(
	mint, owner solana.PublicKey,
	txn *database.Txn,
) (uint64, error) {
	_, bal, err := l.load(mint, owner, txn)
	if err != nil {
		return 0, err
	}
	return bal.Amount, nil
}

// Transfer moves amount of mint from one owner to another
func (l *Ledger) Transfer(
	txn *database.Txn,
	mint, from, to solana.PublicKey,
	amount uint64,
) error {
	if txn == nil {
		return l.db.BlobTransaction(true).Do(func(txn *database.Txn) error {
			return l.Transfer(txn, mint, from, to, amount)
		})
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	fromAddr, fromBal, err := l.load(mint, from, txn)
	if err != nil {
		return err
	}
	if fromBal.Amount < amount {
		return fmt.Errorf(
			"%w: %s holds %d of %s, need %d",
			ErrInsufficientFunds,
			from,
			fromBal.Amount,
			mint,
			amount,
		)
	}
	if from.Equals(to) {
		return nil
	}
	toAddr, toBal, err := l.load(mint, to, txn)
	if err != nil {
		return err
	}
	if toBal.Amount > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	fromBal.Amount -= amount
	toBal.Amount += amount
	if err := l.store(fromAddr, fromBal, txn); err != nil {
		return err
	}
	return l.store(toAddr, toBal, txn)
}

// Mint credits amount of mint to an owner out of thin air. It backs the
// development faucet
func (l *Ledger) Mint(
	txn *database.Txn,
	mint, to solana.PublicKey,
	amount uint64,
) error {
	if txn == nil {
		return l.db.BlobTransaction(true).Do(func(txn *database.Txn) error {
			return l.Mint(txn, mint, to, amount)
		})
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	addr, bal, err := l.load(mint, to, txn)
	if err != nil {
		return err
	}
	if bal.Amount > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	bal.Amount += amount
	return l.store(addr, bal, txn)
}
