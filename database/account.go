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
	"errors"

	"github.com/blinklabs-io/kelpie/database/types"
)

var (
	// ErrAccountNotFound is returned when no account is stored at an address
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountAlreadyInUse is returned when creating an account at an
	// address that already holds data
	ErrAccountAlreadyInUse = errors.New("account already in use")
	// ErrReadOnlyTxn is returned when writing through a read-only transaction
	ErrReadOnlyTxn = errors.New("read-only transaction")
)

// GetAccount returns the raw data stored at an account address
func (d *Database) GetAccount(
	address []byte,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.BlobTransaction(false)
		defer txn.Release()
	}
	data, err := d.blob.Get(txn.Blob(), types.AccountBlobKey(address))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return data, nil
}

// AccountExists reports whether an account address holds data
func (d *Database) AccountExists(
	address []byte,
	txn *Txn,
) (bool, error) {
	_, err := d.GetAccount(address, txn)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetAccount stores data at an account address, replacing any existing data
func (d *Database) SetAccount(
	address []byte,
	data []byte,
	txn *Txn,
) error {
	if txn == nil {
		return d.BlobTransaction(true).Do(func(txn *Txn) error {
			return d.SetAccount(address, data, txn)
		})
	}
	if !txn.ReadWrite() {
		return ErrReadOnlyTxn
	}
	return d.blob.Set(txn.Blob(), types.AccountBlobKey(address), data)
}

// CreateAccount stores data at an account address that must not already
// hold data
func (d *Database) CreateAccount(
	address []byte,
	data []byte,
	txn *Txn,
) error {
	if txn == nil {
		return d.BlobTransaction(true).Do(func(txn *Txn) error {
			return d.CreateAccount(address, data, txn)
		})
	}
	exists, err := d.AccountExists(address, txn)
	if err != nil {
		return err
	}
	if exists {
		return ErrAccountAlreadyInUse
	}
	return d.SetAccount(address, data, txn)
}

// DeleteAccount removes the data stored at an account address
func (d *Database) DeleteAccount(
	address []byte,
	txn *Txn,
) error {
	if txn == nil {
		return d.BlobTransaction(true).Do(func(txn *Txn) error {
			return d.DeleteAccount(address, txn)
		})
	}
	if !txn.ReadWrite() {
		return ErrReadOnlyTxn
	}
	exists, err := d.AccountExists(address, txn)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAccountNotFound
	}
	return d.blob.Delete(txn.Blob(), types.AccountBlobKey(address))
}

// IterateAccounts calls fn for every stored account. Iteration stops at the
// first error returned by fn
func (d *Database) IterateAccounts(
	txn *Txn,
	fn func(address []byte, data []byte) error,
) error {
	if txn == nil {
		txn = d.BlobTransaction(false)
		defer txn.Release()
	}
	prefix := []byte(types.AccountBlobKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		address := types.AccountAddressFromKey(item.Key())
		if address == nil {
			continue
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(address, data); err != nil {
			return err
		}
	}
	return iter.Err()
}
