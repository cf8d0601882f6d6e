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

// Package types holds what the account store, the governance index and the
// database coordinating them share.
package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrBlobKeyNotFound reports an account key with no stored value
	ErrBlobKeyNotFound = errors.New("account key not found")
	// ErrConflict reports a commit that lost an optimistic race on an
	// account another transaction wrote first. Retrying re-reads it
	ErrConflict = errors.New("account write conflict")
	// ErrTxnWrongType reports a transaction handle from another store
	ErrTxnWrongType = errors.New("transaction belongs to another store")
	ErrNilTxn       = errors.New("nil transaction")
	ErrTxnFinished  = errors.New("transaction already finished")
	// ErrStoreClosed reports a transaction with no open store behind it
	ErrStoreClosed = errors.New("store closed")
)

// uint64Width is the number of decimal digits in math.MaxUint64
const uint64Width = 20

// Uint64 is a token amount or receipt index column. SQLite integers are
// signed, so values are stored as fixed-width decimal text, which also
// keeps ORDER BY numeric
//
//nolint:recvcheck
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return fmt.Sprintf("%0*d", uint64Width, uint64(u)), nil
}

func (u *Uint64) Scan(val any) error {
	var text string
	switch v := val.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("scan uint64 column: unexpected %T", val)
	}
	parsed, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return fmt.Errorf("scan uint64 column: %w", err)
	}
	*u = Uint64(parsed)
	return nil
}

// Txn commits or discards the writes made through one store. The database
// pairs one per store
type Txn interface {
	Commit() error
	Rollback() error
}

// BlobItem is an account entry produced by an iterator
type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator walks the account keys under a prefix. Items are only valid
// while the transaction that created the iterator is open
type BlobIterator interface {
	Seek(prefix []byte)
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

// BlobIteratorOptions selects the keys an iterator walks
type BlobIteratorOptions struct {
	Prefix []byte
}
