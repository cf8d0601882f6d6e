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

// Package schema defines the persisted account records of the governance
// program and their byte-exact Borsh encoding.
//
// Every encoded account starts with an 8-byte discriminator, the first eight
// bytes of sha256("account:<Name>").
package schema

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

const DiscriminatorSize = 8

var (
	ErrAccountDiscriminator = errors.New("account discriminator mismatch")
	ErrAccountTooShort      = errors.New("account data too short")
	ErrAccountTrailingData  = errors.New("account data has trailing bytes")
)

// Account is implemented by every persisted record
type Account interface {
	AccountName() string
}

// AccountDiscriminator returns the 8-byte prefix for an account name
func AccountDiscriminator(name string) [DiscriminatorSize]byte {
	var ret [DiscriminatorSize]byte
	sum := sha256.Sum256([]byte("account:" + name))
	copy(ret[:], sum[:DiscriminatorSize])
	return ret
}

// Encode serializes an account with its discriminator
func Encode(acct Account) ([]byte, error) {
	var buf bytes.Buffer
	disc := AccountDiscriminator(acct.AccountName())
	buf.Write(disc[:])
	if err := bin.NewBorshEncoder(&buf).Encode(acct); err != nil {
		return nil, fmt.Errorf("encode %s: %w", acct.AccountName(), err)
	}
	return buf.Bytes(), nil
}

// Decode parses account data into acct after checking the discriminator
func Decode(data []byte, acct Account) error {
	if len(data) < DiscriminatorSize {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooShort, len(data))
	}
	disc := AccountDiscriminator(acct.AccountName())
	if !bytes.Equal(data[:DiscriminatorSize], disc[:]) {
		return fmt.Errorf(
			"%w: expected %s",
			ErrAccountDiscriminator,
			acct.AccountName(),
		)
	}
	dec := bin.NewBorshDecoder(data[DiscriminatorSize:])
	if err := dec.Decode(acct); err != nil {
		return fmt.Errorf("decode %s: %w", acct.AccountName(), err)
	}
	if dec.Remaining() != 0 {
		return fmt.Errorf(
			"%w: %d bytes after %s",
			ErrAccountTrailingData,
			dec.Remaining(),
			acct.AccountName(),
		)
	}
	return nil
}

// KindOf returns the account name matching the discriminator of data, or
// an empty string for unknown data
func KindOf(data []byte) string {
	if len(data) < DiscriminatorSize {
		return ""
	}
	for _, name := range accountNames {
		disc := AccountDiscriminator(name)
		if bytes.Equal(data[:DiscriminatorSize], disc[:]) {
			return name
		}
	}
	return ""
}

var accountNames = []string{
	DaoAccountName,
	ProposalAccountName,
	ProposalInstructionAccountName,
	ReceiptAccountName,
	ContentAccountName,
}
