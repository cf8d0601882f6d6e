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

// Package nft records NFT collection membership and verifies it for
// NFT-weighted voting.
package nft

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// MetadataProgramID is the address metadata accounts are derived under
var MetadataProgramID = solana.MustPublicKeyFromBase58(
	"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s",
)

const MetadataAccountName = "Metadata"

var (
	ErrMetadataNotFound   = errors.New("nft metadata not found")
	ErrCollectionMismatch = errors.New("nft is not part of the collection")
	ErrUnverified         = errors.New("nft collection is not verified")
)

// Metadata links an NFT mint to its collection
type Metadata struct {
	Mint       solana.PublicKey
	Collection solana.PublicKey
	Verified   bool
}

func (Metadata) AccountName() string {
	return MetadataAccountName
}

// MetadataAddress returns the metadata account of an NFT mint
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			MetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		MetadataProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("metadata address: %w", err)
	}
	return addr, nil
}

// Registry stores NFT metadata accounts
type Registry struct {
	db *database.Database
}

func NewRegistry(db *database.Database) *Registry {
	return &Registry{db: db}
}

// SetMetadata writes the metadata of an NFT mint
func (r *Registry) SetMetadata(txn *database.Txn, md *Metadata) error {
	addr, err := MetadataAddress(md.Mint)
	if err != nil {
		return err
	}
	data, err := schema.Encode(md)
	if err != nil {
		return err
	}
	return r.db.SetAccount(addr.Bytes(), data, txn)
}

// Metadata returns the metadata of an NFT mint
func (r *Registry) Metadata(
	mint solana.PublicKey,
	txn *database.Txn,
) (*Metadata, error) {
	addr, err := MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	data, err := r.db.GetAccount(addr.Bytes(), txn)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMetadataNotFound, mint)
		}
		return nil, err
	}
	md := &Metadata{}
	if err := schema.Decode(data, md); err != nil {
		return nil, err
	}
	return md, nil
}

// VerifyCollection checks that mint is a verified member of collection
func (r *Registry) VerifyCollection(
	mint solana.PublicKey,
	collection solana.PublicKey,
	txn *database.Txn,
) error {
	md, err := r.Metadata(mint, txn)
	if err != nil {
		return err
	}
	if !md.Mint.Equals(mint) || !md.Collection.Equals(collection) {
		return fmt.Errorf(
			"%w: %s not in %s",
			ErrCollectionMismatch,
			mint,
			collection,
		)
	}
	if !md.Verified {
		return fmt.Errorf("%w: %s", ErrUnverified, mint)
	}
	return nil
}
