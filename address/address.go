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

// Package address derives the deterministic account addresses used by the
// governance program and validates user-supplied address inputs.
package address

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Seed tags for each derived account kind
const (
	TagProposal    = "proposal"
	TagReceipt     = "receipt"
	TagTreasurer   = "treasurer"
	TagMaster      = "master"
	TagContent     = "content"
	TagInstruction = "instruction"
)

const (
	MetadataLength      = 32
	DiscriminatorLength = 8
)

// DefaultProgramID is the address of the governance program
const DefaultProgramID = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

var (
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidIndex         = errors.New("invalid index")
	ErrInvalidMetadata      = errors.New("invalid metadata")
	ErrInvalidDiscriminator = errors.New("invalid discriminator")
)

// MustProgramID returns the default governance program address
func MustProgramID() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(DefaultProgramID)
}

func le64(v uint64) []byte {
	ret := make([]byte, 8)
	binary.LittleEndian.PutUint64(ret, v)
	return ret
}

// ProposalSeeds returns the seeds of the proposal with the given index
func ProposalSeeds(dao solana.PublicKey, index uint64) [][]byte {
	return [][]byte{[]byte(TagProposal), le64(index), dao.Bytes()}
}

// ReceiptSeeds returns the seeds of a voter's receipt slot on a proposal
func ReceiptSeeds(
	proposal solana.PublicKey,
	authority solana.PublicKey,
	index uint64,
) [][]byte {
	return [][]byte{
		[]byte(TagReceipt),
		le64(index),
		proposal.Bytes(),
		authority.Bytes(),
	}
}

// TreasurerSeeds returns the seeds of a proposal's escrow authority
func TreasurerSeeds(proposal solana.PublicKey) [][]byte {
	return [][]byte{[]byte(TagTreasurer), proposal.Bytes()}
}

// MasterSeeds returns the seeds of a DAO's master signer
func MasterSeeds(dao solana.PublicKey) [][]byte {
	return [][]byte{[]byte(TagMaster), dao.Bytes()}
}

// ContentSeeds returns the seeds of an authority's content record
func ContentSeeds(
	authority solana.PublicKey,
	discriminator [DiscriminatorLength]byte,
) [][]byte {
	return [][]byte{
		[]byte(TagContent),
		discriminator[:],
		authority.Bytes(),
	}
}

// InstructionSeeds returns the seeds of a proposal's instruction slot
func InstructionSeeds(proposal solana.PublicKey, index uint32) [][]byte {
	return [][]byte{
		[]byte(TagInstruction),
		le64(uint64(index)),
		proposal.Bytes(),
	}
}

// Derive finds the canonical program address for the given seeds
func Derive(
	programID solana.PublicKey,
	seeds [][]byte,
) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive address: %w", err)
	}
	return addr, bump, nil
}

// SignerSeeds appends the bump to seeds so the derived address can sign
// through the runtime
func SignerSeeds(seeds [][]byte, bump uint8) [][]byte {
	ret := make([][]byte, 0, len(seeds)+1)
	ret = append(ret, seeds...)
	return append(ret, []byte{bump})
}

func DeriveProposal(
	programID solana.PublicKey,
	dao solana.PublicKey,
	index uint64,
) (solana.PublicKey, uint8, error) {
	return Derive(programID, ProposalSeeds(dao, index))
}

func DeriveReceipt(
	programID solana.PublicKey,
	proposal solana.PublicKey,
	authority solana.PublicKey,
	index uint64,
) (solana.PublicKey, uint8, error) {
	return Derive(programID, ReceiptSeeds(proposal, authority, index))
}

func DeriveTreasurer(
	programID solana.PublicKey,
	proposal solana.PublicKey,
) (solana.PublicKey, uint8, error) {
	return Derive(programID, TreasurerSeeds(proposal))
}

func DeriveMaster(
	programID solana.PublicKey,
	dao solana.PublicKey,
) (solana.PublicKey, uint8, error) {
	return Derive(programID, MasterSeeds(dao))
}

func DeriveContent(
	programID solana.PublicKey,
	authority solana.PublicKey,
	discriminator [DiscriminatorLength]byte,
) (solana.PublicKey, uint8, error) {
	return Derive(programID, ContentSeeds(authority, discriminator))
}

func DeriveInstruction(
	programID solana.PublicKey,
	proposal solana.PublicKey,
	index uint32,
) (solana.PublicKey, uint8, error) {
	return Derive(programID, InstructionSeeds(proposal, index))
}

// ParseAddress parses a base58 account address
func ParseAddress(s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(s))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, s, err)
	}
	return pk, nil
}

// ParseIndex parses a non-negative decimal index
func ParseIndex(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidIndex, s)
	}
	ret, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidIndex, s, err)
	}
	return ret, nil
}

// MetadataFromBytes validates a metadata value
func MetadataFromBytes(b []byte) ([MetadataLength]byte, error) {
	var ret [MetadataLength]byte
	if len(b) != MetadataLength {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidMetadata,
			MetadataLength,
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

// ParseMetadata parses a base58 encoded 32-byte metadata value
func ParseMetadata(s string) ([MetadataLength]byte, error) {
	b, err := base58.Decode(strings.TrimSpace(s))
	if err != nil {
		return [MetadataLength]byte{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}
	return MetadataFromBytes(b)
}

// DiscriminatorFromBytes validates a discriminator value
func DiscriminatorFromBytes(b []byte) ([DiscriminatorLength]byte, error) {
	var ret [DiscriminatorLength]byte
	if len(b) != DiscriminatorLength {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidDiscriminator,
			DiscriminatorLength,
			len(b),
		)
	}
	copy(ret[:], b)
	return ret, nil
}

// ParseDiscriminator parses a base58 encoded 8-byte discriminator
func ParseDiscriminator(s string) ([DiscriminatorLength]byte, error) {
	b, err := base58.Decode(strings.TrimSpace(s))
	if err != nil {
		return [DiscriminatorLength]byte{}, fmt.Errorf("%w: %w", ErrInvalidDiscriminator, err)
	}
	return DiscriminatorFromBytes(b)
}
