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

package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/blinklabs-io/kelpie/schema"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction names. The first eight bytes of sha256("global:<name>")
// prefix the encoded instruction data
const (
	OpInitializeDao                 = "initialize_dao"
	OpUpdateSupply                  = "update_supply"
	OpUpdateRegime                  = "update_dao_regime"
	OpUpdateMetadata                = "update_dao_metadata"
	OpTransferAuthority             = "transfer_authority"
	OpInitializeProposal            = "initialize_proposal"
	OpInitializeProposalInstruction = "initialize_proposal_instruction"
	OpVoteFor                       = "vote_for"
	OpVoteAgainst                   = "vote_against"
	OpVoteNftFor                    = "vote_nft_for"
	OpVoteNftAgainst                = "vote_nft_against"
	OpExecuteProposal               = "execute_proposal"
	OpClose                         = "close"
	OpCloseNftVoting                = "close_nft_voting"
	OpInitializeContent             = "initialize_content"
)

var opNames = []string{
	OpInitializeDao,
	OpUpdateSupply,
	OpUpdateRegime,
	OpUpdateMetadata,
	OpTransferAuthority,
	OpInitializeProposal,
	OpInitializeProposalInstruction,
	OpVoteFor,
	OpVoteAgainst,
	OpVoteNftFor,
	OpVoteNftAgainst,
	OpExecuteProposal,
	OpClose,
	OpCloseNftVoting,
	OpInitializeContent,
}

var opByDiscriminator = func() map[[8]byte]string {
	ret := make(map[[8]byte]string, len(opNames))
	for _, name := range opNames {
		ret[InstructionDiscriminator(name)] = name
	}
	return ret
}()

// InstructionDiscriminator returns the 8-byte prefix of an instruction
func InstructionDiscriminator(name string) [8]byte {
	var ret [8]byte
	sum := sha256.Sum256([]byte("global:" + name))
	copy(ret[:], sum[:8])
	return ret
}

// OpName returns the instruction name encoded in data, or an empty string
func OpName(data []byte) string {
	if len(data) < 8 {
		return ""
	}
	var disc [8]byte
	copy(disc[:], data[:8])
	return opByDiscriminator[disc]
}

type InitializeDaoArgs struct {
	Mint        solana.PublicKey
	Supply      uint64
	Metadata    [32]byte
	Regime      schema.Regime
	IsNftVoting bool
	IsPublic    bool
}

type UpdateSupplyArgs struct {
	Supply uint64
}

type UpdateRegimeArgs struct {
	Regime schema.Regime
}

type UpdateMetadataArgs struct {
	Metadata [32]byte
}

type TransferAuthorityArgs struct {
	NewAuthority solana.PublicKey
}

type InitializeProposalArgs struct {
	ConsensusMechanism schema.ConsensusMechanism
	ConsensusQuorum    schema.ConsensusQuorum
	StartDate          int64
	EndDate            int64
	Metadata           [32]byte
	Tax                uint64
	TaxmanAddress      solana.PublicKey
	Revenue            uint64
	RevenuemanAddress  solana.PublicKey
}

// InitializeProposalInstructionArgs describes a sub-call as four parallel
// account arrays
type InitializeProposalInstructionArgs struct {
	InvokedProgram solana.PublicKey
	Data           []byte
	Pubkeys        []solana.PublicKey
	IsSigners      []bool
	IsWritables    []bool
	IsMasters      []bool
}

type VoteArgs struct {
	Index  uint64
	Amount uint64
}

type VoteNftArgs struct {
	Index uint64
}

type ExecuteProposalArgs struct {
	// Limit bounds the number of instructions run, 0 runs all pending
	Limit uint32
}

type InitializeContentArgs struct {
	Discriminator [8]byte
	Metadata      [32]byte
}

// EncodeInstructionData prefixes the Borsh encoding of args with the
// instruction discriminator. A nil args encodes the discriminator only
func EncodeInstructionData(name string, args any) ([]byte, error) {
	var buf bytes.Buffer
	disc := InstructionDiscriminator(name)
	buf.Write(disc[:])
	if args != nil {
		if err := bin.NewBorshEncoder(&buf).Encode(args); err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
	}
	return buf.Bytes(), nil
}

func decodeArgs(name string, data []byte, args any) error {
	dec := bin.NewBorshDecoder(data[8:])
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidInstruction, name, err)
	}
	if dec.Remaining() != 0 {
		return fmt.Errorf(
			"%w: %s: %d trailing bytes",
			ErrInvalidInstruction,
			name,
			dec.Remaining(),
		)
	}
	return nil
}
