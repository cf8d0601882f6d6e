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

package schema

import (
	"github.com/gagliardetto/solana-go"
)

const ProposalAccountName = "Proposal"

// Proposal is a vote on an ordered list of instructions
type Proposal struct {
	Dao                solana.PublicKey
	Index              uint64
	ConsensusMechanism ConsensusMechanism
	ConsensusQuorum    ConsensusQuorum
	StartDate          int64
	EndDate            int64
	VotingForPower     uint64
	VotingAgainstPower uint64
	TotalInstruction   uint32
	TotalExecuted      uint32
	Executed           bool
	Metadata           [32]byte
	Tax                uint64
	TaxmanAddress      solana.PublicKey
	Revenue            uint64
	RevenuemanAddress  solana.PublicKey
}

func (Proposal) AccountName() string {
	return ProposalAccountName
}

// Started reports whether voting has opened at now
func (p *Proposal) Started(now int64) bool {
	return now >= p.StartDate
}

// Ended reports whether voting has closed at now
func (p *Proposal) Ended(now int64) bool {
	return now >= p.EndDate
}

// Pending returns the number of instructions not yet executed
func (p *Proposal) Pending() uint32 {
	return p.TotalInstruction - p.TotalExecuted
}

const ProposalInstructionAccountName = "ProposalInstruction"

// InvokedAccount is one account reference of a proposal instruction
type InvokedAccount struct {
	Pubkey     solana.PublicKey
	IsSigner   bool
	IsWritable bool
	// IsMaster marks the DAO master, which signs by derivation at execution
	IsMaster bool
}

// ProposalInstruction is a sub-call executed when its proposal passes
type ProposalInstruction struct {
	Proposal       solana.PublicKey
	Index          uint32
	InvokedProgram solana.PublicKey
	Data           []byte
	Accounts       []InvokedAccount
}

func (ProposalInstruction) AccountName() string {
	return ProposalInstructionAccountName
}
