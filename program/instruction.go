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
	"fmt"
	"math"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// NewInitializeProposalInstructionInstruction appends a sub-call to a
// proposal. instruction must be the address derived from the proposal's
// current instruction count
func NewInitializeProposalInstructionInstruction(
	programID, dao, proposal, instruction, caller solana.PublicKey,
	args InitializeProposalInstructionArgs,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(OpInitializeProposalInstruction, args)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao),
			solana.Meta(proposal).WRITE(),
			solana.Meta(instruction).WRITE(),
			solana.Meta(caller).SIGNER().WRITE(),
		},
		data,
	), nil
}

// InstructionArgsFromRuntime converts a runtime instruction into proposal
// instruction arguments. Accounts listed in masters sign as the DAO master
// at execution
func InstructionArgsFromRuntime(
	ix *runtime.Instruction,
	masters ...solana.PublicKey,
) InitializeProposalInstructionArgs {
	args := InitializeProposalInstructionArgs{
		InvokedProgram: ix.ProgramID,
		Data:           ix.Data,
	}
	for _, meta := range ix.Accounts {
		isMaster := false
		for _, m := range masters {
			if meta.PublicKey.Equals(m) {
				isMaster = true
				break
			}
		}
		args.Pubkeys = append(args.Pubkeys, meta.PublicKey)
		args.IsSigners = append(args.IsSigners, meta.IsSigner)
		args.IsWritables = append(args.IsWritables, meta.IsWritable)
		args.IsMasters = append(args.IsMasters, isMaster)
	}
	return args
}

// invokedAccounts zips the parallel account arrays. An account that is
// writable in any occurrence is writable in all of them
func invokedAccounts(
	args *InitializeProposalInstructionArgs,
) ([]schema.InvokedAccount, error) {
	n := len(args.Pubkeys)
	if len(args.IsSigners) != n ||
		len(args.IsWritables) != n ||
		len(args.IsMasters) != n {
		return nil, fmt.Errorf(
			"%w: %d pubkeys, %d signers, %d writables, %d masters",
			ErrInvalidAccounts,
			n,
			len(args.IsSigners),
			len(args.IsWritables),
			len(args.IsMasters),
		)
	}
	writable := make(map[solana.PublicKey]bool, n)
	for i, pubkey := range args.Pubkeys {
		if args.IsWritables[i] {
			writable[pubkey] = true
		}
	}
	ret := make([]schema.InvokedAccount, n)
	for i, pubkey := range args.Pubkeys {
		ret[i] = schema.InvokedAccount{
			Pubkey:     pubkey,
			IsSigner:   args.IsSigners[i],
			IsWritable: writable[pubkey],
			IsMaster:   args.IsMasters[i],
		}
	}
	return ret, nil
}

func (p *Program) initializeProposalInstruction(
	inv *runtime.Invocation,
	args *InitializeProposalInstructionArgs,
) error {
	daoAddr, err := account(inv, 0)
	if err != nil {
		return err
	}
	proposalAddr, err := account(inv, 1)
	if err != nil {
		return err
	}
	instructionAddr, err := account(inv, 2)
	if err != nil {
		return err
	}
	caller, err := signer(inv, 3)
	if err != nil {
		return err
	}
	accounts, err := invokedAccounts(args)
	if err != nil {
		return err
	}
	dao, proposal, err := p.loadDaoProposal(inv.Txn, daoAddr, proposalAddr)
	if err != nil {
		return err
	}
	if err := authorizePropose(dao, caller); err != nil {
		return err
	}
	now := p.clock.Now()
	if proposal.Started(now) {
		return fmt.Errorf(
			"%w: instructions close at %d",
			ErrProposalStarted,
			proposal.StartDate,
		)
	}
	if proposal.TotalInstruction == math.MaxUint32 {
		return ErrOverflow
	}
	index := proposal.TotalInstruction
	expected, _, err := address.DeriveInstruction(p.id, proposalAddr, index)
	if err != nil {
		return err
	}
	if !instructionAddr.Equals(expected) {
		return fmt.Errorf(
			"%w: instruction %s is not the next slot %s",
			ErrConflict,
			instructionAddr,
			expected,
		)
	}
	ins := &schema.ProposalInstruction{
		Proposal:       proposalAddr,
		Index:          index,
		InvokedProgram: args.InvokedProgram,
		Data:           args.Data,
		Accounts:       accounts,
	}
	if err := p.create(inv.Txn, instructionAddr, ins); err != nil {
		return err
	}
	proposal.TotalInstruction++
	if err := p.store(inv.Txn, proposalAddr, proposal); err != nil {
		return err
	}
	return p.emit(
		inv.Txn,
		event.InstructionAddedEventType,
		event.ProposalEvent{
			Dao:              daoAddr.Bytes(),
			Proposal:         proposalAddr.Bytes(),
			Actor:            caller.Bytes(),
			Index:            proposal.Index,
			StartDate:        proposal.StartDate,
			EndDate:          proposal.EndDate,
			Instruction:      instructionAddr.Bytes(),
			InstructionIndex: index,
			InvokedProgram:   args.InvokedProgram.Bytes(),
		},
		now,
	)
}

// GetProposalInstruction returns instruction index of a proposal
func (p *Program) GetProposalInstruction(
	proposal solana.PublicKey,
	index uint32,
	txn *database.Txn,
) (*schema.ProposalInstruction, error) {
	_, ins, err := p.loadInstruction(txn, proposal, index)
	return ins, err
}
