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
	"context"
	"fmt"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// NewExecuteProposalInstruction runs up to limit pending instructions of a
// passed proposal. A limit of 0 runs all of them
func NewExecuteProposalInstruction(
	programID, dao, proposal, executor solana.PublicKey,
	limit uint32,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(
		OpExecuteProposal,
		ExecuteProposalArgs{Limit: limit},
	)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao),
			solana.Meta(proposal).WRITE(),
			solana.Meta(executor).SIGNER(),
		},
		data,
	), nil
}

// subInstruction rebuilds the call recorded in a proposal instruction.
// Master accounts are replaced by the DAO master and sign through it. The
// master is the only signer a sub-call ever holds
func subInstruction(
	ins *schema.ProposalInstruction,
	master solana.PublicKey,
) *runtime.Instruction {
	metas := make([]*solana.AccountMeta, len(ins.Accounts))
	for i, acct := range ins.Accounts {
		meta := &solana.AccountMeta{
			PublicKey:  acct.Pubkey,
			IsSigner:   acct.IsSigner,
			IsWritable: acct.IsWritable,
		}
		if acct.IsMaster {
			meta.PublicKey = master
			meta.IsSigner = true
		}
		metas[i] = meta
	}
	return runtime.NewInstruction(ins.InvokedProgram, metas, ins.Data)
}

func (p *Program) executeProposal(
	ctx context.Context,
	inv *runtime.Invocation,
	args *ExecuteProposalArgs,
) error {
	if inv.Depth() > 0 {
		return ErrReentrantExecution
	}
	daoAddr, err := account(inv, 0)
	if err != nil {
		return err
	}
	proposalAddr, err := account(inv, 1)
	if err != nil {
		return err
	}
	executor, err := signer(inv, 2)
	if err != nil {
		return err
	}
	dao, proposal, err := p.loadDaoProposal(inv.Txn, daoAddr, proposalAddr)
	if err != nil {
		return err
	}
	if proposal.Executed {
		return nil
	}
	now := p.clock.Now()
	if !proposal.Ended(now) {
		return fmt.Errorf(
			"%w: execution opens at %d",
			ErrProposalNotEnded,
			proposal.EndDate,
		)
	}
	if !ProposalPassing(dao, proposal) {
		return fmt.Errorf(
			"%w: for %d, against %d, supply %d, quorum %s",
			ErrProposalNotPassed,
			proposal.VotingForPower,
			proposal.VotingAgainstPower,
			dao.Supply,
			proposal.ConsensusQuorum,
		)
	}
	if err := authorizeExecute(dao, executor); err != nil {
		return err
	}
	master, bump, err := p.master(daoAddr)
	if err != nil {
		return err
	}
	masterSeeds := address.SignerSeeds(address.MasterSeeds(daoAddr), bump)
	batch := proposal.Pending()
	if args.Limit > 0 && args.Limit < batch {
		batch = args.Limit
	}
	for range batch {
		index := proposal.TotalExecuted
		_, ins, err := p.loadInstruction(inv.Txn, proposalAddr, index)
		if err != nil {
			return fmt.Errorf("instruction %d: %w", index, err)
		}
		if err := inv.InvokeIsolated(ctx, subInstruction(ins, master), masterSeeds); err != nil {
			return fmt.Errorf("instruction %d: %w", index, err)
		}
		proposal.TotalExecuted++
		err = p.emit(
			inv.Txn,
			event.InstructionExecutedEventType,
			event.ExecutionEvent{
				Dao:              daoAddr.Bytes(),
				Proposal:         proposalAddr.Bytes(),
				Executor:         executor.Bytes(),
				InvokedProgram:   ins.InvokedProgram.Bytes(),
				InstructionIndex: index,
				TotalExecuted:    proposal.TotalExecuted,
				TotalInstruction: proposal.TotalInstruction,
			},
			now,
		)
		if err != nil {
			return err
		}
	}
	if proposal.TotalExecuted == proposal.TotalInstruction {
		proposal.Executed = true
	}
	if err := p.store(inv.Txn, proposalAddr, proposal); err != nil {
		return err
	}
	executed := batch
	inv.Txn.OnCommit(func() {
		p.metrics.instructionsExecuted.Add(float64(executed))
	})
	if !proposal.Executed {
		return nil
	}
	inv.Txn.OnCommit(p.metrics.proposalsExecuted.Inc)
	return p.emit(
		inv.Txn,
		event.ProposalExecutedEventType,
		event.ExecutionEvent{
			Dao:              daoAddr.Bytes(),
			Proposal:         proposalAddr.Bytes(),
			Executor:         executor.Bytes(),
			TotalExecuted:    proposal.TotalExecuted,
			TotalInstruction: proposal.TotalInstruction,
			Executed:         true,
		},
		now,
	)
}
