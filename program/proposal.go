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

// NewInitializeProposalInstruction creates the proposal at the next index
// of a DAO. proposal must be the address derived from the current DAO
// nonce
func NewInitializeProposalInstruction(
	programID, dao, proposal, caller solana.PublicKey,
	args InitializeProposalArgs,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(OpInitializeProposal, args)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao).WRITE(),
			solana.Meta(proposal).WRITE(),
			solana.Meta(caller).SIGNER().WRITE(),
		},
		data,
	), nil
}

func (p *Program) initializeProposal(
	inv *runtime.Invocation,
	args *InitializeProposalArgs,
) error {
	daoAddr, err := account(inv, 0)
	if err != nil {
		return err
	}
	proposalAddr, err := account(inv, 1)
	if err != nil {
		return err
	}
	caller, err := signer(inv, 2)
	if err != nil {
		return err
	}
	if !args.ConsensusMechanism.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMechanism, args.ConsensusMechanism)
	}
	if !args.ConsensusQuorum.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuorum, args.ConsensusQuorum)
	}
	now := p.clock.Now()
	if args.StartDate <= now || args.EndDate <= args.StartDate {
		return fmt.Errorf(
			"%w: need %d < start %d < end %d",
			ErrInvalidDates,
			now,
			args.StartDate,
			args.EndDate,
		)
	}
	if args.Tax > 0 && args.TaxmanAddress.IsZero() {
		return fmt.Errorf("%w: taxman required for tax", ErrInvalidAddress)
	}
	if args.Revenue > 0 && args.RevenuemanAddress.IsZero() {
		return fmt.Errorf(
			"%w: revenueman required for revenue",
			ErrInvalidAddress,
		)
	}
	dao, err := p.loadDao(inv.Txn, daoAddr)
	if err != nil {
		return err
	}
	if err := authorizePropose(dao, caller); err != nil {
		return err
	}
	expected, _, err := address.DeriveProposal(p.id, daoAddr, dao.Nonce)
	if err != nil {
		return err
	}
	if !proposalAddr.Equals(expected) {
		// Another proposal took this slot since the caller read the nonce
		return fmt.Errorf(
			"%w: proposal %s is not the next slot %s",
			ErrConflict,
			proposalAddr,
			expected,
		)
	}
	if dao.Nonce == math.MaxUint64 {
		return ErrOverflow
	}
	proposal := &schema.Proposal{
		Dao:                daoAddr,
		Index:              dao.Nonce,
		ConsensusMechanism: args.ConsensusMechanism,
		ConsensusQuorum:    args.ConsensusQuorum,
		StartDate:          args.StartDate,
		EndDate:            args.EndDate,
		Metadata:           args.Metadata,
		Tax:                args.Tax,
		TaxmanAddress:      args.TaxmanAddress,
		Revenue:            args.Revenue,
		RevenuemanAddress:  args.RevenuemanAddress,
	}
	if err := p.create(inv.Txn, proposalAddr, proposal); err != nil {
		return err
	}
	dao.Nonce++
	if err := p.store(inv.Txn, daoAddr, dao); err != nil {
		return err
	}
	inv.Txn.OnCommit(p.metrics.proposals.Inc)
	return p.emit(
		inv.Txn,
		event.ProposalInitializedEventType,
		event.ProposalEvent{
			Dao:       daoAddr.Bytes(),
			Proposal:  proposalAddr.Bytes(),
			Actor:     caller.Bytes(),
			Index:     proposal.Index,
			StartDate: proposal.StartDate,
			EndDate:   proposal.EndDate,
		},
		now,
	)
}

// GetProposal returns the proposal stored at addr
func (p *Program) GetProposal(
	addr solana.PublicKey,
	txn *database.Txn,
) (*schema.Proposal, error) {
	return p.loadProposal(txn, addr)
}
