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

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

func (p *Program) InitializeDao(
	ctx context.Context,
	authority solana.PublicKey,
	dao solana.PublicKey,
	args InitializeDaoArgs,
) error {
	ix, err := NewInitializeDaoInstruction(p.id, dao, authority, args)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, authority, dao)
}

func (p *Program) UpdateSupply(
	ctx context.Context,
	caller, dao solana.PublicKey,
	supply uint64,
) error {
	ix, err := NewUpdateSupplyInstruction(p.id, dao, caller, supply)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, caller)
}

func (p *Program) UpdateRegime(
	ctx context.Context,
	caller, dao solana.PublicKey,
	regime schema.Regime,
) error {
	ix, err := NewUpdateRegimeInstruction(p.id, dao, caller, regime)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, caller)
}

func (p *Program) UpdateMetadata(
	ctx context.Context,
	caller, dao solana.PublicKey,
	metadata [32]byte,
) error {
	ix, err := NewUpdateMetadataInstruction(p.id, dao, caller, metadata)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, caller)
}

func (p *Program) TransferAuthority(
	ctx context.Context,
	caller, dao, newAuthority solana.PublicKey,
) error {
	ix, err := NewTransferAuthorityInstruction(p.id, dao, caller, newAuthority)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, caller)
}

// InitializeProposal creates a proposal at the DAO's current nonce and
// returns its address. A concurrent proposal on the same DAO surfaces as
// ErrConflict
func (p *Program) InitializeProposal(
	ctx context.Context,
	caller, dao solana.PublicKey,
	args InitializeProposalArgs,
) (solana.PublicKey, error) {
	daoState, err := p.GetDao(dao, nil)
	if err != nil {
		return solana.PublicKey{}, err
	}
	proposal, _, err := address.DeriveProposal(p.id, dao, daoState.Nonce)
	if err != nil {
		return solana.PublicKey{}, err
	}
	ix, err := NewInitializeProposalInstruction(
		p.id,
		dao,
		proposal,
		caller,
		args,
	)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := p.Submit(ctx, ix, caller); err != nil {
		return solana.PublicKey{}, err
	}
	return proposal, nil
}

// InitializeProposalInstruction appends a sub-call to a proposal and
// returns its index
func (p *Program) InitializeProposalInstruction(
	ctx context.Context,
	caller, proposal solana.PublicKey,
	args InitializeProposalInstructionArgs,
) (uint32, error) {
	state, err := p.GetProposal(proposal, nil)
	if err != nil {
		return 0, err
	}
	index := state.TotalInstruction
	instruction, _, err := address.DeriveInstruction(p.id, proposal, index)
	if err != nil {
		return 0, err
	}
	ix, err := NewInitializeProposalInstructionInstruction(
		p.id,
		state.Dao,
		proposal,
		instruction,
		caller,
		args,
	)
	if err != nil {
		return 0, err
	}
	if err := p.Submit(ctx, ix, caller); err != nil {
		return 0, err
	}
	return index, nil
}

// VoteFor escrows amount of the DAO mint in favor of a proposal using the
// voter's receipt slot index. It returns the receipt address
func (p *Program) VoteFor(
	ctx context.Context,
	voter, proposal solana.PublicKey,
	index uint64,
	amount uint64,
) (solana.PublicKey, error) {
	return p.castVote(ctx, voter, proposal, schema.DirectionFor, index, amount, nil)
}

// VoteAgainst escrows amount of the DAO mint against a proposal
func (p *Program) VoteAgainst(
	ctx context.Context,
	voter, proposal solana.PublicKey,
	index uint64,
	amount uint64,
) (solana.PublicKey, error) {
	return p.castVote(ctx, voter, proposal, schema.DirectionAgainst, index, amount, nil)
}

// VoteNftFor escrows a collection NFT in favor of a proposal
func (p *Program) VoteNftFor(
	ctx context.Context,
	voter, proposal, nftMint solana.PublicKey,
	index uint64,
) (solana.PublicKey, error) {
	return p.castVote(ctx, voter, proposal, schema.DirectionFor, index, 1, &nftMint)
}

// VoteNftAgainst escrows a collection NFT against a proposal
func (p *Program) VoteNftAgainst(
	ctx context.Context,
	voter, proposal, nftMint solana.PublicKey,
	index uint64,
) (solana.PublicKey, error) {
	return p.castVote(ctx, voter, proposal, schema.DirectionAgainst, index, 1, &nftMint)
}

func (p *Program) castVote(
	ctx context.Context,
	voter, proposal solana.PublicKey,
	direction schema.Direction,
	index uint64,
	amount uint64,
	nftMint *solana.PublicKey,
) (solana.PublicKey, error) {
	state, err := p.GetProposal(proposal, nil)
	if err != nil {
		return solana.PublicKey{}, err
	}
	receipt, _, err := address.DeriveReceipt(p.id, proposal, voter, index)
	if err != nil {
		return solana.PublicKey{}, err
	}
	var ix *runtime.Instruction
	if nftMint != nil {
		ix, err = NewVoteNftInstruction(
			p.id,
			state.Dao,
			proposal,
			receipt,
			voter,
			*nftMint,
			direction,
			index,
		)
	} else {
		ix, err = NewVoteInstruction(
			p.id,
			state.Dao,
			proposal,
			receipt,
			voter,
			direction,
			index,
			amount,
		)
	}
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := p.Submit(ctx, ix, voter); err != nil {
		return solana.PublicKey{}, err
	}
	return receipt, nil
}

// ExecuteProposal runs up to limit pending instructions of a proposal, all
// of them when limit is 0
func (p *Program) ExecuteProposal(
	ctx context.Context,
	executor, proposal solana.PublicKey,
	limit uint32,
) error {
	state, err := p.GetProposal(proposal, nil)
	if err != nil {
		return err
	}
	ix, err := NewExecuteProposalInstruction(
		p.id,
		state.Dao,
		proposal,
		executor,
		limit,
	)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, executor)
}

// Close refunds a token vote receipt to its authority
func (p *Program) Close(
	ctx context.Context,
	authority, receipt solana.PublicKey,
) error {
	return p.closeReceipt(ctx, authority, receipt, false)
}

// CloseNftVoting refunds an NFT vote receipt to its authority
func (p *Program) CloseNftVoting(
	ctx context.Context,
	authority, receipt solana.PublicKey,
) error {
	return p.closeReceipt(ctx, authority, receipt, true)
}

func (p *Program) closeReceipt(
	ctx context.Context,
	authority, receipt solana.PublicKey,
	nft bool,
) error {
	state, err := p.GetReceipt(receipt, nil)
	if err != nil {
		return err
	}
	proposal, err := p.GetProposal(state.Proposal, nil)
	if err != nil {
		return err
	}
	ix, err := NewCloseInstruction(
		p.id,
		proposal.Dao,
		state.Proposal,
		receipt,
		authority,
		nft,
	)
	if err != nil {
		return err
	}
	return p.Submit(ctx, ix, authority)
}

// InitializeContent records a content pointer and returns its address
func (p *Program) InitializeContent(
	ctx context.Context,
	authority solana.PublicKey,
	args InitializeContentArgs,
) (solana.PublicKey, error) {
	content, _, err := address.DeriveContent(p.id, authority, args.Discriminator)
	if err != nil {
		return solana.PublicKey{}, err
	}
	ix, err := NewInitializeContentInstruction(p.id, content, authority, args)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := p.Submit(ctx, ix, authority); err != nil {
		return solana.PublicKey{}, err
	}
	return content, nil
}
