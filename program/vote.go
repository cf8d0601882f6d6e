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
	"math"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/database/models"
	"github.com/blinklabs-io/kelpie/database/types"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
)

type voteParams struct {
	direction schema.Direction
	index     uint64
	amount    uint64
	nft       bool
}

func directionOf(operation string) schema.Direction {
	switch operation {
	case OpVoteFor, OpVoteNftFor:
		return schema.DirectionFor
	default:
		return schema.DirectionAgainst
	}
}

func voteOp(direction schema.Direction, nft bool) string {
	switch {
	case nft && direction == schema.DirectionFor:
		return OpVoteNftFor
	case nft:
		return OpVoteNftAgainst
	case direction == schema.DirectionFor:
		return OpVoteFor
	default:
		return OpVoteAgainst
	}
}

// NewVoteInstruction escrows amount of the DAO mint from voter and records
// it in the receipt slot index
func NewVoteInstruction(
	programID, dao, proposal, receipt, voter solana.PublicKey,
	direction schema.Direction,
	index uint64,
	amount uint64,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(
		voteOp(direction, false),
		VoteArgs{Index: index, Amount: amount},
	)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao),
			solana.Meta(proposal).WRITE(),
			solana.Meta(receipt).WRITE(),
			solana.Meta(voter).SIGNER().WRITE(),
		},
		data,
	), nil
}

// NewVoteNftInstruction escrows the NFT nftMint from voter with a weight
// of one
func NewVoteNftInstruction(
	programID, dao, proposal, receipt, voter, nftMint solana.PublicKey,
	direction schema.Direction,
	index uint64,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(
		voteOp(direction, true),
		VoteNftArgs{Index: index},
	)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao),
			solana.Meta(proposal).WRITE(),
			solana.Meta(receipt).WRITE(),
			solana.Meta(voter).SIGNER().WRITE(),
			solana.Meta(nftMint),
		},
		data,
	), nil
}

// escrow returns the account holding voted tokens until their receipt is
// closed. Staked and locked counting both hold them in the proposal
// treasurer, so power is counted once per escrowed token
func (p *Program) escrow(
	proposalAddr solana.PublicKey,
	proposal *schema.Proposal,
) (solana.PublicKey, uint8, error) {
	switch proposal.ConsensusMechanism {
	case schema.ConsensusMechanismStakedTokenCounter,
		schema.ConsensusMechanismLockedTokenCounter:
		return address.DeriveTreasurer(p.id, proposalAddr)
	default:
		return solana.PublicKey{}, 0, fmt.Errorf(
			"%w: %d",
			ErrInvalidMechanism,
			proposal.ConsensusMechanism,
		)
	}
}

func (p *Program) vote(
	ctx context.Context,
	inv *runtime.Invocation,
	params voteParams,
) error {
	daoAddr, err := account(inv, 0)
	if err != nil {
		return err
	}
	proposalAddr, err := account(inv, 1)
	if err != nil {
		return err
	}
	receiptAddr, err := account(inv, 2)
	if err != nil {
		return err
	}
	voter, err := signer(inv, 3)
	if err != nil {
		return err
	}
	dao, proposal, err := p.loadDaoProposal(inv.Txn, daoAddr, proposalAddr)
	if err != nil {
		return err
	}
	if proposal.Executed {
		return ErrProposalExecuted
	}
	now := p.clock.Now()
	if !proposal.Started(now) {
		return fmt.Errorf(
			"%w: voting opens at %d",
			ErrProposalNotStarted,
			proposal.StartDate,
		)
	}
	if proposal.Ended(now) {
		return fmt.Errorf(
			"%w: voting closed at %d",
			ErrProposalEnded,
			proposal.EndDate,
		)
	}
	if params.nft != dao.IsNftVoting {
		return fmt.Errorf(
			"%w: dao nft voting is %t",
			ErrInvalidVotingMode,
			dao.IsNftVoting,
		)
	}
	mint := dao.Mint
	if params.nft {
		nftMint, err := account(inv, 4)
		if err != nil {
			return err
		}
		if err := p.nfts.VerifyCollection(nftMint, dao.Mint, inv.Txn); err != nil {
			return err
		}
		mint = nftMint
	}
	if params.amount == 0 {
		return ErrInvalidAmount
	}
	expected, _, err := address.DeriveReceipt(
		p.id,
		proposalAddr,
		voter,
		params.index,
	)
	if err != nil {
		return err
	}
	if err := expectDerived("receipt", receiptAddr, expected); err != nil {
		return err
	}
	exists, err := p.db.AccountExists(receiptAddr.Bytes(), inv.Txn)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf(
			"%w: receipt %d of %s",
			ErrAccountAlreadyInitialized,
			params.index,
			voter,
		)
	}
	treasurer, _, err := p.escrow(proposalAddr, proposal)
	if err != nil {
		return err
	}
	// Escrow the vote, then pay the proposal fees in the native asset
	err = inv.Invoke(
		ctx,
		token.NewTransferInstruction(mint, voter, treasurer, params.amount),
	)
	if err != nil {
		return err
	}
	if err := p.payFee(ctx, inv, voter, proposal.TaxmanAddress, proposal.Tax); err != nil {
		return err
	}
	if err := p.payFee(ctx, inv, voter, proposal.RevenuemanAddress, proposal.Revenue); err != nil {
		return err
	}
	switch params.direction {
	case schema.DirectionFor:
		if proposal.VotingForPower > math.MaxUint64-params.amount {
			return ErrOverflow
		}
		proposal.VotingForPower += params.amount
	case schema.DirectionAgainst:
		if proposal.VotingAgainstPower > math.MaxUint64-params.amount {
			return ErrOverflow
		}
		proposal.VotingAgainstPower += params.amount
	default:
		return fmt.Errorf("%w: direction %d", ErrInvalidInstruction, params.direction)
	}
	if err := p.store(inv.Txn, proposalAddr, proposal); err != nil {
		return err
	}
	receipt := &schema.Receipt{
		Authority: voter,
		Proposal:  proposalAddr,
		Index:     params.index,
		Amount:    params.amount,
		Mint:      mint,
	}
	if err := p.create(inv.Txn, receiptAddr, receipt); err != nil {
		return err
	}
	err = p.db.AddVote(
		&models.Vote{
			Receipt:      receiptAddr.Bytes(),
			Proposal:     proposalAddr.Bytes(),
			Authority:    voter.Bytes(),
			ReceiptIndex: types.Uint64(params.index),
			Amount:       types.Uint64(params.amount),
			Mint:         mint.Bytes(),
			Direction:    uint8(params.direction),
			Nft:          params.nft,
			CastAt:       now,
		},
		inv.Txn,
	)
	if err != nil {
		return err
	}
	direction := params.direction.String()
	kind := "token"
	if params.nft {
		kind = "nft"
	}
	amount := params.amount
	inv.Txn.OnCommit(func() {
		p.metrics.votes.WithLabelValues(direction, kind).Inc()
		p.metrics.votePower.WithLabelValues(direction).Add(float64(amount))
	})
	p.logger.Debug(
		"vote cast",
		"component", "program",
		"proposal", proposalAddr.String(),
		"voter", voter.String(),
		"direction", direction,
		"amount", amount,
	)
	return p.emit(
		inv.Txn,
		event.VoteCastEventType,
		event.VoteEvent{
			Dao:                daoAddr.Bytes(),
			Proposal:           proposalAddr.Bytes(),
			Receipt:            receiptAddr.Bytes(),
			Voter:              voter.Bytes(),
			Mint:               mint.Bytes(),
			ReceiptIndex:       params.index,
			Amount:             params.amount,
			Direction:          uint8(params.direction),
			Nft:                params.nft,
			VotingForPower:     proposal.VotingForPower,
			VotingAgainstPower: proposal.VotingAgainstPower,
		},
		now,
	)
}

func (p *Program) payFee(
	ctx context.Context,
	inv *runtime.Invocation,
	payer solana.PublicKey,
	recipient solana.PublicKey,
	amount uint64,
) error {
	if amount == 0 {
		return nil
	}
	ix, err := token.NewNativeTransferInstruction(payer, recipient, amount)
	if err != nil {
		return err
	}
	return inv.Invoke(ctx, ix)
}

// GetReceipt returns the receipt stored at addr
func (p *Program) GetReceipt(
	addr solana.PublicKey,
	txn *database.Txn,
) (*schema.Receipt, error) {
	return p.loadReceipt(txn, addr)
}
