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
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
)

// NewCloseInstruction refunds an escrowed vote to its authority and
// deletes the receipt
func NewCloseInstruction(
	programID, dao, proposal, receipt, authority solana.PublicKey,
	nft bool,
) (*runtime.Instruction, error) {
	operation := OpClose
	if nft {
		operation = OpCloseNftVoting
	}
	data, err := EncodeInstructionData(operation, nil)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao),
			solana.Meta(proposal),
			solana.Meta(receipt).WRITE(),
			solana.Meta(authority).SIGNER().WRITE(),
		},
		data,
	), nil
}

func (p *Program) close(
	ctx context.Context,
	inv *runtime.Invocation,
	nftVoting bool,
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
	authority, err := signer(inv, 3)
	if err != nil {
		return err
	}
	receipt, err := p.loadReceipt(inv.Txn, receiptAddr)
	if err != nil {
		return err
	}
	if !receipt.Authority.Equals(authority) {
		return fmt.Errorf(
			"%w: receipt belongs to %s",
			ErrUnauthorized,
			receipt.Authority,
		)
	}
	if !receipt.Proposal.Equals(proposalAddr) {
		return fmt.Errorf(
			"%w: %s belongs to %s",
			ErrInvalidProposal,
			receiptAddr,
			receipt.Proposal,
		)
	}
	dao, proposal, err := p.loadDaoProposal(inv.Txn, daoAddr, proposalAddr)
	if err != nil {
		return err
	}
	now := p.clock.Now()
	if !proposal.Ended(now) {
		return fmt.Errorf(
			"%w: receipts unlock at %d",
			ErrProposalNotEnded,
			proposal.EndDate,
		)
	}
	if nftVoting != dao.IsNftVoting {
		return fmt.Errorf(
			"%w: dao nft voting is %t",
			ErrInvalidVotingMode,
			dao.IsNftVoting,
		)
	}
	if nftVoting {
		if err := p.nfts.VerifyCollection(receipt.Mint, dao.Mint, inv.Txn); err != nil {
			return err
		}
	}
	treasurer, bump, err := p.escrow(proposalAddr, proposal)
	if err != nil {
		return err
	}
	err = inv.InvokeIsolated(
		ctx,
		token.NewTransferInstruction(
			receipt.Mint,
			treasurer,
			authority,
			receipt.Amount,
		),
		address.SignerSeeds(address.TreasurerSeeds(proposalAddr), bump),
	)
	if err != nil {
		return err
	}
	if err := p.db.DeleteAccount(receiptAddr.Bytes(), inv.Txn); err != nil {
		return mapStoreError(err)
	}
	if err := p.db.SetVoteClosed(receiptAddr.Bytes(), now, inv.Txn); err != nil {
		return err
	}
	inv.Txn.OnCommit(p.metrics.receiptsClosed.Inc)
	return p.emit(
		inv.Txn,
		event.ReceiptClosedEventType,
		event.ReceiptClosedEvent{
			Dao:       daoAddr.Bytes(),
			Proposal:  proposalAddr.Bytes(),
			Receipt:   receiptAddr.Bytes(),
			Authority: authority.Bytes(),
			Mint:      receipt.Mint.Bytes(),
			Amount:    receipt.Amount,
		},
		now,
	)
}
