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

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

func (p *Program) load(
	txn *database.Txn,
	addr solana.PublicKey,
	acct schema.Account,
) error {
	data, err := p.db.GetAccount(addr.Bytes(), txn)
	if err != nil {
		return fmt.Errorf(
			"%s %s: %w",
			acct.AccountName(),
			addr,
			mapStoreError(err),
		)
	}
	if err := schema.Decode(data, acct); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
	}
	return nil
}

func (p *Program) store(
	txn *database.Txn,
	addr solana.PublicKey,
	acct schema.Account,
) error {
	data, err := schema.Encode(acct)
	if err != nil {
		return err
	}
	return p.db.SetAccount(addr.Bytes(), data, txn)
}

func (p *Program) create(
	txn *database.Txn,
	addr solana.PublicKey,
	acct schema.Account,
) error {
	data, err := schema.Encode(acct)
	if err != nil {
		return err
	}
	if err := p.db.CreateAccount(addr.Bytes(), data, txn); err != nil {
		return fmt.Errorf(
			"%s %s: %w",
			acct.AccountName(),
			addr,
			mapStoreError(err),
		)
	}
	return nil
}

func (p *Program) loadDao(
	txn *database.Txn,
	addr solana.PublicKey,
) (*schema.Dao, error) {
	dao := &schema.Dao{}
	if err := p.load(txn, addr, dao); err != nil {
		return nil, err
	}
	return dao, nil
}

func (p *Program) loadProposal(
	txn *database.Txn,
	addr solana.PublicKey,
) (*schema.Proposal, error) {
	proposal := &schema.Proposal{}
	if err := p.load(txn, addr, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// loadDaoProposal loads a proposal together with the DAO it belongs to
func (p *Program) loadDaoProposal(
	txn *database.Txn,
	daoAddr solana.PublicKey,
	proposalAddr solana.PublicKey,
) (*schema.Dao, *schema.Proposal, error) {
	dao, err := p.loadDao(txn, daoAddr)
	if err != nil {
		return nil, nil, err
	}
	proposal, err := p.loadProposal(txn, proposalAddr)
	if err != nil {
		return nil, nil, err
	}
	if !proposal.Dao.Equals(daoAddr) {
		return nil, nil, fmt.Errorf(
			"%w: %s belongs to %s",
			ErrInvalidDao,
			proposalAddr,
			proposal.Dao,
		)
	}
	return dao, proposal, nil
}

func (p *Program) loadInstruction(
	txn *database.Txn,
	proposalAddr solana.PublicKey,
	index uint32,
) (solana.PublicKey, *schema.ProposalInstruction, error) {
	addr, _, err := address.DeriveInstruction(p.id, proposalAddr, index)
	if err != nil {
		return addr, nil, err
	}
	ins := &schema.ProposalInstruction{}
	if err := p.load(txn, addr, ins); err != nil {
		return addr, nil, err
	}
	if !ins.Proposal.Equals(proposalAddr) || ins.Index != index {
		return addr, nil, fmt.Errorf(
			"%w: instruction %s is not %d of %s",
			ErrInvalidAccounts,
			addr,
			index,
			proposalAddr,
		)
	}
	return addr, ins, nil
}

func (p *Program) loadReceipt(
	txn *database.Txn,
	addr solana.PublicKey,
) (*schema.Receipt, error) {
	receipt := &schema.Receipt{}
	if err := p.load(txn, addr, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}

// expectDerived checks that a supplied account is the derived one
func expectDerived(kind string, got, want solana.PublicKey) error {
	if !got.Equals(want) {
		return fmt.Errorf(
			"%w: %s account %s, expected %s",
			ErrInvalidAddress,
			kind,
			got,
			want,
		)
	}
	return nil
}
