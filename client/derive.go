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

package client

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/gagliardetto/solana-go"
)

// DeriveProposalAddress returns the address of proposal index of dao. With
// strict set, the stored proposal must exist and match both inputs
func (c *Client) DeriveProposalAddress(
	dao solana.PublicKey,
	index uint64,
	strict bool,
) (solana.PublicKey, error) {
	addr, _, err := address.DeriveProposal(c.program.ID(), dao, index)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !strict {
		return addr, nil
	}
	proposal, err := c.program.GetProposal(addr, nil)
	if err != nil {
		return solana.PublicKey{}, notInitialized("proposal", addr, err)
	}
	if !proposal.Dao.Equals(dao) {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrViolatedDao, proposal.Dao)
	}
	if proposal.Index != index {
		return solana.PublicKey{}, fmt.Errorf("%w: %d", ErrViolatedIndex, proposal.Index)
	}
	return addr, nil
}

// DeriveReceiptAddress returns the address of receipt index of authority
// on proposal. With strict set, the stored receipt must exist and match
// every input
func (c *Client) DeriveReceiptAddress(
	proposal, authority solana.PublicKey,
	index uint64,
	strict bool,
) (solana.PublicKey, error) {
	addr, _, err := address.DeriveReceipt(c.program.ID(), proposal, authority, index)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if !strict {
		return addr, nil
	}
	receipt, err := c.program.GetReceipt(addr, nil)
	if err != nil {
		return solana.PublicKey{}, notInitialized("receipt", addr, err)
	}
	if !receipt.Authority.Equals(authority) {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrViolatedAuthority, receipt.Authority)
	}
	if !receipt.Proposal.Equals(proposal) {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrViolatedProposal, receipt.Proposal)
	}
	if receipt.Index != index {
		return solana.PublicKey{}, fmt.Errorf("%w: %d", ErrViolatedIndex, receipt.Index)
	}
	return addr, nil
}

func (c *Client) DeriveTreasurerAddress(proposal solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := address.DeriveTreasurer(c.program.ID(), proposal)
	return addr, err
}

func (c *Client) DeriveMasterAddress(dao solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := address.DeriveMaster(c.program.ID(), dao)
	return addr, err
}

func (c *Client) DeriveContentAddress(
	authority solana.PublicKey,
	discriminator [address.DiscriminatorLength]byte,
) (solana.PublicKey, error) {
	addr, _, err := address.DeriveContent(c.program.ID(), authority, discriminator)
	return addr, err
}

// FindAvailableReceiptIndex returns the lowest receipt index of authority
// on proposal with no stored receipt
func (c *Client) FindAvailableReceiptIndex(
	proposal, authority solana.PublicKey,
) (uint64, error) {
	for index := uint64(0); ; index++ {
		_, err := c.DeriveReceiptAddress(proposal, authority, index, true)
		if errors.Is(err, ErrNotInitialized) {
			return index, nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// notInitialized reports a missing account as ErrNotInitialized and passes
// through any other lookup failure
func notInitialized(kind string, addr solana.PublicKey, err error) error {
	if errors.Is(err, program.ErrAccountNotFound) {
		return fmt.Errorf("%s %s: %w", kind, addr, ErrNotInitialized)
	}
	return err
}
