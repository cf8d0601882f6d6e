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
	"context"

	"github.com/blinklabs-io/kelpie/program"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
)

// InitializeDao creates a DAO at a freshly generated address
func (c *Client) InitializeDao(
	ctx context.Context,
	authority solana.PublicKey,
	args program.InitializeDaoArgs,
) (solana.PublicKey, error) {
	dao := solana.NewWallet().PublicKey()
	if err := c.program.InitializeDao(ctx, authority, dao, args); err != nil {
		return solana.PublicKey{}, err
	}
	c.logger.Debug(
		"initialized dao",
		"dao", dao.String(),
		"authority", authority.String(),
	)
	return dao, nil
}

// InitializeProposal creates the next proposal of dao, retrying when a
// concurrent call takes the same slot
func (c *Client) InitializeProposal(
	ctx context.Context,
	caller, dao solana.PublicKey,
	args program.InitializeProposalArgs,
) (solana.PublicKey, error) {
	return retry(ctx, c, "initialize proposal", func() (solana.PublicKey, error) {
		return c.program.InitializeProposal(ctx, caller, dao, args)
	})
}

// InitializeProposalInstruction attaches an instruction to proposal,
// retrying when a concurrent call takes the same slot
func (c *Client) InitializeProposalInstruction(
	ctx context.Context,
	caller, proposal solana.PublicKey,
	args program.InitializeProposalInstructionArgs,
) (uint32, error) {
	return retry(ctx, c, "initialize proposal instruction", func() (uint32, error) {
		return c.program.InitializeProposalInstruction(ctx, caller, proposal, args)
	})
}

// Vote escrows amount of the DAO mint on proposal in the given direction
// under the next free receipt index of voter. Conflicting submissions are
// retried with a freshly discovered index
func (c *Client) Vote(
	ctx context.Context,
	voter, proposal solana.PublicKey,
	direction schema.Direction,
	amount uint64,
) (solana.PublicKey, error) {
	return retry(ctx, c, "vote", func() (solana.PublicKey, error) {
		index, err := c.FindAvailableReceiptIndex(proposal, voter)
		if err != nil {
			return solana.PublicKey{}, err
		}
		if direction == schema.DirectionAgainst {
			return c.program.VoteAgainst(ctx, voter, proposal, index, amount)
		}
		return c.program.VoteFor(ctx, voter, proposal, index, amount)
	})
}

// VoteNft escrows a collection NFT on proposal in the given direction
func (c *Client) VoteNft(
	ctx context.Context,
	voter, proposal, nftMint solana.PublicKey,
	direction schema.Direction,
) (solana.PublicKey, error) {
	return retry(ctx, c, "vote nft", func() (solana.PublicKey, error) {
		index, err := c.FindAvailableReceiptIndex(proposal, voter)
		if err != nil {
			return solana.PublicKey{}, err
		}
		if direction == schema.DirectionAgainst {
			return c.program.VoteNftAgainst(ctx, voter, proposal, nftMint, index)
		}
		return c.program.VoteNftFor(ctx, voter, proposal, nftMint, index)
	})
}

// ExecuteProposal runs up to limit pending instructions of proposal, zero
// meaning all of them
func (c *Client) ExecuteProposal(
	ctx context.Context,
	executor, proposal solana.PublicKey,
	limit uint32,
) error {
	_, err := retry(ctx, c, "execute proposal", func() (struct{}, error) {
		return struct{}{}, c.program.ExecuteProposal(ctx, executor, proposal, limit)
	})
	return err
}

// Close refunds and deletes a receipt, picking the close operation that
// matches the voting mode of its DAO
func (c *Client) Close(
	ctx context.Context,
	authority, receipt solana.PublicKey,
) error {
	state, err := c.program.GetReceipt(receipt, nil)
	if err != nil {
		return err
	}
	proposal, err := c.program.GetProposal(state.Proposal, nil)
	if err != nil {
		return err
	}
	dao, err := c.program.GetDao(proposal.Dao, nil)
	if err != nil {
		return err
	}
	_, err = retry(ctx, c, "close", func() (struct{}, error) {
		if dao.IsNftVoting {
			return struct{}{}, c.program.CloseNftVoting(ctx, authority, receipt)
		}
		return struct{}{}, c.program.Close(ctx, authority, receipt)
	})
	return err
}

// retry runs op until it succeeds, fails with a non-retryable error or
// exhausts the configured attempts
func retry[T any](
	ctx context.Context,
	c *Client,
	operation string,
	op func() (T, error),
) (T, error) {
	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		ret, err := op()
		if err == nil {
			return ret, nil
		}
		if !program.IsRetryable(err) {
			return ret, backoff.Permanent(err)
		}
		c.logger.Debug(
			"retrying after conflict",
			"operation", operation,
			"attempt", attempt,
			"error", err.Error(),
		)
		return ret, err
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryBackoff
	return backoff.Retry(
		ctx,
		wrapped,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(c.maxRetries+1),
	)
}
