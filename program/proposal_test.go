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

package program_test

import (
	"testing"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalNonceMonotonic(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	for i := range uint64(3) {
		proposal := f.newProposal(dao)
		expected, _, err := address.DeriveProposal(f.prog.ID(), dao, i)
		require.NoError(t, err)
		assert.Equal(t, expected, proposal)
		state := f.proposal(proposal)
		assert.Equal(t, i, state.Index)
		assert.Equal(t, dao, state.Dao)
		assert.Equal(t, i+1, f.dao(dao).Nonce)
	}
}

func TestInitializeProposalValidation(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	tests := []struct {
		name    string
		modify  func(*program.InitializeProposalArgs)
		wantErr error
	}{
		{
			name:    "start in the past",
			modify:  func(a *program.InitializeProposalArgs) { a.StartDate = t0 },
			wantErr: program.ErrInvalidDates,
		},
		{
			name:    "end before start",
			modify:  func(a *program.InitializeProposalArgs) { a.EndDate = a.StartDate },
			wantErr: program.ErrInvalidDates,
		},
		{
			name:    "unknown quorum",
			modify:  func(a *program.InitializeProposalArgs) { a.ConsensusQuorum = 3 },
			wantErr: program.ErrInvalidQuorum,
		},
		{
			name:    "unknown mechanism",
			modify:  func(a *program.InitializeProposalArgs) { a.ConsensusMechanism = 2 },
			wantErr: program.ErrInvalidMechanism,
		},
		{
			name:    "tax without taxman",
			modify:  func(a *program.InitializeProposalArgs) { a.Tax = 1 },
			wantErr: program.ErrInvalidAddress,
		},
		{
			name:    "revenue without revenueman",
			modify:  func(a *program.InitializeProposalArgs) { a.Revenue = 1 },
			wantErr: program.ErrInvalidAddress,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := f.proposalArgs()
			tc.modify(&args)
			_, err := f.prog.InitializeProposal(f.ctx, f.authority, dao, args)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Zero(t, f.dao(dao).Nonce)
}

func TestProposePermission(t *testing.T) {
	f := newFixture(t)
	stranger := newKey()
	private := f.newDao(daoOptions{})
	_, err := f.prog.InitializeProposal(f.ctx, stranger, private, f.proposalArgs())
	assert.ErrorIs(t, err, program.ErrUnauthorized)

	public := f.newDao(daoOptions{isPublic: true})
	proposal, err := f.prog.InitializeProposal(f.ctx, stranger, public, f.proposalArgs())
	require.NoError(t, err)
	_, err = f.prog.InitializeProposalInstruction(
		f.ctx,
		stranger,
		proposal,
		program.InstructionArgsFromRuntime(f.nativeTransfer(f.master(public), stranger, 1)),
	)
	require.NoError(t, err)
}

func TestInitializeProposalStaleSlot(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	f.newProposal(dao)
	// a caller that read nonce 0 races the proposal above
	stale, _, err := address.DeriveProposal(f.prog.ID(), dao, 0)
	require.NoError(t, err)
	ix, err := program.NewInitializeProposalInstruction(
		f.prog.ID(),
		dao,
		stale,
		f.authority,
		f.proposalArgs(),
	)
	require.NoError(t, err)
	err = f.prog.Submit(f.ctx, ix, f.authority)
	assert.ErrorIs(t, err, program.ErrConflict)
	assert.True(t, program.IsRetryable(err))
	assert.Equal(t, uint64(1), f.dao(dao).Nonce)
}

func TestProposalInstructionNormalizesWritable(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	proposal := f.newProposal(dao)
	shared, other := newKey(), newKey()
	args := program.InitializeProposalInstructionArgs{
		InvokedProgram: solana.SystemProgramID,
		Data:           []byte{1, 2, 3},
		Pubkeys:        []solana.PublicKey{shared, other, shared},
		IsSigners:      []bool{false, false, true},
		IsWritables:    []bool{false, false, true},
		IsMasters:      []bool{false, false, false},
	}
	index, err := f.prog.InitializeProposalInstruction(f.ctx, f.authority, proposal, args)
	require.NoError(t, err)
	assert.Zero(t, index)
	ins, err := f.prog.GetProposalInstruction(proposal, 0, nil)
	require.NoError(t, err)
	require.Len(t, ins.Accounts, 3)
	assert.True(t, ins.Accounts[0].IsWritable)
	assert.False(t, ins.Accounts[1].IsWritable)
	assert.True(t, ins.Accounts[2].IsWritable)
	// signer flags are kept per occurrence
	assert.False(t, ins.Accounts[0].IsSigner)
	assert.True(t, ins.Accounts[2].IsSigner)
	assert.Equal(t, []byte{1, 2, 3}, ins.Data)
	assert.Equal(t, proposal, ins.Proposal)

	index, err = f.prog.InitializeProposalInstruction(f.ctx, f.authority, proposal, args)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
	assert.Equal(t, uint32(2), f.proposal(proposal).TotalInstruction)
}

func TestProposalInstructionValidation(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	proposal := f.newProposal(dao)
	args := program.InitializeProposalInstructionArgs{
		InvokedProgram: solana.SystemProgramID,
		Pubkeys:        []solana.PublicKey{newKey(), newKey()},
		IsSigners:      []bool{false, false},
		IsWritables:    []bool{false},
		IsMasters:      []bool{false, false},
	}
	_, err := f.prog.InitializeProposalInstruction(f.ctx, f.authority, proposal, args)
	assert.ErrorIs(t, err, program.ErrInvalidAccounts)

	_, err = f.prog.InitializeProposalInstruction(
		f.ctx,
		newKey(),
		proposal,
		program.InstructionArgsFromRuntime(f.nativeTransfer(newKey(), newKey(), 1)),
	)
	assert.ErrorIs(t, err, program.ErrUnauthorized)

	// instructions are frozen once voting opens
	f.openVoting(proposal)
	_, err = f.prog.InitializeProposalInstruction(
		f.ctx,
		f.authority,
		proposal,
		program.InstructionArgsFromRuntime(f.nativeTransfer(newKey(), newKey(), 1)),
	)
	assert.ErrorIs(t, err, program.ErrProposalStarted)
	assert.Zero(t, f.proposal(proposal).TotalInstruction)
}

func TestProposalDefaults(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	args := f.proposalArgs()
	args.ConsensusMechanism = schema.ConsensusMechanismLockedTokenCounter
	args.ConsensusQuorum = schema.ConsensusQuorumTwoThird
	proposal, err := f.prog.InitializeProposal(f.ctx, f.authority, dao, args)
	require.NoError(t, err)
	state := f.proposal(proposal)
	assert.Equal(t, schema.ConsensusMechanismLockedTokenCounter, state.ConsensusMechanism)
	assert.Equal(t, schema.ConsensusQuorumTwoThird, state.ConsensusQuorum)
	assert.Equal(t, args.StartDate, state.StartDate)
	assert.Equal(t, args.EndDate, state.EndDate)
	assert.Zero(t, state.Tax)
	assert.Zero(t, state.Revenue)
	assert.Zero(t, state.VotingForPower)
	assert.Zero(t, state.TotalInstruction)
	assert.False(t, state.Executed)
}
