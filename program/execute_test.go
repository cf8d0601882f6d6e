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

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passedProposal returns a proposal with the given master payouts that
// passed and ended
func (f *fixture) passedProposal(
	regime schema.Regime,
	payouts ...uint64,
) (solana.PublicKey, solana.PublicKey, solana.PublicKey) {
	f.t.Helper()
	dao := f.newDao(daoOptions{regime: regime})
	master := f.master(dao)
	recipient := newKey()
	proposal := f.newProposal(dao)
	for _, amount := range payouts {
		f.attach(proposal, f.nativeTransfer(master, recipient, amount), master)
	}
	f.openVoting(proposal)
	f.voteFor(proposal, f.voter(60), 0, 60)
	f.endVoting(proposal)
	return dao, proposal, recipient
}

func TestExecuteTimingGate(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	proposal := f.newProposal(dao)
	f.openVoting(proposal)
	f.voteFor(proposal, f.voter(100), 0, 100)
	// an overwhelming majority still waits for the end of voting
	f.clock.Set(f.proposal(proposal).EndDate - 1)
	err := f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0)
	assert.ErrorIs(t, err, program.ErrProposalNotEnded)
	f.endVoting(proposal)
	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0))
	assert.True(t, f.proposal(proposal).Executed)
}

func TestExecuteNotPassed(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	proposal := f.newProposal(dao)
	f.openVoting(proposal)
	f.voteFor(proposal, f.voter(49), 0, 49)
	f.endVoting(proposal)
	err := f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0)
	assert.ErrorIs(t, err, program.ErrProposalNotPassed)
	assert.False(t, f.proposal(proposal).Executed)
}

func TestExecuteResume(t *testing.T) {
	f := newFixture(t)
	dao, proposal, recipient := f.passedProposal(schema.RegimeDictatorial, 1, 2, 3)
	f.fund(token.NativeMint, f.master(dao), 6)

	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 1))
	state := f.proposal(proposal)
	assert.Equal(t, uint32(1), state.TotalExecuted)
	assert.False(t, state.Executed)
	assert.Equal(t, uint64(1), f.balance(token.NativeMint, recipient))

	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0))
	state = f.proposal(proposal)
	assert.Equal(t, uint32(3), state.TotalExecuted)
	assert.True(t, state.Executed)
	assert.Equal(t, uint64(6), f.balance(token.NativeMint, recipient))

	// completed proposals are a no-op
	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0))
	assert.Equal(t, uint32(3), f.proposal(proposal).TotalExecuted)
	assert.Equal(t, uint64(6), f.balance(token.NativeMint, recipient))

	events, err := f.db.GetEvents(
		database.EventFilter{
			Type:    string(event.InstructionExecutedEventType),
			Subject: proposal.Bytes(),
		},
		nil,
	)
	require.NoError(t, err)
	require.Len(t, events, 3)
	for i, evt := range events {
		decoded, err := event.DecodeGovernanceEvent(
			event.InstructionExecutedEventType,
			evt.Data,
		)
		require.NoError(t, err)
		exec, ok := decoded.(event.ExecutionEvent)
		require.True(t, ok)
		assert.Equal(t, uint32(i), exec.InstructionIndex)
	}
	assert.InDelta(t, 3.0, f.counter("kelpie_instructions_executed_total"), 0)
	assert.InDelta(t, 1.0, f.counter("kelpie_proposals_executed_total"), 0)
}

func TestExecuteFailureRollsBackBatch(t *testing.T) {
	f := newFixture(t)
	dao, proposal, recipient := f.passedProposal(schema.RegimeDictatorial, 5, 100)
	master := f.master(dao)
	f.fund(token.NativeMint, master, 5)

	err := f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0)
	require.ErrorIs(t, err, token.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "instruction 1")
	// the first sub-call was rolled back with the failing one
	assert.Zero(t, f.proposal(proposal).TotalExecuted)
	assert.Zero(t, f.balance(token.NativeMint, recipient))
	assert.Equal(t, uint64(5), f.balance(token.NativeMint, master))

	// a bounded batch commits the successful prefix
	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 1))
	assert.Equal(t, uint32(1), f.proposal(proposal).TotalExecuted)
	assert.Equal(t, uint64(5), f.balance(token.NativeMint, recipient))

	// funding the master lets execution resume at index 1
	f.fund(token.NativeMint, master, 100)
	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0))
	assert.True(t, f.proposal(proposal).Executed)
	assert.Equal(t, uint64(105), f.balance(token.NativeMint, recipient))
}

func TestExecutePermission(t *testing.T) {
	tests := []struct {
		regime      schema.Regime
		strangerErr error
	}{
		{schema.RegimeDictatorial, program.ErrUnauthorized},
		{schema.RegimeDemocratic, program.ErrUnauthorized},
		{schema.RegimeAutonomous, nil},
	}
	for _, tc := range tests {
		t.Run(tc.regime.String(), func(t *testing.T) {
			f := newFixture(t)
			_, proposal, _ := f.passedProposal(tc.regime)
			err := f.prog.ExecuteProposal(f.ctx, newKey(), proposal, 0)
			if tc.strangerErr != nil {
				require.ErrorIs(t, err, tc.strangerErr)
				require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0))
			} else {
				require.NoError(t, err)
			}
			assert.True(t, f.proposal(proposal).Executed)
		})
	}
}

func TestExecuteMasterOnlySignsAsMaster(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{})
	victim := newKey()
	f.fund(token.NativeMint, victim, 10)
	proposal := f.newProposal(dao)
	// a sub-call spending another account's funds needs that signature
	f.attach(proposal, f.nativeTransfer(victim, newKey(), 10))
	f.openVoting(proposal)
	f.voteFor(proposal, f.voter(60), 0, 60)
	f.endVoting(proposal)
	err := f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0)
	assert.ErrorIs(t, err, runtime.ErrMissingSignature)
	assert.Equal(t, uint64(10), f.balance(token.NativeMint, victim))
}

func TestExecuteDoesNotLendExecutorSignature(t *testing.T) {
	for _, regime := range []schema.Regime{
		schema.RegimeDictatorial,
		schema.RegimeDemocratic,
	} {
		t.Run(regime.String(), func(t *testing.T) {
			f := newFixture(t)
			dao := f.newDao(daoOptions{regime: regime, isPublic: true})
			f.fund(token.NativeMint, f.authority, 1000)
			attacker := newKey()
			args := f.proposalArgs()
			proposal, err := f.prog.InitializeProposal(f.ctx, attacker, dao, args)
			require.NoError(t, err)
			_, err = f.prog.InitializeProposalInstruction(
				f.ctx,
				attacker,
				proposal,
				program.InstructionArgsFromRuntime(
					f.nativeTransfer(f.authority, attacker, 1000),
				),
			)
			require.NoError(t, err)
			f.openVoting(proposal)
			f.voteFor(proposal, f.voter(60), 0, 60)
			f.endVoting(proposal)
			err = f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0)
			assert.ErrorIs(t, err, runtime.ErrMissingSignature)
			assert.Equal(t, uint64(1000), f.balance(token.NativeMint, f.authority))
			assert.Zero(t, f.balance(token.NativeMint, attacker))
			assert.Zero(t, f.proposal(proposal).TotalExecuted)
		})
	}
}

func TestExecuteRejectsReentry(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{regime: schema.RegimeAutonomous})
	master := f.master(dao)
	proposal := f.newProposal(dao)
	ix, err := program.NewExecuteProposalInstruction(f.prog.ID(), dao, proposal, master, 0)
	require.NoError(t, err)
	f.attach(proposal, ix, master)
	f.openVoting(proposal)
	f.voteFor(proposal, f.voter(60), 0, 60)
	f.endVoting(proposal)
	err = f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0)
	assert.ErrorIs(t, err, program.ErrReentrantExecution)
	assert.Zero(t, f.proposal(proposal).TotalExecuted)
}

func TestScenario(t *testing.T) {
	f := newFixture(t)
	dao := f.newDao(daoOptions{regime: schema.RegimeDemocratic, supply: 100})
	master := f.master(dao)
	recipient := newKey()
	f.fund(token.NativeMint, master, 25)

	args := f.proposalArgs()
	args.StartDate = t0 + 10
	args.EndDate = t0 + 20
	proposal, err := f.prog.InitializeProposal(f.ctx, f.authority, dao, args)
	require.NoError(t, err)
	f.attach(proposal, f.nativeTransfer(master, recipient, 25), master)

	voter := f.voter(80)
	f.clock.Set(t0 + 12)
	receipt := f.voteFor(proposal, voter, 0, 80)
	assert.Zero(t, f.balance(f.mint, voter))

	f.clock.Set(t0 + 21)
	require.NoError(t, f.prog.ExecuteProposal(f.ctx, f.authority, proposal, 0))
	state := f.proposal(proposal)
	assert.True(t, state.Executed)
	assert.Equal(t, uint32(1), state.TotalExecuted)
	assert.Equal(t, uint64(25), f.balance(token.NativeMint, recipient))

	f.clock.Set(t0 + 25)
	require.NoError(t, f.prog.Close(f.ctx, voter, receipt))
	assert.Equal(t, uint64(80), f.balance(f.mint, voter))
	assert.Zero(t, f.balance(f.mint, f.treasurer(proposal)))
}
