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
	"context"
	"testing"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/clock"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// t0 is the ledger time every fixture starts at
const t0 int64 = 1_700_000_000

type fixture struct {
	t         *testing.T
	ctx       context.Context
	db        *database.Database
	prog      *program.Program
	clock     *clock.Fixed
	bus       *event.EventBus
	registry  *prometheus.Registry
	authority solana.PublicKey
	mint      solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		bus.Stop()
		require.NoError(t, db.Close())
	})
	registry := prometheus.NewRegistry()
	clk := clock.NewFixed(t0)
	prog, err := program.New(
		db,
		program.WithClock(clk),
		program.WithEventBus(bus),
		program.WithPromRegistry(registry),
	)
	require.NoError(t, err)
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		prog:      prog,
		clock:     clk,
		bus:       bus,
		registry:  registry,
		authority: newKey(),
		mint:      newKey(),
	}
}

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

type daoOptions struct {
	regime   schema.Regime
	supply   uint64
	nft      bool
	isPublic bool
}

func (f *fixture) newDao(opts daoOptions) solana.PublicKey {
	f.t.Helper()
	if opts.supply == 0 {
		opts.supply = 100
	}
	dao := newKey()
	err := f.prog.InitializeDao(f.ctx, f.authority, dao, program.InitializeDaoArgs{
		Mint:        f.mint,
		Supply:      opts.supply,
		Regime:      opts.regime,
		IsNftVoting: opts.nft,
		IsPublic:    opts.isPublic,
	})
	require.NoError(f.t, err)
	return dao
}

// proposalArgs returns a half-quorum proposal voting in [now+10, now+20)
func (f *fixture) proposalArgs() program.InitializeProposalArgs {
	now := f.clock.Now()
	return program.InitializeProposalArgs{
		ConsensusMechanism: schema.ConsensusMechanismStakedTokenCounter,
		ConsensusQuorum:    schema.ConsensusQuorumHalf,
		StartDate:          now + 10,
		EndDate:            now + 20,
	}
}

func (f *fixture) newProposal(dao solana.PublicKey) solana.PublicKey {
	f.t.Helper()
	proposal, err := f.prog.InitializeProposal(
		f.ctx,
		f.authority,
		dao,
		f.proposalArgs(),
	)
	require.NoError(f.t, err)
	return proposal
}

func (f *fixture) master(dao solana.PublicKey) solana.PublicKey {
	f.t.Helper()
	master, _, err := address.DeriveMaster(f.prog.ID(), dao)
	require.NoError(f.t, err)
	return master
}

func (f *fixture) treasurer(proposal solana.PublicKey) solana.PublicKey {
	f.t.Helper()
	treasurer, _, err := address.DeriveTreasurer(f.prog.ID(), proposal)
	require.NoError(f.t, err)
	return treasurer
}

// attach appends ix to a proposal with every master account signing as
// the DAO master
func (f *fixture) attach(
	proposal solana.PublicKey,
	ix *runtime.Instruction,
	masters ...solana.PublicKey,
) uint32 {
	f.t.Helper()
	index, err := f.prog.InitializeProposalInstruction(
		f.ctx,
		f.authority,
		proposal,
		program.InstructionArgsFromRuntime(ix, masters...),
	)
	require.NoError(f.t, err)
	return index
}

func (f *fixture) nativeTransfer(
	from, to solana.PublicKey,
	amount uint64,
) *runtime.Instruction {
	f.t.Helper()
	ix, err := token.NewNativeTransferInstruction(from, to, amount)
	require.NoError(f.t, err)
	return ix
}

func (f *fixture) fund(mint, owner solana.PublicKey, amount uint64) {
	f.t.Helper()
	require.NoError(f.t, f.prog.Ledger().Mint(nil, mint, owner, amount))
}

func (f *fixture) balance(mint, owner solana.PublicKey) uint64 {
	f.t.Helper()
	bal, err := f.prog.Ledger().Balance(mint, owner, nil)
	require.NoError(f.t, err)
	return bal
}

func (f *fixture) proposal(addr solana.PublicKey) *schema.Proposal {
	f.t.Helper()
	proposal, err := f.prog.GetProposal(addr, nil)
	require.NoError(f.t, err)
	return proposal
}

func (f *fixture) dao(addr solana.PublicKey) *schema.Dao {
	f.t.Helper()
	dao, err := f.prog.GetDao(addr, nil)
	require.NoError(f.t, err)
	return dao
}

// voter returns a fresh key holding amount of the DAO mint
func (f *fixture) voter(amount uint64) solana.PublicKey {
	f.t.Helper()
	voter := newKey()
	f.fund(f.mint, voter, amount)
	return voter
}

func (f *fixture) voteFor(proposal, voter solana.PublicKey, index, amount uint64) solana.PublicKey {
	f.t.Helper()
	receipt, err := f.prog.VoteFor(f.ctx, voter, proposal, index, amount)
	require.NoError(f.t, err)
	return receipt
}

// openVoting moves the clock to the start of a proposal's voting window
func (f *fixture) openVoting(proposal solana.PublicKey) {
	f.clock.Set(f.proposal(proposal).StartDate)
}

// endVoting moves the clock to the end of a proposal's voting window
func (f *fixture) endVoting(proposal solana.PublicKey) {
	f.clock.Set(f.proposal(proposal).EndDate)
}

// counter returns the value of a counter in the fixture registry whose
// label values match labels in order
func (f *fixture) counter(name string, labels ...string) float64 {
	f.t.Helper()
	families, err := f.registry.Gather()
	require.NoError(f.t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			pairs := metric.GetLabel()
			if len(pairs) != len(labels) {
				continue
			}
			match := true
			for i, pair := range pairs {
				if pair.GetValue() != labels[i] {
					match = false
					break
				}
			}
			if match {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
