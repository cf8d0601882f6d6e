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

// Package program implements the governance program: DAO lifecycle,
// proposals and their instruction lists, token and NFT weighted voting,
// resumable execution and receipt closure.
//
// Every operation is an instruction processed through the runtime inside
// one database transaction, so executed proposals can call the governance
// program itself with the DAO master as signer.
package program

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/clock"
	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/nft"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/kelpie/program"

// Program is the governance program bound to a database
type Program struct {
	id             solana.PublicKey
	db             *database.Database
	runtime        *runtime.Runtime
	ledger         *token.Ledger
	nfts           *nft.Registry
	clock          clock.Clock
	eventBus       *event.EventBus
	logger         *slog.Logger
	promRegistry   prometheus.Registerer
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	metrics        *programMetrics
}

// New creates the governance program and registers it, together with the
// token and system programs, in a fresh runtime
func New(db *database.Database, opts ...ProgramOptionFunc) (*Program, error) {
	if db == nil {
		return nil, errors.New("program: database is required")
	}
	p := &Program{
		id: address.MustProgramID(),
		db: db,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if p.clock == nil {
		p.clock = clock.System{}
	}
	if p.tracerProvider == nil {
		p.tracerProvider = otel.GetTracerProvider()
	}
	p.tracer = p.tracerProvider.Tracer(tracerName)
	p.initMetrics()
	p.ledger = token.NewLedger(db)
	p.nfts = nft.NewRegistry(db)
	p.runtime = runtime.New(p.logger)
	if err := token.Register(p.runtime, p.ledger); err != nil {
		return nil, err
	}
	if err := p.runtime.Register(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ID returns the address of the governance program
func (p *Program) ID() solana.PublicKey {
	return p.id
}

func (p *Program) Database() *database.Database {
	return p.db
}

// Ledger returns the token ledger holding escrowed and voting balances
func (p *Program) Ledger() *token.Ledger {
	return p.ledger
}

// NFTs returns the NFT metadata registry
func (p *Program) NFTs() *nft.Registry {
	return p.nfts
}

// Runtime returns the runtime the program is registered in
func (p *Program) Runtime() *runtime.Runtime {
	return p.runtime
}

func (p *Program) Clock() clock.Clock {
	return p.clock
}

// Submit processes an instruction signed by signers in its own
// transaction. All state changes of the instruction and its nested calls
// commit together or not at all
func (p *Program) Submit(
	ctx context.Context,
	ix *runtime.Instruction,
	signers ...solana.PublicKey,
) error {
	operation := OpName(ix.Data)
	if !ix.ProgramID.Equals(p.id) || operation == "" {
		operation = "invoke"
	}
	ctx, span := p.tracer.Start(
		ctx,
		"kelpie."+operation,
		trace.WithAttributes(
			attribute.String("kelpie.operation", operation),
			attribute.String("kelpie.program", ix.ProgramID.String()),
			attribute.Int("kelpie.accounts", len(ix.Accounts)),
		),
	)
	defer span.End()
	start := time.Now()
	txn := p.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		return p.runtime.Invoke(ctx, txn, ix, signers)
	})
	err = mapStoreError(err)
	p.metrics.observe(operation, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Debug(
			"operation failed",
			"component", "program",
			"operation", operation,
			"error", err,
		)
		return err
	}
	p.logger.Debug(
		"operation committed",
		"component", "program",
		"operation", operation,
		"duration", time.Since(start),
	)
	return nil
}

// Process implements runtime.Program
func (p *Program) Process(ctx context.Context, inv *runtime.Invocation) error {
	data := inv.Instruction.Data
	operation := OpName(data)
	switch operation {
	case OpInitializeDao:
		var args InitializeDaoArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.initializeDao(inv, &args)
	case OpUpdateSupply:
		var args UpdateSupplyArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.updateSupply(inv, &args)
	case OpUpdateRegime:
		var args UpdateRegimeArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.updateRegime(inv, &args)
	case OpUpdateMetadata:
		var args UpdateMetadataArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.updateMetadata(inv, &args)
	case OpTransferAuthority:
		var args TransferAuthorityArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.transferAuthority(inv, &args)
	case OpInitializeProposal:
		var args InitializeProposalArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.initializeProposal(inv, &args)
	case OpInitializeProposalInstruction:
		var args InitializeProposalInstructionArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.initializeProposalInstruction(inv, &args)
	case OpVoteFor, OpVoteAgainst:
		var args VoteArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.vote(ctx, inv, voteParams{
			direction: directionOf(operation),
			index:     args.Index,
			amount:    args.Amount,
		})
	case OpVoteNftFor, OpVoteNftAgainst:
		var args VoteNftArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.vote(ctx, inv, voteParams{
			direction: directionOf(operation),
			index:     args.Index,
			amount:    1,
			nft:       true,
		})
	case OpExecuteProposal:
		var args ExecuteProposalArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.executeProposal(ctx, inv, &args)
	case OpClose:
		if err := decodeArgs(operation, data, &struct{}{}); err != nil {
			return err
		}
		return p.close(ctx, inv, false)
	case OpCloseNftVoting:
		if err := decodeArgs(operation, data, &struct{}{}); err != nil {
			return err
		}
		return p.close(ctx, inv, true)
	case OpInitializeContent:
		var args InitializeContentArgs
		if err := decodeArgs(operation, data, &args); err != nil {
			return err
		}
		return p.initializeContent(inv, &args)
	default:
		return fmt.Errorf(
			"%w: unknown discriminator %x",
			ErrInvalidInstruction,
			data[:min(len(data), 8)],
		)
	}
}

// signer returns the account at idx after checking it signed
func signer(inv *runtime.Invocation, idx int) (solana.PublicKey, error) {
	meta, err := inv.Instruction.Account(idx)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidAccounts, err)
	}
	if !inv.IsSigner(meta.PublicKey) {
		return solana.PublicKey{}, fmt.Errorf(
			"%w: %s did not sign",
			ErrUnauthorized,
			meta.PublicKey,
		)
	}
	return meta.PublicKey, nil
}

// account returns the address at idx
func account(inv *runtime.Invocation, idx int) (solana.PublicKey, error) {
	meta, err := inv.Instruction.Account(idx)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidAccounts, err)
	}
	return meta.PublicKey, nil
}
