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

// Package runtime dispatches instructions to registered programs inside a
// single database transaction and enforces signer privileges across nested
// invocations.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/gagliardetto/solana-go"
)

// MaxInvokeDepth bounds nested program invocations
const MaxInvokeDepth = 4

var (
	ErrProgramNotFound   = errors.New("program not found")
	ErrProgramRegistered = errors.New("program already registered")
	ErrMissingSignature  = errors.New("missing required signature")
	ErrMaxDepth          = errors.New("max invoke depth exceeded")
	ErrInvalidSeeds      = errors.New("invalid signer seeds")
	ErrNotEnoughAccounts = errors.New("not enough accounts")
)

// Instruction is a call into a program
type Instruction struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
}

// NewInstruction builds an instruction from its parts
func NewInstruction(
	programID solana.PublicKey,
	accounts []*solana.AccountMeta,
	data []byte,
) *Instruction {
	return &Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}

// Account returns the account at idx or ErrNotEnoughAccounts
func (i *Instruction) Account(idx int) (*solana.AccountMeta, error) {
	if idx < 0 || idx >= len(i.Accounts) || i.Accounts[idx] == nil {
		return nil, fmt.Errorf(
			"%w: want index %d, have %d",
			ErrNotEnoughAccounts,
			idx,
			len(i.Accounts),
		)
	}
	return i.Accounts[idx], nil
}

// Program is an on-ledger program that can be invoked through the runtime
type Program interface {
	ID() solana.PublicKey
	Process(ctx context.Context, inv *Invocation) error
}

// Runtime holds the registered programs
type Runtime struct {
	logger   *slog.Logger
	programs map[solana.PublicKey]Program
	mu       sync.RWMutex
}

// New returns an empty runtime
func New(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Runtime{
		logger:   logger.With("component", "runtime"),
		programs: make(map[solana.PublicKey]Program),
	}
}

// Register adds a program to the runtime
func (r *Runtime) Register(p Program) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.programs[p.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrProgramRegistered, p.ID())
	}
	r.programs[p.ID()] = p
	r.logger.Debug(
		"registered program",
		"program", p.ID().String(),
	)
	return nil
}

// Program returns the program registered at id
func (r *Runtime) Program(id solana.PublicKey) (Program, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, id)
	}
	return p, nil
}

// Invoke runs a top-level instruction. The signers are the keys that
// signed the enclosing call
func (r *Runtime) Invoke(
	ctx context.Context,
	txn *database.Txn,
	ix *Instruction,
	signers []solana.PublicKey,
) error {
	set := make(map[solana.PublicKey]struct{}, len(signers))
	for _, s := range signers {
		set[s] = struct{}{}
	}
	return r.invoke(ctx, txn, ix, set, 0)
}

func (r *Runtime) invoke(
	ctx context.Context,
	txn *database.Txn,
	ix *Instruction,
	signers map[solana.PublicKey]struct{},
	depth int,
) error {
	if depth >= MaxInvokeDepth {
		return ErrMaxDepth
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := r.Program(ix.ProgramID)
	if err != nil {
		return err
	}
	for _, meta := range ix.Accounts {
		if meta == nil || !meta.IsSigner {
			continue
		}
		if _, ok := signers[meta.PublicKey]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingSignature, meta.PublicKey)
		}
	}
	inv := &Invocation{
		Txn:         txn,
		Instruction: ix,
		runtime:     r,
		signers:     signers,
		depth:       depth,
	}
	return p.Process(ctx, inv)
}

// Invocation is the context handed to a program while it processes an
// instruction
type Invocation struct {
	Txn         *database.Txn
	Instruction *Instruction
	runtime     *Runtime
	signers     map[solana.PublicKey]struct{}
	depth       int
}

// IsSigner reports whether key signed the instruction
func (inv *Invocation) IsSigner(key solana.PublicKey) bool {
	for _, meta := range inv.Instruction.Accounts {
		if meta != nil && meta.IsSigner && meta.PublicKey.Equals(key) {
			return true
		}
	}
	return false
}

// Depth returns the nesting level of the invocation, 0 for top-level calls
func (inv *Invocation) Depth() int {
	return inv.depth
}

// Invoke calls another program, forwarding the signer privileges of the
// current instruction
func (inv *Invocation) Invoke(ctx context.Context, ix *Instruction) error {
	return inv.InvokeSigned(ctx, ix)
}

// InvokeSigned calls another program, forwarding the signer privileges of
// the current instruction and adding the addresses derived from
// signerSeeds under the current program
func (inv *Invocation) InvokeSigned(
	ctx context.Context,
	ix *Instruction,
	signerSeeds ...[][]byte,
) error {
	signers := make(map[solana.PublicKey]struct{})
	for _, meta := range inv.Instruction.Accounts {
		if meta != nil && meta.IsSigner {
			signers[meta.PublicKey] = struct{}{}
		}
	}
	return inv.invokeDerived(ctx, ix, signers, signerSeeds)
}

// InvokeIsolated calls another program holding only the signatures of the
// addresses derived from signerSeeds. Signers of the current instruction
// are not forwarded
func (inv *Invocation) InvokeIsolated(
	ctx context.Context,
	ix *Instruction,
	signerSeeds ...[][]byte,
) error {
	return inv.invokeDerived(
		ctx,
		ix,
		make(map[solana.PublicKey]struct{}, len(signerSeeds)),
		signerSeeds,
	)
}

func (inv *Invocation) invokeDerived(
	ctx context.Context,
	ix *Instruction,
	signers map[solana.PublicKey]struct{},
	signerSeeds [][][]byte,
) error {
	for _, seeds := range signerSeeds {
		pda, err := solana.CreateProgramAddress(
			seeds,
			inv.Instruction.ProgramID,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSeeds, err)
		}
		signers[pda] = struct{}{}
	}
	return inv.runtime.invoke(ctx, inv.Txn, ix, signers, inv.depth+1)
}
