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

package token

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

const (
	// TransferInstruction is the token program transfer tag
	TransferInstruction uint8 = 3
	// SystemTransferInstruction is the system program transfer tag
	SystemTransferInstruction uint32 = 2
)

var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrOwnerNotSigner     = errors.New("owner did not sign")
)

// Program moves balances of any mint. Accounts are mint, source owner
// (signer) and destination owner. Data is the transfer tag followed by a
// little-endian u64 amount
type Program struct {
	ledger *Ledger
}

func NewProgram(ledger *Ledger) *Program {
	return &Program{ledger: ledger}
}

func (p *Program) ID() solana.PublicKey {
	return solana.TokenProgramID
}

func (p *Program) Process(_ context.Context, inv *runtime.Invocation) error {
	ix := inv.Instruction
	if len(ix.Data) != 9 || ix.Data[0] != TransferInstruction {
		return fmt.Errorf("%w: token data %x", ErrInvalidInstruction, ix.Data)
	}
	amount := binary.LittleEndian.Uint64(ix.Data[1:])
	if len(ix.Accounts) < 3 {
		return fmt.Errorf("token transfer: %w", runtime.ErrNotEnoughAccounts)
	}
	mint, _ := ix.Account(0)
	from, _ := ix.Account(1)
	to, _ := ix.Account(2)
	if !inv.IsSigner(from.PublicKey) {
		return fmt.Errorf("%w: %s", ErrOwnerNotSigner, from.PublicKey)
	}
	return p.ledger.Transfer(
		inv.Txn,
		mint.PublicKey,
		from.PublicKey,
		to.PublicKey,
		amount,
	)
}

// NewTransferInstruction builds a token program transfer
func NewTransferInstruction(
	mint, from, to solana.PublicKey,
	amount uint64,
) *runtime.Instruction {
	data := make([]byte, 9)
	data[0] = TransferInstruction
	binary.LittleEndian.PutUint64(data[1:], amount)
	return runtime.NewInstruction(
		solana.TokenProgramID,
		[]*solana.AccountMeta{
			solana.Meta(mint),
			solana.Meta(from).SIGNER().WRITE(),
			solana.Meta(to).WRITE(),
		},
		data,
	)
}

// SystemProgram moves the native asset using the system transfer layout
type SystemProgram struct {
	ledger *Ledger
}

func NewSystemProgram(ledger *Ledger) *SystemProgram {
	return &SystemProgram{ledger: ledger}
}

func (p *SystemProgram) ID() solana.PublicKey {
	return solana.SystemProgramID
}

func (p *SystemProgram) Process(
	_ context.Context,
	inv *runtime.Invocation,
) error {
	ix := inv.Instruction
	if len(ix.Data) != 12 ||
		binary.LittleEndian.Uint32(ix.Data) != SystemTransferInstruction {
		return fmt.Errorf("%w: system data %x", ErrInvalidInstruction, ix.Data)
	}
	lamports := binary.LittleEndian.Uint64(ix.Data[4:])
	if len(ix.Accounts) < 2 {
		return fmt.Errorf("system transfer: %w", runtime.ErrNotEnoughAccounts)
	}
	from, _ := ix.Account(0)
	to, _ := ix.Account(1)
	if !inv.IsSigner(from.PublicKey) {
		return fmt.Errorf("%w: %s", ErrOwnerNotSigner, from.PublicKey)
	}
	return p.ledger.Transfer(
		inv.Txn,
		NativeMint,
		from.PublicKey,
		to.PublicKey,
		lamports,
	)
}

// NewNativeTransferInstruction builds a system program transfer
func NewNativeTransferInstruction(
	from, to solana.PublicKey,
	lamports uint64,
) (*runtime.Instruction, error) {
	ix := system.NewTransferInstruction(lamports, from, to).Build()
	data, err := ix.Data()
	if err != nil {
		return nil, fmt.Errorf("encode system transfer: %w", err)
	}
	return runtime.NewInstruction(ix.ProgramID(), ix.Accounts(), data), nil
}

// Register adds the token and system programs to a runtime
func Register(rt *runtime.Runtime, ledger *Ledger) error {
	if err := rt.Register(NewProgram(ledger)); err != nil {
		return err
	}
	return rt.Register(NewSystemProgram(ledger))
}
