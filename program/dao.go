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

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// NewInitializeDaoInstruction creates a DAO at the address dao owned by
// authority. The dao key signs its own creation
func NewInitializeDaoInstruction(
	programID solana.PublicKey,
	dao solana.PublicKey,
	authority solana.PublicKey,
	args InitializeDaoArgs,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(OpInitializeDao, args)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao).SIGNER().WRITE(),
			solana.Meta(authority).SIGNER().WRITE(),
		},
		data,
	), nil
}

func newDaoUpdateInstruction(
	programID solana.PublicKey,
	operation string,
	dao solana.PublicKey,
	caller solana.PublicKey,
	args any,
) (*runtime.Instruction, error) {
	data, err := EncodeInstructionData(operation, args)
	if err != nil {
		return nil, err
	}
	return runtime.NewInstruction(
		programID,
		[]*solana.AccountMeta{
			solana.Meta(dao).WRITE(),
			solana.Meta(caller).SIGNER(),
		},
		data,
	), nil
}

// NewUpdateSupplyInstruction sets the total voting supply of a DAO.
// caller is the authority or the DAO master depending on the regime
func NewUpdateSupplyInstruction(
	programID, dao, caller solana.PublicKey,
	supply uint64,
) (*runtime.Instruction, error) {
	return newDaoUpdateInstruction(
		programID,
		OpUpdateSupply,
		dao,
		caller,
		UpdateSupplyArgs{Supply: supply},
	)
}

func NewUpdateRegimeInstruction(
	programID, dao, caller solana.PublicKey,
	regime schema.Regime,
) (*runtime.Instruction, error) {
	return newDaoUpdateInstruction(
		programID,
		OpUpdateRegime,
		dao,
		caller,
		UpdateRegimeArgs{Regime: regime},
	)
}

func NewUpdateMetadataInstruction(
	programID, dao, caller solana.PublicKey,
	metadata [32]byte,
) (*runtime.Instruction, error) {
	return newDaoUpdateInstruction(
		programID,
		OpUpdateMetadata,
		dao,
		caller,
		UpdateMetadataArgs{Metadata: metadata},
	)
}

func NewTransferAuthorityInstruction(
	programID, dao, caller, newAuthority solana.PublicKey,
) (*runtime.Instruction, error) {
	return newDaoUpdateInstruction(
		programID,
		OpTransferAuthority,
		dao,
		caller,
		TransferAuthorityArgs{NewAuthority: newAuthority},
	)
}

func daoEvent(
	daoAddr solana.PublicKey,
	dao *schema.Dao,
	actor solana.PublicKey,
) event.DaoEvent {
	return event.DaoEvent{
		Dao:       daoAddr.Bytes(),
		Authority: dao.Authority.Bytes(),
		Actor:     actor.Bytes(),
		Mint:      dao.Mint.Bytes(),
		Metadata:  dao.Metadata[:],
		Supply:    dao.Supply,
		Regime:    uint8(dao.Regime),
		Nonce:     dao.Nonce,
	}
}

func (p *Program) initializeDao(
	inv *runtime.Invocation,
	args *InitializeDaoArgs,
) error {
	daoAddr, err := signer(inv, 0)
	if err != nil {
		return err
	}
	// program-derived addresses have no key and belong to other records
	if !daoAddr.IsOnCurve() {
		return fmt.Errorf("%w: dao %s is off curve", ErrInvalidAddress, daoAddr)
	}
	authority, err := signer(inv, 1)
	if err != nil {
		return err
	}
	if args.Supply == 0 {
		return ErrInvalidSupply
	}
	if !args.Regime.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRegime, args.Regime)
	}
	if args.Mint.IsZero() {
		return fmt.Errorf("%w: empty mint", ErrInvalidAddress)
	}
	dao := &schema.Dao{
		Authority:   authority,
		Mint:        args.Mint,
		Regime:      args.Regime,
		Supply:      args.Supply,
		IsNftVoting: args.IsNftVoting,
		IsPublic:    args.IsPublic,
		Metadata:    args.Metadata,
	}
	if err := p.create(inv.Txn, daoAddr, dao); err != nil {
		return err
	}
	inv.Txn.OnCommit(p.metrics.daos.Inc)
	return p.emit(
		inv.Txn,
		event.DaoInitializedEventType,
		daoEvent(daoAddr, dao, authority),
		p.clock.Now(),
	)
}

// updateDao loads the DAO, authorizes the caller, applies fn and stores
// the result
func (p *Program) updateDao(
	inv *runtime.Invocation,
	eventType event.EventType,
	fn func(*schema.Dao) error,
) error {
	daoAddr, err := account(inv, 0)
	if err != nil {
		return err
	}
	caller, err := signer(inv, 1)
	if err != nil {
		return err
	}
	dao, err := p.loadDao(inv.Txn, daoAddr)
	if err != nil {
		return err
	}
	if err := p.authorizeLifecycle(daoAddr, dao, caller); err != nil {
		return err
	}
	if err := fn(dao); err != nil {
		return err
	}
	if err := p.store(inv.Txn, daoAddr, dao); err != nil {
		return err
	}
	return p.emit(
		inv.Txn,
		eventType,
		daoEvent(daoAddr, dao, caller),
		p.clock.Now(),
	)
}

func (p *Program) updateSupply(
	inv *runtime.Invocation,
	args *UpdateSupplyArgs,
) error {
	if args.Supply == 0 {
		return ErrInvalidSupply
	}
	return p.updateDao(
		inv,
		event.DaoSupplyUpdatedEventType,
		func(dao *schema.Dao) error {
			dao.Supply = args.Supply
			return nil
		},
	)
}

func (p *Program) updateRegime(
	inv *runtime.Invocation,
	args *UpdateRegimeArgs,
) error {
	if !args.Regime.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRegime, args.Regime)
	}
	return p.updateDao(
		inv,
		event.DaoRegimeUpdatedEventType,
		func(dao *schema.Dao) error {
			dao.Regime = args.Regime
			return nil
		},
	)
}

func (p *Program) updateMetadata(
	inv *runtime.Invocation,
	args *UpdateMetadataArgs,
) error {
	return p.updateDao(
		inv,
		event.DaoMetadataUpdatedEventType,
		func(dao *schema.Dao) error {
			dao.Metadata = args.Metadata
			return nil
		},
	)
}

func (p *Program) transferAuthority(
	inv *runtime.Invocation,
	args *TransferAuthorityArgs,
) error {
	if args.NewAuthority.IsZero() {
		return fmt.Errorf("%w: empty authority", ErrInvalidAddress)
	}
	// an off-curve authority can never sign a top-level call, which would
	// leave private DAOs without proposers and most regimes without executors
	if !args.NewAuthority.IsOnCurve() {
		return fmt.Errorf(
			"%w: authority %s is off curve",
			ErrInvalidAddress,
			args.NewAuthority,
		)
	}
	return p.updateDao(
		inv,
		event.DaoAuthorityTransferredEventType,
		func(dao *schema.Dao) error {
			dao.Authority = args.NewAuthority
			return nil
		},
	)
}

// GetDao returns the DAO stored at addr
func (p *Program) GetDao(
	addr solana.PublicKey,
	txn *database.Txn,
) (*schema.Dao, error) {
	return p.loadDao(txn, addr)
}
