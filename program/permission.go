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
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
)

// master returns the master signer of a DAO
func (p *Program) master(dao solana.PublicKey) (solana.PublicKey, uint8, error) {
	return address.DeriveMaster(p.id, dao)
}

// authorizeLifecycle checks the caller of a DAO lifecycle operation. A
// dictatorial DAO is run by its authority, other regimes only change
// through executed proposals signed by the master
func (p *Program) authorizeLifecycle(
	daoAddr solana.PublicKey,
	dao *schema.Dao,
	caller solana.PublicKey,
) error {
	switch dao.Regime {
	case schema.RegimeDictatorial:
		if caller.Equals(dao.Authority) {
			return nil
		}
	case schema.RegimeDemocratic, schema.RegimeAutonomous:
		master, _, err := p.master(daoAddr)
		if err != nil {
			return err
		}
		if caller.Equals(master) {
			return nil
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRegime, dao.Regime)
	}
	return fmt.Errorf(
		"%w: %s may not manage %s dao %s",
		ErrUnauthorized,
		caller,
		dao.Regime,
		daoAddr,
	)
}

// authorizePropose checks the caller of proposal and instruction creation
func authorizePropose(dao *schema.Dao, caller solana.PublicKey) error {
	if dao.IsPublic || caller.Equals(dao.Authority) {
		return nil
	}
	return fmt.Errorf(
		"%w: %s may not propose to a private dao",
		ErrUnauthorized,
		caller,
	)
}

// authorizeExecute checks the caller of proposal execution
func authorizeExecute(dao *schema.Dao, caller solana.PublicKey) error {
	switch dao.Regime {
	case schema.RegimeAutonomous:
		return nil
	case schema.RegimeDictatorial, schema.RegimeDemocratic:
		if caller.Equals(dao.Authority) {
			return nil
		}
		return fmt.Errorf(
			"%w: %s may not execute for %s dao",
			ErrUnauthorized,
			caller,
			dao.Regime,
		)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidRegime, dao.Regime)
	}
}
