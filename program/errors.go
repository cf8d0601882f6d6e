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
	"errors"
	"fmt"

	"github.com/blinklabs-io/kelpie/database"
	"github.com/blinklabs-io/kelpie/database/types"
)

// Validation errors
var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrInvalidSupply      = errors.New("invalid supply")
	ErrInvalidRegime      = errors.New("invalid regime")
	ErrInvalidMechanism   = errors.New("invalid consensus mechanism")
	ErrInvalidQuorum      = errors.New("invalid consensus quorum")
	ErrInvalidDates       = errors.New("invalid proposal dates")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidAccounts    = errors.New("invalid instruction accounts")
	ErrInvalidVotingMode  = errors.New("invalid voting mode")
	ErrInvalidDao         = errors.New("proposal does not belong to dao")
	ErrInvalidProposal    = errors.New("receipt does not belong to proposal")
	ErrOverflow           = errors.New("operation overflowed")
	ErrReentrantExecution = errors.New("reentrant proposal execution")
	ErrProposalExecuted   = errors.New("proposal already executed")
)

// Authorization errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrProposalNotStarted = errors.New("proposal not started")
	ErrProposalStarted    = errors.New("proposal already started")
	ErrProposalEnded      = errors.New("proposal ended")
	ErrProposalNotEnded   = errors.New("proposal not ended")
	ErrProposalNotPassed  = errors.New("proposal not passed")
)

// Concurrency and lookup errors
var (
	// ErrConflict is returned when a concurrent call touched the same
	// accounts. The call can be retried
	ErrConflict = errors.New("conflict")
	// ErrAccountAlreadyInitialized is returned when creating an account
	// that already exists
	ErrAccountAlreadyInitialized = errors.New("account already initialized")
	ErrAccountNotFound           = errors.New("account not found")
)

// IsRetryable reports whether a failed call may succeed when resubmitted
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAccountAlreadyInitialized)
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrAccountAlreadyInitialized):
		return err
	case errors.Is(err, types.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, database.ErrAccountNotFound):
		return fmt.Errorf("%w: %w", ErrAccountNotFound, err)
	case errors.Is(err, database.ErrAccountAlreadyInUse):
		return fmt.Errorf("%w: %w", ErrAccountAlreadyInitialized, err)
	default:
		return err
	}
}
