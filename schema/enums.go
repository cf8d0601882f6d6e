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

package schema

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidEnum = errors.New("invalid enum value")

// Regime selects who may change a DAO's configuration
type Regime uint8

const (
	RegimeDictatorial Regime = iota
	RegimeDemocratic
	RegimeAutonomous
)

func (r Regime) Valid() bool {
	switch r {
	case RegimeDictatorial, RegimeDemocratic, RegimeAutonomous:
		return true
	default:
		return false
	}
}

func (r Regime) String() string {
	switch r {
	case RegimeDictatorial:
		return "dictatorial"
	case RegimeDemocratic:
		return "democratic"
	case RegimeAutonomous:
		return "autonomous"
	default:
		return fmt.Sprintf("regime(%d)", uint8(r))
	}
}

func ParseRegime(s string) (Regime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dictatorial":
		return RegimeDictatorial, nil
	case "democratic":
		return RegimeDemocratic, nil
	case "autonomous":
		return RegimeAutonomous, nil
	default:
		return 0, fmt.Errorf("%w: regime %q", ErrInvalidEnum, s)
	}
}

// ConsensusMechanism selects how voting power is held while a proposal is open
type ConsensusMechanism uint8

const (
	ConsensusMechanismStakedTokenCounter ConsensusMechanism = iota
	ConsensusMechanismLockedTokenCounter
)

func (c ConsensusMechanism) Valid() bool {
	switch c {
	case ConsensusMechanismStakedTokenCounter, ConsensusMechanismLockedTokenCounter:
		return true
	default:
		return false
	}
}

func (c ConsensusMechanism) String() string {
	switch c {
	case ConsensusMechanismStakedTokenCounter:
		return "staked"
	case ConsensusMechanismLockedTokenCounter:
		return "locked"
	default:
		return fmt.Sprintf("mechanism(%d)", uint8(c))
	}
}

func ParseConsensusMechanism(s string) (ConsensusMechanism, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "staked", "stakedtokencounter":
		return ConsensusMechanismStakedTokenCounter, nil
	case "locked", "lockedtokencounter":
		return ConsensusMechanismLockedTokenCounter, nil
	default:
		return 0, fmt.Errorf("%w: consensus mechanism %q", ErrInvalidEnum, s)
	}
}

// ConsensusQuorum is the fraction of supply a proposal needs in favor
type ConsensusQuorum uint8

const (
	ConsensusQuorumOneThird ConsensusQuorum = iota
	ConsensusQuorumHalf
	ConsensusQuorumTwoThird
)

func (q ConsensusQuorum) Valid() bool {
	switch q {
	case ConsensusQuorumOneThird, ConsensusQuorumHalf, ConsensusQuorumTwoThird:
		return true
	default:
		return false
	}
}

// Fraction returns the quorum as numerator and denominator
func (q ConsensusQuorum) Fraction() (uint64, uint64) {
	switch q {
	case ConsensusQuorumOneThird:
		return 1, 3
	case ConsensusQuorumHalf:
		return 1, 2
	case ConsensusQuorumTwoThird:
		return 2, 3
	default:
		// Unknown quorums require the full supply
		return 1, 1
	}
}

func (q ConsensusQuorum) String() string {
	switch q {
	case ConsensusQuorumOneThird:
		return "one-third"
	case ConsensusQuorumHalf:
		return "half"
	case ConsensusQuorumTwoThird:
		return "two-third"
	default:
		return fmt.Sprintf("quorum(%d)", uint8(q))
	}
}

func ParseConsensusQuorum(s string) (ConsensusQuorum, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one-third", "onethird", "1/3":
		return ConsensusQuorumOneThird, nil
	case "half", "1/2":
		return ConsensusQuorumHalf, nil
	case "two-third", "twothird", "2/3":
		return ConsensusQuorumTwoThird, nil
	default:
		return 0, fmt.Errorf("%w: consensus quorum %q", ErrInvalidEnum, s)
	}
}

// Direction is the side a vote is cast on
type Direction uint8

const (
	DirectionAgainst Direction = iota
	DirectionFor
)

func (d Direction) String() string {
	switch d {
	case DirectionAgainst:
		return "against"
	case DirectionFor:
		return "for"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "for", "yes":
		return DirectionFor, nil
	case "against", "no":
		return DirectionAgainst, nil
	default:
		return 0, fmt.Errorf("%w: direction %q", ErrInvalidEnum, s)
	}
}
