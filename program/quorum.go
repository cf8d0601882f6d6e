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
	"math/bits"

	"github.com/blinklabs-io/kelpie/schema"
)

// Passing reports whether a proposal's votes meet the quorum of the given
// supply. For power must exceed against power and reach supply * fraction,
// compared as for * den >= supply * num in 128 bits
func Passing(
	forPower uint64,
	againstPower uint64,
	supply uint64,
	quorum schema.ConsensusQuorum,
) bool {
	if forPower <= againstPower {
		return false
	}
	num, den := quorum.Fraction()
	lhsHi, lhsLo := bits.Mul64(forPower, den)
	rhsHi, rhsLo := bits.Mul64(supply, num)
	if lhsHi != rhsHi {
		return lhsHi > rhsHi
	}
	return lhsLo >= rhsLo
}

// ProposalPassing reports whether a proposal passes against its DAO supply
func ProposalPassing(dao *schema.Dao, proposal *schema.Proposal) bool {
	return Passing(
		proposal.VotingForPower,
		proposal.VotingAgainstPower,
		dao.Supply,
		proposal.ConsensusQuorum,
	)
}
