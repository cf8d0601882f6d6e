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

package schema_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	var ret solana.PublicKey
	copy(ret[:], bytes.Repeat([]byte{b}, 32))
	return ret
}

func TestEncodedSizes(t *testing.T) {
	testDefs := []struct {
		acct schema.Account
		size int
	}{
		{acct: schema.Dao{}, size: 123},
		{acct: schema.Proposal{}, size: 203},
		{acct: schema.Receipt{}, size: 120},
		{acct: schema.Content{}, size: 80},
		// proposal 32, index 4, program 32, data len 4, accounts len 4
		{acct: schema.ProposalInstruction{}, size: 8 + 76},
		{
			acct: schema.ProposalInstruction{
				Data:     []byte{1, 2, 3},
				Accounts: make([]schema.InvokedAccount, 2),
			},
			size: 8 + 76 + 3 + 2*35,
		},
	}
	for _, testDef := range testDefs {
		data, err := schema.Encode(testDef.acct)
		require.NoError(t, err)
		assert.Len(t, data, testDef.size, testDef.acct.AccountName())
	}
}

func TestDaoLayout(t *testing.T) {
	dao := schema.Dao{
		Authority:   key(1),
		Mint:        key(2),
		Regime:      schema.RegimeAutonomous,
		Supply:      0x0102030405060708,
		IsNftVoting: true,
		IsPublic:    false,
		Metadata:    [32]byte{9},
		Nonce:       5,
	}
	data, err := schema.Encode(dao)
	require.NoError(t, err)
	disc := sha256.Sum256([]byte("account:Dao"))
	assert.Equal(t, disc[:8], data[:8])
	assert.Equal(t, key(1).Bytes(), data[8:40])
	assert.Equal(t, key(2).Bytes(), data[40:72])
	assert.Equal(t, byte(2), data[72])
	assert.Equal(t, uint64(0x0102030405060708), binary.LittleEndian.Uint64(data[73:81]))
	assert.Equal(t, byte(1), data[81])
	assert.Equal(t, byte(0), data[82])
	assert.Equal(t, byte(9), data[83])
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(data[115:123]))

	var decoded schema.Dao
	require.NoError(t, schema.Decode(data, &decoded))
	assert.Equal(t, dao, decoded)
}

func TestProposalLayout(t *testing.T) {
	proposal := schema.Proposal{
		Dao:              key(1),
		Index:            7,
		ConsensusQuorum:  schema.ConsensusQuorumTwoThird,
		StartDate:        -1,
		EndDate:          1700000000,
		VotingForPower:   80,
		TotalInstruction: 3,
		TotalExecuted:    1,
		Tax:              11,
		TaxmanAddress:    key(4),
		Revenue:          12,
	}
	data, err := schema.Encode(proposal)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(data[40:48]))
	assert.Equal(t, byte(2), data[49])
	assert.Equal(t, int64(-1), int64(binary.LittleEndian.Uint64(data[50:58]))) //nolint:gosec
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[82:86]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[86:90]))
	assert.Equal(t, uint64(11), binary.LittleEndian.Uint64(data[123:131]))
	assert.Equal(t, key(4).Bytes(), data[131:163])

	var decoded schema.Proposal
	require.NoError(t, schema.Decode(data, &decoded))
	assert.Equal(t, proposal, decoded)
}

func TestInstructionLayout(t *testing.T) {
	ix := schema.ProposalInstruction{
		Proposal:       key(1),
		Index:          2,
		InvokedProgram: key(3),
		Data:           []byte{0xaa, 0xbb},
		Accounts: []schema.InvokedAccount{
			{Pubkey: key(5), IsSigner: true, IsWritable: false, IsMaster: true},
		},
	}
	data, err := schema.Encode(ix)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[40:44]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[76:80]))
	assert.Equal(t, []byte{0xaa, 0xbb}, data[80:82])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[82:86]))
	assert.Equal(t, key(5).Bytes(), data[86:118])
	assert.Equal(t, []byte{1, 0, 1}, data[118:121])

	var decoded schema.ProposalInstruction
	require.NoError(t, schema.Decode(data, &decoded))
	assert.Equal(t, ix, decoded)
}

func TestDecodeErrors(t *testing.T) {
	data, err := schema.Encode(schema.Receipt{Amount: 1})
	require.NoError(t, err)
	var dao schema.Dao
	require.ErrorIs(t, schema.Decode(data, &dao), schema.ErrAccountDiscriminator)
	var receipt schema.Receipt
	require.ErrorIs(t, schema.Decode(data[:4], &receipt), schema.ErrAccountTooShort)
	require.ErrorIs(t, schema.Decode(append(data, 0), &receipt), schema.ErrAccountTrailingData)
	require.Error(t, schema.Decode(data[:50], &receipt))
}

func TestKindOf(t *testing.T) {
	data, err := schema.Encode(schema.Content{})
	require.NoError(t, err)
	assert.Equal(t, schema.ContentAccountName, schema.KindOf(data))
	assert.Empty(t, schema.KindOf([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Empty(t, schema.KindOf(nil))
}

func TestEnums(t *testing.T) {
	for _, regime := range []schema.Regime{
		schema.RegimeDictatorial,
		schema.RegimeDemocratic,
		schema.RegimeAutonomous,
	} {
		parsed, err := schema.ParseRegime(regime.String())
		require.NoError(t, err)
		assert.Equal(t, regime, parsed)
		assert.True(t, regime.Valid())
	}
	assert.False(t, schema.Regime(3).Valid())
	_, err := schema.ParseRegime("anarchy")
	require.ErrorIs(t, err, schema.ErrInvalidEnum)

	testFractions := map[schema.ConsensusQuorum][2]uint64{
		schema.ConsensusQuorumOneThird: {1, 3},
		schema.ConsensusQuorumHalf:     {1, 2},
		schema.ConsensusQuorumTwoThird: {2, 3},
	}
	for quorum, expected := range testFractions {
		num, den := quorum.Fraction()
		assert.Equal(t, expected, [2]uint64{num, den})
		parsed, err := schema.ParseConsensusQuorum(quorum.String())
		require.NoError(t, err)
		assert.Equal(t, quorum, parsed)
	}
	dir, err := schema.ParseDirection("for")
	require.NoError(t, err)
	assert.Equal(t, schema.DirectionFor, dir)
	mech, err := schema.ParseConsensusMechanism("locked")
	require.NoError(t, err)
	assert.Equal(t, schema.ConsensusMechanismLockedTokenCounter, mech)
}
