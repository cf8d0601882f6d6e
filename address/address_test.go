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

package address_test

import (
	"testing"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testProgramID = address.MustProgramID()
	testDao       = solana.MustPublicKeyFromBase58("4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi")
	testVoter     = solana.MustPublicKeyFromBase58("8qbHbw2BbbTHBW1sbeqakYXVKRQM8Ne7pLK7m6CVfeR")
)

func TestDeriveDeterministic(t *testing.T) {
	addr1, bump1, err := address.DeriveProposal(testProgramID, testDao, 3)
	require.NoError(t, err)
	addr2, bump2, err := address.DeriveProposal(testProgramID, testDao, 3)
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
}

func TestDeriveCanonicalBump(t *testing.T) {
	seeds := address.MasterSeeds(testDao)
	addr, bump, err := address.DeriveMaster(testProgramID, testDao)
	require.NoError(t, err)
	// The canonical bump reproduces the address
	check, err := solana.CreateProgramAddress(
		append(seeds, []byte{bump}),
		testProgramID,
	)
	require.NoError(t, err)
	assert.Equal(t, addr, check)
	// Every higher bump lands on the curve
	for b := int(bump) + 1; b <= 255; b++ {
		_, err := solana.CreateProgramAddress(
			append(address.MasterSeeds(testDao), []byte{byte(b)}),
			testProgramID,
		)
		assert.Error(t, err, "bump %d", b)
	}
}

func TestDeriveNoCollisions(t *testing.T) {
	proposal, _, err := address.DeriveProposal(testProgramID, testDao, 0)
	require.NoError(t, err)
	seen := map[solana.PublicKey]string{}
	record := func(name string, addr solana.PublicKey, err error) {
		t.Helper()
		require.NoError(t, err)
		if prev, ok := seen[addr]; ok {
			t.Fatalf("address collision between %s and %s", prev, name)
		}
		seen[addr] = name
	}
	for i := range uint64(5) {
		addr, _, err := address.DeriveProposal(testProgramID, testDao, i)
		record("proposal", addr, err)
		addr, _, err = address.DeriveReceipt(testProgramID, proposal, testVoter, i)
		record("receipt", addr, err)
		addr, _, err = address.DeriveInstruction(testProgramID, proposal, uint32(i)) //nolint:gosec
		record("instruction", addr, err)
	}
	addr, _, err := address.DeriveTreasurer(testProgramID, proposal)
	record("treasurer", addr, err)
	addr, _, err = address.DeriveMaster(testProgramID, testDao)
	record("master", addr, err)
	addr, _, err = address.DeriveContent(testProgramID, testVoter, [8]byte{1, 2, 3, 4, 5, 6, 7, 8})
	record("content", addr, err)
	// A different program yields different addresses
	other, _, err := address.DeriveMaster(solana.SystemProgramID, testDao)
	record("other program master", other, err)
}

func TestParseAddress(t *testing.T) {
	pk, err := address.ParseAddress(" " + testDao.String() + " ")
	require.NoError(t, err)
	assert.Equal(t, testDao, pk)
	_, err = address.ParseAddress("not-an-address")
	require.ErrorIs(t, err, address.ErrInvalidAddress)
}

func TestParseIndex(t *testing.T) {
	testDefs := []struct {
		input    string
		expected uint64
		valid    bool
	}{
		{input: "0", expected: 0, valid: true},
		{input: "42", expected: 42, valid: true},
		{input: "18446744073709551615", expected: 18446744073709551615, valid: true},
		{input: "-1", valid: false},
		{input: "abc", valid: false},
		{input: "", valid: false},
	}
	for _, testDef := range testDefs {
		got, err := address.ParseIndex(testDef.input)
		if !testDef.valid {
			require.ErrorIs(t, err, address.ErrInvalidIndex, "input %q", testDef.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, testDef.expected, got)
	}
}

func TestParseFixedLengths(t *testing.T) {
	meta := make([]byte, 32)
	meta[31] = 7
	got, err := address.ParseMetadata(base58.Encode(meta))
	require.NoError(t, err)
	assert.Equal(t, byte(7), got[31])
	_, err = address.ParseMetadata(base58.Encode(meta[:31]))
	require.ErrorIs(t, err, address.ErrInvalidMetadata)

	disc, err := address.ParseDiscriminator(base58.Encode([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, err)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, disc)
	_, err = address.ParseDiscriminator(base58.Encode([]byte{1, 2, 3}))
	require.ErrorIs(t, err, address.ErrInvalidDiscriminator)
	_, err = address.ParseDiscriminator("0OIl")
	require.ErrorIs(t, err, address.ErrInvalidDiscriminator)
}

func TestSignerSeeds(t *testing.T) {
	seeds := address.TreasurerSeeds(testDao)
	addr, bump, err := address.DeriveTreasurer(testProgramID, testDao)
	require.NoError(t, err)
	signer := address.SignerSeeds(seeds, bump)
	require.Len(t, signer, len(seeds)+1)
	got, err := solana.CreateProgramAddress(signer, testProgramID)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	// the input slice is not modified
	assert.Len(t, seeds, 2)
}
