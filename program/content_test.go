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

package program_test

import (
	"testing"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeContent(t *testing.T) {
	f := newFixture(t)
	args := program.InitializeContentArgs{
		Discriminator: [8]byte{'p', 'r', 'o', 'f', 'i', 'l', 'e'},
		Metadata:      [32]byte{1, 2, 3},
	}
	content, err := f.prog.InitializeContent(f.ctx, f.authority, args)
	require.NoError(t, err)
	expected, _, err := address.DeriveContent(f.prog.ID(), f.authority, args.Discriminator)
	require.NoError(t, err)
	assert.Equal(t, expected, content)

	state, err := f.prog.GetContent(content, nil)
	require.NoError(t, err)
	assert.Equal(t, f.authority, state.Authority)
	assert.Equal(t, args.Metadata, state.Metadata)

	_, err = f.prog.InitializeContent(f.ctx, f.authority, args)
	assert.ErrorIs(t, err, program.ErrAccountAlreadyInitialized)

	// the same discriminator under another authority is a separate record
	other, err := f.prog.InitializeContent(f.ctx, newKey(), args)
	require.NoError(t, err)
	assert.NotEqual(t, content, other)
}

func TestInitializeContentWrongAddress(t *testing.T) {
	f := newFixture(t)
	ix, err := program.NewInitializeContentInstruction(
		f.prog.ID(),
		newKey(),
		f.authority,
		program.InitializeContentArgs{},
	)
	require.NoError(t, err)
	err = f.prog.Submit(f.ctx, ix, f.authority)
	assert.ErrorIs(t, err, program.ErrInvalidAddress)
}
