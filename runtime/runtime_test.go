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

package runtime_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProgram struct {
	id    solana.PublicKey
	calls int
	fn    func(ctx context.Context, inv *runtime.Invocation) error
}

func (p *testProgram) ID() solana.PublicKey {
	return p.id
}

func (p *testProgram) Process(ctx context.Context, inv *runtime.Invocation) error {
	p.calls++
	if p.fn != nil {
		return p.fn(ctx, inv)
	}
	return nil
}

func key(b byte) solana.PublicKey {
	var ret solana.PublicKey
	for i := range ret {
		ret[i] = b
	}
	return ret
}

func TestRegister(t *testing.T) {
	rt := runtime.New(nil)
	p := &testProgram{id: key(1)}
	require.NoError(t, rt.Register(p))
	err := rt.Register(&testProgram{id: key(1)})
	assert.ErrorIs(t, err, runtime.ErrProgramRegistered)
	got, err := rt.Program(key(1))
	require.NoError(t, err)
	assert.Same(t, p, got)
	_, err = rt.Program(key(2))
	assert.ErrorIs(t, err, runtime.ErrProgramNotFound)
}

func TestRegisterLogsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	rt := runtime.New(logger)
	require.NoError(t, rt.Register(&testProgram{id: key(1)}))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "registered program", rec["msg"])
	assert.Equal(t, "runtime", rec["component"])
	assert.Equal(t, key(1).String(), rec["program"])
}

func TestInvokeSignerCheck(t *testing.T) {
	rt := runtime.New(nil)
	p := &testProgram{id: key(1)}
	require.NoError(t, rt.Register(p))
	signer := key(7)
	ix := runtime.NewInstruction(
		p.id,
		[]*solana.AccountMeta{solana.Meta(signer).SIGNER().WRITE()},
		nil,
	)
	err := rt.Invoke(context.Background(), nil, ix, nil)
	require.ErrorIs(t, err, runtime.ErrMissingSignature)
	assert.Equal(t, 0, p.calls)
	require.NoError(
		t,
		rt.Invoke(context.Background(), nil, ix, []solana.PublicKey{signer}),
	)
	assert.Equal(t, 1, p.calls)
}

func TestInvokeUnknownProgram(t *testing.T) {
	rt := runtime.New(nil)
	ix := runtime.NewInstruction(key(9), nil, nil)
	err := rt.Invoke(context.Background(), nil, ix, nil)
	assert.ErrorIs(t, err, runtime.ErrProgramNotFound)
}

func TestInvokeSignedPDA(t *testing.T) {
	rt := runtime.New(nil)
	callerID := key(1)
	seeds := address.MasterSeeds(key(3))
	master, bump, err := address.Derive(callerID, seeds)
	require.NoError(t, err)
	callee := &testProgram{
		id: key(2),
		fn: func(_ context.Context, inv *runtime.Invocation) error {
			assert.Equal(t, 1, inv.Depth())
			assert.True(t, inv.IsSigner(master))
			return nil
		},
	}
	calleeIx := runtime.NewInstruction(
		callee.id,
		[]*solana.AccountMeta{solana.Meta(master).SIGNER()},
		nil,
	)
	var withoutSeeds error
	caller := &testProgram{
		id: callerID,
		fn: func(ctx context.Context, inv *runtime.Invocation) error {
			withoutSeeds = inv.Invoke(ctx, calleeIx)
			return inv.InvokeSigned(
				ctx,
				calleeIx,
				address.SignerSeeds(seeds, bump),
			)
		},
	}
	require.NoError(t, rt.Register(caller))
	require.NoError(t, rt.Register(callee))
	require.NoError(
		t,
		rt.Invoke(
			context.Background(),
			nil,
			runtime.NewInstruction(callerID, nil, nil),
			nil,
		),
	)
	assert.ErrorIs(t, withoutSeeds, runtime.ErrMissingSignature)
	assert.Equal(t, 1, callee.calls)
}

func TestInvokeSignedForeignSeeds(t *testing.T) {
	rt := runtime.New(nil)
	// an address derived under another program cannot be claimed
	seeds := address.MasterSeeds(key(3))
	foreign, bump, err := address.Derive(key(5), seeds)
	require.NoError(t, err)
	callee := &testProgram{id: key(2)}
	caller := &testProgram{
		id: key(1),
		fn: func(ctx context.Context, inv *runtime.Invocation) error {
			ix := runtime.NewInstruction(
				callee.id,
				[]*solana.AccountMeta{solana.Meta(foreign).SIGNER()},
				nil,
			)
			return inv.InvokeSigned(ctx, ix, address.SignerSeeds(seeds, bump))
		},
	}
	require.NoError(t, rt.Register(caller))
	require.NoError(t, rt.Register(callee))
	err = rt.Invoke(
		context.Background(),
		nil,
		runtime.NewInstruction(caller.id, nil, nil),
		nil,
	)
	assert.Error(t, err)
	assert.Equal(t, 0, callee.calls)
}

func TestInvokeForwardsSigners(t *testing.T) {
	rt := runtime.New(nil)
	user := key(8)
	callee := &testProgram{id: key(2)}
	caller := &testProgram{
		id: key(1),
		fn: func(ctx context.Context, inv *runtime.Invocation) error {
			return inv.Invoke(ctx, runtime.NewInstruction(
				callee.id,
				[]*solana.AccountMeta{solana.Meta(user).SIGNER()},
				nil,
			))
		},
	}
	require.NoError(t, rt.Register(caller))
	require.NoError(t, rt.Register(callee))
	ix := runtime.NewInstruction(
		caller.id,
		[]*solana.AccountMeta{solana.Meta(user).SIGNER()},
		nil,
	)
	require.NoError(
		t,
		rt.Invoke(context.Background(), nil, ix, []solana.PublicKey{user}),
	)
	assert.Equal(t, 1, callee.calls)
}

func TestInvokeIsolatedDropsCallerSigners(t *testing.T) {
	rt := runtime.New(nil)
	callerID := key(1)
	user := key(8)
	seeds := address.MasterSeeds(key(3))
	master, bump, err := address.Derive(callerID, seeds)
	require.NoError(t, err)
	callee := &testProgram{id: key(2)}
	var asUser, asMaster error
	caller := &testProgram{
		id: callerID,
		fn: func(ctx context.Context, inv *runtime.Invocation) error {
			signerSeeds := address.SignerSeeds(seeds, bump)
			asUser = inv.InvokeIsolated(ctx, runtime.NewInstruction(
				callee.id,
				[]*solana.AccountMeta{solana.Meta(user).SIGNER()},
				nil,
			), signerSeeds)
			asMaster = inv.InvokeIsolated(ctx, runtime.NewInstruction(
				callee.id,
				[]*solana.AccountMeta{solana.Meta(master).SIGNER()},
				nil,
			), signerSeeds)
			return nil
		},
	}
	require.NoError(t, rt.Register(caller))
	require.NoError(t, rt.Register(callee))
	ix := runtime.NewInstruction(
		caller.id,
		[]*solana.AccountMeta{solana.Meta(user).SIGNER()},
		nil,
	)
	require.NoError(
		t,
		rt.Invoke(context.Background(), nil, ix, []solana.PublicKey{user}),
	)
	assert.ErrorIs(t, asUser, runtime.ErrMissingSignature)
	assert.NoError(t, asMaster)
	assert.Equal(t, 1, callee.calls)
}

func TestInvokeMaxDepth(t *testing.T) {
	rt := runtime.New(nil)
	p := &testProgram{id: key(1)}
	p.fn = func(ctx context.Context, inv *runtime.Invocation) error {
		return inv.Invoke(ctx, runtime.NewInstruction(p.id, nil, nil))
	}
	require.NoError(t, rt.Register(p))
	err := rt.Invoke(
		context.Background(),
		nil,
		runtime.NewInstruction(p.id, nil, nil),
		nil,
	)
	assert.ErrorIs(t, err, runtime.ErrMaxDepth)
	assert.Equal(t, runtime.MaxInvokeDepth, p.calls)
}

func TestInvokeCanceledContext(t *testing.T) {
	rt := runtime.New(nil)
	p := &testProgram{id: key(1)}
	require.NoError(t, rt.Register(p))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := rt.Invoke(ctx, nil, runtime.NewInstruction(p.id, nil, nil), nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, p.calls)
}

func TestInstructionAccount(t *testing.T) {
	ix := runtime.NewInstruction(key(1), []*solana.AccountMeta{solana.Meta(key(2))}, nil)
	meta, err := ix.Account(0)
	require.NoError(t, err)
	assert.Equal(t, key(2), meta.PublicKey)
	_, err = ix.Account(1)
	assert.ErrorIs(t, err, runtime.ErrNotEnoughAccounts)
}
