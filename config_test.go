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

package kelpie

import (
	"testing"
	"time"

	"github.com/blinklabs-io/kelpie/address"
	"github.com/blinklabs-io/kelpie/clock"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, address.MustProgramID(), cfg.programID)
	assert.Equal(t, 30*time.Second, cfg.shutdownTimeout)
	assert.Empty(t, cfg.dataDir)
	assert.NotNil(t, cfg.logger)
	assert.IsType(t, clock.System{}, cfg.clock)
}

func TestConfigOptions(t *testing.T) {
	id := solana.NewWallet().PublicKey()
	clk := clock.NewFixed(42)
	cfg := NewConfig(
		WithDatabasePath("/tmp/kelpie"),
		WithProgramID(id),
		WithClock(clk),
		WithBadgerCacheSizes(1, 2),
		WithTracing(true),
		WithTracingStdout(true),
		WithEventLogging(true),
		WithShutdownTimeout(time.Second),
	)
	assert.Equal(t, "/tmp/kelpie", cfg.dataDir)
	assert.Equal(t, id, cfg.programID)
	assert.Equal(t, clk, cfg.clock)
	assert.Equal(t, uint64(1), cfg.blockCacheSize)
	assert.Equal(t, uint64(2), cfg.indexCacheSize)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.True(t, cfg.logEvents)
	assert.Equal(t, time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opts []ConfigOptionFunc
	}{
		{"zero program", []ConfigOptionFunc{WithProgramID(solana.PublicKey{})}},
		{"stdout without tracing", []ConfigOptionFunc{WithTracingStdout(true)}},
		{"negative timeout", []ConfigOptionFunc{WithShutdownTimeout(-time.Second)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(NewConfig(tc.opts...))
			require.Error(t, err)
		})
	}
}
