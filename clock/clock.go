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

// Package clock provides the ledger clock used to gate voting windows and
// execution.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current ledger time in unix seconds
type Clock interface {
	Now() int64
}

// System reads the host clock
type System struct{}

func (System) Now() int64 {
	return time.Now().Unix()
}

// Fixed is a settable clock for tests and simulations
type Fixed struct {
	mu  sync.RWMutex
	now int64
}

func NewFixed(now int64) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set moves the clock to an absolute time
func (f *Fixed) Set(now int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance moves the clock forward by delta seconds and returns the new time
func (f *Fixed) Advance(delta int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += delta
	return f.now
}
