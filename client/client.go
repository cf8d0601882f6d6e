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

// Package client is the caller-side surface over the governance program:
// address helpers with strict on-ledger verification, receipt index
// discovery, listings, and vote submission that retries on conflicts.
package client

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/kelpie/program"
	"github.com/gagliardetto/solana-go"
)

const (
	DefaultMaxRetries   = 8
	DefaultRetryBackoff = 10 * time.Millisecond
)

var (
	ErrNotInitialized    = errors.New("not initialized yet")
	ErrViolatedDao       = errors.New("violated DAO address")
	ErrViolatedIndex     = errors.New("violated index")
	ErrViolatedAuthority = errors.New("violated authority address")
	ErrViolatedProposal  = errors.New("violated proposal address")
)

type Client struct {
	program      *program.Program
	logger       *slog.Logger
	maxRetries   uint
	retryBackoff time.Duration
}

type ClientOptionFunc func(*Client)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMaxRetries bounds how often a conflicting call is resubmitted
func WithMaxRetries(retries uint) ClientOptionFunc {
	return func(c *Client) {
		c.maxRetries = retries
	}
}

// WithRetryBackoff sets the initial wait between resubmissions
func WithRetryBackoff(backoff time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.retryBackoff = backoff
	}
}

func New(prog *program.Program, opts ...ClientOptionFunc) *Client {
	c := &Client{
		program:      prog,
		maxRetries:   DefaultMaxRetries,
		retryBackoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c.logger = c.logger.With("component", "client")
	return c
}

func (c *Client) Program() *program.Program {
	return c.program
}

// ProgramID returns the address of the governance program
func (c *Client) ProgramID() solana.PublicKey {
	return c.program.ID()
}
