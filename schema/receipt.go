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
	"github.com/gagliardetto/solana-go"
)

const ReceiptAccountName = "Receipt"

// Receipt records an escrowed vote until it is closed
type Receipt struct {
	Authority solana.PublicKey
	Proposal  solana.PublicKey
	Index     uint64
	Amount    uint64
	Mint      solana.PublicKey
}

func (Receipt) AccountName() string {
	return ReceiptAccountName
}

const ContentAccountName = "Content"

// Content is a per-authority pointer to off-ledger content
type Content struct {
	Authority     solana.PublicKey
	Discriminator [8]byte
	Metadata      [32]byte
}

func (Content) AccountName() string {
	return ContentAccountName
}
