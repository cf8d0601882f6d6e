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

const DaoAccountName = "Dao"

// Dao is the root governance record of an organization
type Dao struct {
	Authority   solana.PublicKey
	Mint        solana.PublicKey
	Regime      Regime
	Supply      uint64
	IsNftVoting bool
	IsPublic    bool
	Metadata    [32]byte
	// Nonce counts proposals created under the DAO
	Nonce uint64
}

func (Dao) AccountName() string {
	return DaoAccountName
}
