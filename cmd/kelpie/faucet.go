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

package main

import (
	"context"
	"errors"

	"github.com/blinklabs-io/kelpie"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/spf13/cobra"
)

func faucetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faucet",
		Short: "Credit tokens to an account for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := addressFlag(cmd, "owner")
			if err != nil {
				return err
			}
			mint, err := optionalAddressFlag(cmd, "mint")
			if err != nil {
				return err
			}
			if mint.IsZero() {
				mint = token.NativeMint
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			if amount == 0 {
				return errors.New("--amount must be positive")
			}
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				ledger := n.Program().Ledger()
				if err := ledger.Mint(nil, mint, owner, amount); err != nil {
					return err
				}
				balance, err := ledger.Balance(mint, owner, nil)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"owner":   owner.String(),
					"mint":    mint.String(),
					"balance": balance,
				})
			})
		},
	}
	cmd.Flags().String("owner", "", "account to credit")
	cmd.Flags().String("mint", "", "mint to credit, the native asset when empty")
	cmd.Flags().Uint64("amount", 0, "amount to credit")
	return cmd
}
