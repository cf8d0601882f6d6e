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

	"github.com/blinklabs-io/kelpie"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func voteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Escrow tokens, or an NFT with --nft-mint, on a proposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			voter, err := addressFlag(cmd, "voter")
			if err != nil {
				return err
			}
			proposal, err := addressFlag(cmd, "proposal")
			if err != nil {
				return err
			}
			nftMint, err := optionalAddressFlag(cmd, "nft-mint")
			if err != nil {
				return err
			}
			directionName, _ := cmd.Flags().GetString("direction")
			direction, err := schema.ParseDirection(directionName)
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				var receipt solana.PublicKey
				var err error
				if nftMint.IsZero() {
					receipt, err = n.Client().Vote(ctx, voter, proposal, direction, amount)
				} else {
					receipt, err = n.Client().VoteNft(ctx, voter, proposal, nftMint, direction)
				}
				if err != nil {
					return err
				}
				state, err := n.Program().GetReceipt(receipt, nil)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"receipt":   receipt.String(),
					"index":     state.Index,
					"amount":    state.Amount,
					"mint":      state.Mint.String(),
					"direction": direction.String(),
				})
			})
		},
	}
	cmd.Flags().String("proposal", "", "proposal address")
	cmd.Flags().String("voter", "", "voter address")
	cmd.Flags().String("direction", "for", "for or against")
	cmd.Flags().Uint64("amount", 0, "token amount to escrow")
	cmd.Flags().String("nft-mint", "", "NFT to escrow instead of tokens")
	return cmd
}
