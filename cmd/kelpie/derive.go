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
	"encoding/hex"
	"fmt"

	"github.com/blinklabs-io/kelpie"
	"github.com/blinklabs-io/kelpie/address"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func deriveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Compute program account addresses",
	}
	cmd.PersistentFlags().Bool("strict", false, "require the account to exist and match")
	cmd.AddCommand(
		deriveProposalCommand(),
		deriveReceiptCommand(),
		deriveSimpleCommand("master", "dao", func(n *kelpie.Node, key solana.PublicKey) (solana.PublicKey, error) {
			return n.Client().DeriveMasterAddress(key)
		}),
		deriveSimpleCommand("treasurer", "proposal", func(n *kelpie.Node, key solana.PublicKey) (solana.PublicKey, error) {
			return n.Client().DeriveTreasurerAddress(key)
		}),
		deriveContentCommand(),
	)
	return cmd
}

func printAddress(cmd *cobra.Command, addr solana.PublicKey) error {
	return printJSON(cmd, map[string]string{"address": addr.String()})
}

func deriveProposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Address of a proposal by DAO and index",
		RunE: func(cmd *cobra.Command, args []string) error {
			dao, err := addressFlag(cmd, "dao")
			if err != nil {
				return err
			}
			index, _ := cmd.Flags().GetUint64("index")
			strict, _ := cmd.Flags().GetBool("strict")
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				addr, err := n.Client().DeriveProposalAddress(dao, index, strict)
				if err != nil {
					return err
				}
				return printAddress(cmd, addr)
			})
		},
	}
	cmd.Flags().String("dao", "", "DAO address")
	cmd.Flags().Uint64("index", 0, "proposal index")
	return cmd
}

func deriveReceiptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Address of a vote receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			proposal, err := addressFlag(cmd, "proposal")
			if err != nil {
				return err
			}
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			index, _ := cmd.Flags().GetUint64("index")
			next, _ := cmd.Flags().GetBool("next")
			strict, _ := cmd.Flags().GetBool("strict")
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				c := n.Client()
				if next {
					found, err := c.FindAvailableReceiptIndex(proposal, authority)
					if err != nil {
						return err
					}
					index = found
					strict = false
				}
				addr, err := c.DeriveReceiptAddress(proposal, authority, index, strict)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]any{
					"address": addr.String(),
					"index":   index,
				})
			})
		},
	}
	cmd.Flags().String("proposal", "", "proposal address")
	cmd.Flags().String("authority", "", "voter address")
	cmd.Flags().Uint64("index", 0, "receipt index")
	cmd.Flags().Bool("next", false, "use the first unused receipt index")
	return cmd
}

func deriveSimpleCommand(
	name, input string,
	derive func(*kelpie.Node, solana.PublicKey) (solana.PublicKey, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Address of the %s of a %s", name, input),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := addressFlag(cmd, input)
			if err != nil {
				return err
			}
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				addr, err := derive(n, key)
				if err != nil {
					return err
				}
				return printAddress(cmd, addr)
			})
		},
	}
	cmd.Flags().String(input, "", input+" address")
	return cmd
}

func deriveContentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Address of a content record by authority and discriminator",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			discHex, _ := cmd.Flags().GetString("discriminator")
			raw, err := hex.DecodeString(discHex)
			if err != nil || len(raw) != address.DiscriminatorLength {
				return fmt.Errorf(
					"--discriminator must be %d hex-encoded bytes",
					address.DiscriminatorLength,
				)
			}
			var disc [address.DiscriminatorLength]byte
			copy(disc[:], raw)
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				addr, err := n.Client().DeriveContentAddress(authority, disc)
				if err != nil {
					return err
				}
				return printAddress(cmd, addr)
			})
		},
	}
	cmd.Flags().String("authority", "", "content authority address")
	cmd.Flags().String("discriminator", "", "hex-encoded content discriminator")
	return cmd
}
