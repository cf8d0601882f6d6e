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
	"github.com/blinklabs-io/kelpie/program"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func daoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dao",
		Short: "Create, inspect and reconfigure DAOs",
	}
	cmd.AddCommand(
		daoCreateCommand(),
		daoShowCommand(),
		daoListCommand(),
		daoUpdateSupplyCommand(),
		daoUpdateRegimeCommand(),
		daoUpdateMetadataCommand(),
		daoTransferAuthorityCommand(),
	)
	return cmd
}

func showDao(cmd *cobra.Command, n *kelpie.Node, dao solana.PublicKey) error {
	state, err := n.Program().GetDao(dao, nil)
	if err != nil {
		return err
	}
	master, err := n.Client().DeriveMasterAddress(dao)
	if err != nil {
		return err
	}
	return printJSON(cmd, newDaoView(dao, master, state))
}

func daoCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Initialize a DAO at a new address",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			mint, err := addressFlag(cmd, "mint")
			if err != nil {
				return err
			}
			metadata, err := metadataFlag(cmd)
			if err != nil {
				return err
			}
			regimeName, _ := cmd.Flags().GetString("regime")
			regime, err := schema.ParseRegime(regimeName)
			if err != nil {
				return err
			}
			supply, _ := cmd.Flags().GetUint64("supply")
			nft, _ := cmd.Flags().GetBool("nft")
			public, _ := cmd.Flags().GetBool("public")
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				dao, err := n.Client().InitializeDao(ctx, authority, program.InitializeDaoArgs{
					Mint:        mint,
					Supply:      supply,
					Metadata:    metadata,
					Regime:      regime,
					IsNftVoting: nft,
					IsPublic:    public,
				})
				if err != nil {
					return err
				}
				return showDao(cmd, n, dao)
			})
		},
	}
	cmd.Flags().String("authority", "", "DAO authority address")
	cmd.Flags().String("mint", "", "voting token mint, or NFT collection with --nft")
	cmd.Flags().Uint64("supply", 0, "total voting supply")
	cmd.Flags().String("regime", "dictatorial", "dictatorial, democratic or autonomous")
	cmd.Flags().String("metadata", "", "base58 encoded 32-byte metadata")
	cmd.Flags().Bool("nft", false, "vote with NFTs of the --mint collection")
	cmd.Flags().Bool("public", false, "allow anyone to create proposals")
	return cmd
}

func daoShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <dao>",
		Short: "Print a DAO",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dao, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				return showDao(cmd, n, dao)
			})
		},
	}
}

func daoListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every DAO",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				daos, err := n.Client().ListDaos()
				if err != nil {
					return err
				}
				views := make([]daoView, 0, len(daos))
				for _, entry := range daos {
					views = append(views, newDaoView(entry.Address, solana.PublicKey{}, entry.Dao))
				}
				return printJSON(cmd, views)
			})
		},
	}
}

// daoUpdateCommand builds a lifecycle subcommand signed by --caller
func daoUpdateCommand(
	use, short string,
	setup func(*cobra.Command),
	run func(ctx context.Context, cmd *cobra.Command, n *kelpie.Node, caller, dao solana.PublicKey) error,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := addressFlag(cmd, "caller")
			if err != nil {
				return err
			}
			dao, err := addressFlag(cmd, "dao")
			if err != nil {
				return err
			}
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				if err := run(ctx, cmd, n, caller, dao); err != nil {
					return err
				}
				return showDao(cmd, n, dao)
			})
		},
	}
	cmd.Flags().String("dao", "", "DAO address")
	cmd.Flags().String("caller", "", "signing authority address")
	setup(cmd)
	return cmd
}

func daoUpdateSupplyCommand() *cobra.Command {
	return daoUpdateCommand(
		"update-supply",
		"Change the voting supply of a DAO",
		func(cmd *cobra.Command) {
			cmd.Flags().Uint64("supply", 0, "new voting supply")
		},
		func(ctx context.Context, cmd *cobra.Command, n *kelpie.Node, caller, dao solana.PublicKey) error {
			supply, _ := cmd.Flags().GetUint64("supply")
			return n.Program().UpdateSupply(ctx, caller, dao, supply)
		},
	)
}

func daoUpdateRegimeCommand() *cobra.Command {
	return daoUpdateCommand(
		"update-regime",
		"Change the regime of a DAO",
		func(cmd *cobra.Command) {
			cmd.Flags().String("regime", "", "dictatorial, democratic or autonomous")
		},
		func(ctx context.Context, cmd *cobra.Command, n *kelpie.Node, caller, dao solana.PublicKey) error {
			name, _ := cmd.Flags().GetString("regime")
			regime, err := schema.ParseRegime(name)
			if err != nil {
				return err
			}
			return n.Program().UpdateRegime(ctx, caller, dao, regime)
		},
	)
}

func daoUpdateMetadataCommand() *cobra.Command {
	return daoUpdateCommand(
		"update-metadata",
		"Change the metadata of a DAO",
		func(cmd *cobra.Command) {
			cmd.Flags().String("metadata", "", "base58 encoded 32-byte metadata")
		},
		func(ctx context.Context, cmd *cobra.Command, n *kelpie.Node, caller, dao solana.PublicKey) error {
			metadata, err := metadataFlag(cmd)
			if err != nil {
				return err
			}
			return n.Program().UpdateMetadata(ctx, caller, dao, metadata)
		},
	)
}

func daoTransferAuthorityCommand() *cobra.Command {
	return daoUpdateCommand(
		"transfer-authority",
		"Hand a DAO to a new authority",
		func(cmd *cobra.Command) {
			cmd.Flags().String("new-authority", "", "new authority address")
		},
		func(ctx context.Context, cmd *cobra.Command, n *kelpie.Node, caller, dao solana.PublicKey) error {
			newAuthority, err := addressFlag(cmd, "new-authority")
			if err != nil {
				return err
			}
			return n.Program().TransferAuthority(ctx, caller, dao, newAuthority)
		},
	)
}
