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
	"time"

	"github.com/blinklabs-io/kelpie"
	"github.com/blinklabs-io/kelpie/program"
	"github.com/blinklabs-io/kelpie/runtime"
	"github.com/blinklabs-io/kelpie/schema"
	"github.com/blinklabs-io/kelpie/token"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
)

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create proposals and attach instructions",
	}
	cmd.AddCommand(
		proposalCreateCommand(),
		proposalShowCommand(),
		proposalListCommand(),
		proposalAddTransferCommand(),
		proposalAddUpdateSupplyCommand(),
	)
	return cmd
}

func proposalCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the next proposal of a DAO",
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := addressFlag(cmd, "caller")
			if err != nil {
				return err
			}
			dao, err := addressFlag(cmd, "dao")
			if err != nil {
				return err
			}
			metadata, err := metadataFlag(cmd)
			if err != nil {
				return err
			}
			quorumName, _ := cmd.Flags().GetString("quorum")
			quorum, err := schema.ParseConsensusQuorum(quorumName)
			if err != nil {
				return err
			}
			mechanismName, _ := cmd.Flags().GetString("mechanism")
			mechanism, err := schema.ParseConsensusMechanism(mechanismName)
			if err != nil {
				return err
			}
			start, _ := cmd.Flags().GetDuration("start-in")
			duration, _ := cmd.Flags().GetDuration("duration")
			tax, _ := cmd.Flags().GetUint64("tax")
			revenue, _ := cmd.Flags().GetUint64("revenue")
			taxman, err := optionalAddressFlag(cmd, "taxman")
			if err != nil {
				return err
			}
			revenueman, err := optionalAddressFlag(cmd, "revenueman")
			if err != nil {
				return err
			}
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				startDate := n.Program().Clock().Now() + int64(start/time.Second)
				proposal, err := n.Client().InitializeProposal(ctx, caller, dao, program.InitializeProposalArgs{
					ConsensusMechanism: mechanism,
					ConsensusQuorum:    quorum,
					StartDate:          startDate,
					EndDate:            startDate + int64(duration/time.Second),
					Metadata:           metadata,
					Tax:                tax,
					TaxmanAddress:      taxman,
					Revenue:            revenue,
					RevenuemanAddress:  revenueman,
				})
				if err != nil {
					return err
				}
				return showProposal(cmd, n, proposal)
			})
		},
	}
	cmd.Flags().String("dao", "", "DAO address")
	cmd.Flags().String("caller", "", "proposer address")
	cmd.Flags().String("quorum", "half", "one-third, half or two-third")
	cmd.Flags().String("mechanism", "staked", "consensus mechanism")
	cmd.Flags().Duration("start-in", time.Minute, "delay until voting opens")
	cmd.Flags().Duration("duration", 24*time.Hour, "length of the voting window")
	cmd.Flags().String("metadata", "", "base58 encoded 32-byte metadata")
	cmd.Flags().Uint64("tax", 0, "native fee per vote paid to --taxman")
	cmd.Flags().String("taxman", "", "tax receiver address")
	cmd.Flags().Uint64("revenue", 0, "native fee per vote paid to --revenueman")
	cmd.Flags().String("revenueman", "", "revenue receiver address")
	return cmd
}

type instructionView struct {
	Index          uint32   `json:"index"`
	InvokedProgram string   `json:"invokedProgram"`
	Data           string   `json:"data"`
	Accounts       []string `json:"accounts"`
}

func showProposal(cmd *cobra.Command, n *kelpie.Node, proposal solana.PublicKey) error {
	state, err := n.Program().GetProposal(proposal, nil)
	if err != nil {
		return err
	}
	instructions := make([]instructionView, 0, state.TotalInstruction)
	for i := range state.TotalInstruction {
		ins, err := n.Program().GetProposalInstruction(proposal, i, nil)
		if err != nil {
			return err
		}
		view := instructionView{
			Index:          ins.Index,
			InvokedProgram: ins.InvokedProgram.String(),
			Data:           base58.Encode(ins.Data),
		}
		for _, acct := range ins.Accounts {
			desc := acct.Pubkey.String()
			if acct.IsMaster {
				desc += " (master)"
			}
			view.Accounts = append(view.Accounts, desc)
		}
		instructions = append(instructions, view)
	}
	return printJSON(cmd, struct {
		proposalView
		Instructions []instructionView `json:"instructions"`
	}{newProposalView(proposal, state), instructions})
}

func proposalShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <proposal>",
		Short: "Print a proposal and its instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposal, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				return showProposal(cmd, n, proposal)
			})
		},
	}
}

func proposalListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the proposals of a DAO",
		RunE: func(cmd *cobra.Command, args []string) error {
			dao, err := addressFlag(cmd, "dao")
			if err != nil {
				return err
			}
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				proposals, err := n.Client().ListProposals(dao)
				if err != nil {
					return err
				}
				views := make([]proposalView, 0, len(proposals))
				for _, entry := range proposals {
					views = append(views, newProposalView(entry.Address, entry.Proposal))
				}
				return printJSON(cmd, views)
			})
		},
	}
	cmd.Flags().String("dao", "", "DAO address")
	return cmd
}

// attachCommand builds a subcommand attaching the instruction returned by
// build to --proposal. build receives the DAO master address
func attachCommand(
	use, short string,
	setup func(*cobra.Command),
	build func(cmd *cobra.Command, n *kelpie.Node, dao, master solana.PublicKey) (*runtime.Instruction, error),
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := addressFlag(cmd, "caller")
			if err != nil {
				return err
			}
			proposal, err := addressFlag(cmd, "proposal")
			if err != nil {
				return err
			}
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				state, err := n.Program().GetProposal(proposal, nil)
				if err != nil {
					return err
				}
				master, err := n.Client().DeriveMasterAddress(state.Dao)
				if err != nil {
					return err
				}
				ix, err := build(cmd, n, state.Dao, master)
				if err != nil {
					return err
				}
				_, err = n.Client().InitializeProposalInstruction(
					ctx,
					caller,
					proposal,
					program.InstructionArgsFromRuntime(ix, master),
				)
				if err != nil {
					return err
				}
				return showProposal(cmd, n, proposal)
			})
		},
	}
	cmd.Flags().String("proposal", "", "proposal address")
	cmd.Flags().String("caller", "", "signing authority address")
	setup(cmd)
	return cmd
}

func proposalAddTransferCommand() *cobra.Command {
	return attachCommand(
		"add-transfer",
		"Attach a transfer out of the DAO master",
		func(cmd *cobra.Command) {
			cmd.Flags().String("mint", "", "token mint, native asset when empty")
			cmd.Flags().String("to", "", "recipient address")
			cmd.Flags().Uint64("amount", 0, "amount to transfer")
		},
		func(cmd *cobra.Command, _ *kelpie.Node, _, master solana.PublicKey) (*runtime.Instruction, error) {
			to, err := addressFlag(cmd, "to")
			if err != nil {
				return nil, err
			}
			mint, err := optionalAddressFlag(cmd, "mint")
			if err != nil {
				return nil, err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			if amount == 0 {
				return nil, errors.New("--amount must be positive")
			}
			if mint.IsZero() || mint.Equals(token.NativeMint) {
				return token.NewNativeTransferInstruction(master, to, amount)
			}
			return token.NewTransferInstruction(mint, master, to, amount), nil
		},
	)
}

func proposalAddUpdateSupplyCommand() *cobra.Command {
	return attachCommand(
		"add-update-supply",
		"Attach a supply change signed by the DAO master",
		func(cmd *cobra.Command) {
			cmd.Flags().Uint64("supply", 0, "new voting supply")
		},
		func(cmd *cobra.Command, n *kelpie.Node, dao, master solana.PublicKey) (*runtime.Instruction, error) {
			supply, _ := cmd.Flags().GetUint64("supply")
			return program.NewUpdateSupplyInstruction(n.Program().ID(), dao, master, supply)
		},
	)
}
