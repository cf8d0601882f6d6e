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
	"github.com/spf13/cobra"
)

func executeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run the pending instructions of a passed proposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, err := addressFlag(cmd, "executor")
			if err != nil {
				return err
			}
			proposal, err := addressFlag(cmd, "proposal")
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetUint32("limit")
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				if err := n.Client().ExecuteProposal(ctx, executor, proposal, limit); err != nil {
					return err
				}
				return showProposal(cmd, n, proposal)
			})
		},
	}
	cmd.Flags().String("proposal", "", "proposal address")
	cmd.Flags().String("executor", "", "executor address")
	cmd.Flags().Uint32("limit", 0, "maximum instructions to run, 0 for all")
	return cmd
}

func closeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Refund and delete a receipt after voting ended",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			receipt, err := addressFlag(cmd, "receipt")
			if err != nil {
				return err
			}
			return withNode(cmd, func(ctx context.Context, n *kelpie.Node) error {
				return n.Client().Close(ctx, authority, receipt)
			})
		},
	}
	cmd.Flags().String("receipt", "", "receipt address")
	cmd.Flags().String("authority", "", "receipt owner address")
	return cmd
}
