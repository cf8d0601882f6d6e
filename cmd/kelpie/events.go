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
	"github.com/blinklabs-io/kelpie/client"
	"github.com/blinklabs-io/kelpie/event"
	"github.com/spf13/cobra"
)

func eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List persisted governance events",
		RunE: func(cmd *cobra.Command, args []string) error {
			dao, err := optionalAddressFlag(cmd, "dao")
			if err != nil {
				return err
			}
			subject, err := optionalAddressFlag(cmd, "subject")
			if err != nil {
				return err
			}
			eventType, _ := cmd.Flags().GetString("type")
			after, _ := cmd.Flags().GetUint("after")
			limit, _ := cmd.Flags().GetInt("limit")
			return withNode(cmd, func(_ context.Context, n *kelpie.Node) error {
				events, err := n.Client().ListEvents(client.EventFilter{
					Type:    event.EventType(eventType),
					Dao:     dao,
					Subject: subject,
					AfterID: after,
					Limit:   limit,
				})
				if err != nil {
					return err
				}
				views := make([]eventView, 0, len(events))
				for _, evt := range events {
					views = append(views, newEventView(evt))
				}
				return printJSON(cmd, views)
			})
		},
	}
	cmd.Flags().String("dao", "", "only events of this DAO")
	cmd.Flags().String("subject", "", "only events about this account")
	cmd.Flags().String("type", "", "only events of this type")
	cmd.Flags().Uint("after", 0, "only events after this id")
	cmd.Flags().Int("limit", 0, "maximum events to list, 0 for all")
	return cmd
}
