// Copyright 2026 Blink Labs Software
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
	"github.com/blinklabs-io/rotary"
	"github.com/blinklabs-io/rotary/ledger"
	"github.com/spf13/cobra"
)

func payCommand() *cobra.Command {
	var flags struct {
		user       string
		collection string
		amount     uint64
	}
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Contribute one period's amount to a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := parseIdentity("user", flags.user)
			if err != nil {
				return err
			}
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				member, err := n.Ledger().Pay(
					cmd.Context(),
					ledger.PayRequest{
						User:       user,
						Collection: collection,
						Amount:     flags.amount,
					},
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, member)
			})
		},
	}
	cmd.Flags().StringVar(&flags.user, "user", "", "paying user identity (hex)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().Uint64Var(&flags.amount, "amount", 0, "payment amount")
	return cmd
}
