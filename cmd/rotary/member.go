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

func memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage collection members",
	}
	cmd.AddCommand(memberAddCommand())
	cmd.AddCommand(memberShowCommand())
	return cmd
}

func memberAddCommand() *cobra.Command {
	var flags struct {
		admin      string
		collection string
		user       string
	}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user to a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := parseIdentity("admin", flags.admin)
			if err != nil {
				return err
			}
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			user, err := parseIdentity("user", flags.user)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				member, err := n.Ledger().AddUser(
					cmd.Context(),
					ledger.AddUserRequest{
						Admin:      admin,
						Collection: collection,
						User:       user,
					},
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, member)
			})
		},
	}
	cmd.Flags().StringVar(&flags.admin, "admin", "", "admin identity (hex)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().StringVar(&flags.user, "user", "", "user identity (hex)")
	return cmd
}

func memberShowCommand() *cobra.Command {
	var flags struct {
		collection string
		user       string
	}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a member of a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			user, err := parseIdentity("user", flags.user)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				member, err := n.Ledger().Member(collection, user)
				if err != nil {
					return err
				}
				return printJSON(cmd, member)
			})
		},
	}
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().StringVar(&flags.user, "user", "", "user identity (hex)")
	return cmd
}
