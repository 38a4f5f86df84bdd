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
	"errors"
	"time"

	"github.com/blinklabs-io/rotary"
	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/ledger"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("command requires a database (not available in in-memory mode)")

type collectionView struct {
	Collection *models.Collection `json:"collection"`
	Members    []*models.Member   `json:"members"`
	Multisig   *models.Multisig   `json:"multisig,omitempty"`
}

func collectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage collections",
	}
	cmd.AddCommand(collectionCreateCommand())
	cmd.AddCommand(collectionShowCommand())
	cmd.AddCommand(collectionListCommand())
	cmd.AddCommand(collectionHistoryCommand())
	cmd.AddCommand(collectionTransfersCommand())
	return cmd
}

func collectionCreateCommand() *cobra.Command {
	var flags struct {
		admin       string
		name        string
		duration    time.Duration
		period      time.Duration
		amount      uint64
		members     uint8
		penaltyRate uint8
	}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := parseIdentity("admin", flags.admin)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				coll, err := n.Ledger().CreateCollection(
					cmd.Context(),
					ledger.CreateCollectionRequest{
						Admin:           admin,
						Name:            flags.name,
						Duration:        int64(flags.duration / time.Second),
						Period:          int64(flags.period / time.Second),
						AmountPerPeriod: flags.amount,
						TotalMembers:    flags.members,
						PenaltyRate:     flags.penaltyRate,
					},
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, coll)
			})
		},
	}
	cmd.Flags().StringVar(&flags.admin, "admin", "", "admin identity (hex)")
	cmd.Flags().StringVar(&flags.name, "name", "", "collection name")
	cmd.Flags().DurationVar(&flags.duration, "duration", 0, "total cycle length")
	cmd.Flags().DurationVar(&flags.period, "period", 0, "time between contributions")
	cmd.Flags().Uint64Var(&flags.amount, "amount", 0, "contribution amount per period")
	cmd.Flags().Uint8Var(&flags.members, "members", 0, "maximum number of members")
	cmd.Flags().Uint8Var(&flags.penaltyRate, "penalty", 0, "early withdrawal penalty rate (percent)")
	return cmd
}

func collectionShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Show a collection with its members and multisig",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey("collection key", args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				ls := n.Ledger()
				coll, err := ls.Collection(key)
				if err != nil {
					return err
				}
				members, err := ls.Members(key)
				if err != nil {
					return err
				}
				ret := collectionView{
					Collection: coll,
					Members:    members,
				}
				multisig, err := ls.Multisig(key)
				switch {
				case err == nil:
					ret.Multisig = multisig
				case !errors.Is(err, ledger.ErrMultisigNotFound):
					return err
				}
				return printJSON(cmd, ret)
			})
		},
	}
	return cmd
}

func collectionListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(n *rotary.Node) error {
				return printJSON(cmd, n.Ledger().Collections())
			})
		},
	}
	return cmd
}

func collectionHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <key>",
		Short: "Show the transition journal of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey("collection key", args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				if n.Database() == nil {
					return errNoDatabase
				}
				if _, err := n.Ledger().Collection(key); err != nil {
					return err
				}
				journal, err := n.Database().Journal(key)
				if err != nil {
					return err
				}
				return printJSON(cmd, journal)
			})
		},
	}
	return cmd
}

func collectionTransfersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers <key>",
		Short: "Show the payouts issued by a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey("collection key", args[0])
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				if n.Database() == nil {
					return errNoDatabase
				}
				transfers, err := n.Database().Transfers(cmd.Context(), key)
				if err != nil {
					return err
				}
				return printJSON(cmd, transfers)
			})
		},
	}
	return cmd
}
