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
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/spf13/cobra"
)

func multisigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multisig",
		Short: "Manage the governance committee of a collection",
	}
	cmd.AddCommand(multisigCreateCommand())
	cmd.AddCommand(multisigShowCommand())
	return cmd
}

func multisigCreateCommand() *cobra.Command {
	var flags struct {
		admin      string
		collection string
		signers    []string
		threshold  uint32
	}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the multisig committee for a collection",
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
			signers := make([]lcommon.Identity, 0, len(flags.signers))
			for _, s := range flags.signers {
				signer, err := parseIdentity("signer", s)
				if err != nil {
					return err
				}
				signers = append(signers, signer)
			}
			return withNode(cmd, func(n *rotary.Node) error {
				multisig, err := n.Ledger().CreateMultisig(
					cmd.Context(),
					ledger.CreateMultisigRequest{
						Admin:      admin,
						Collection: collection,
						Signers:    signers,
						Threshold:  flags.threshold,
					},
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, multisig)
			})
		},
	}
	cmd.Flags().StringVar(&flags.admin, "admin", "", "admin identity (hex)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().StringArrayVar(&flags.signers, "signer", nil, "signer identity (hex), repeat for each signer")
	cmd.Flags().Uint32Var(&flags.threshold, "threshold", 0, "approvals required to execute a proposal")
	return cmd
}

func multisigShowCommand() *cobra.Command {
	var flags struct {
		collection string
	}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the multisig committee of a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				multisig, err := n.Ledger().Multisig(collection)
				if err != nil {
					return err
				}
				return printJSON(cmd, multisig)
			})
		},
	}
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	return cmd
}
