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
	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/ledger"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/spf13/cobra"
)

type proposalView struct {
	Proposal *models.Proposal      `json:"proposal"`
	Kind     string                `json:"kind"`
	Action   ledger.ProposalAction `json:"action"`
}

func newProposalView(proposal *models.Proposal) (proposalView, error) {
	kind := ledger.ProposalKind(proposal.Kind)
	action, err := ledger.DecodeProposalAction(kind, proposal.Action)
	if err != nil {
		return proposalView{}, err
	}
	return proposalView{
		Proposal: proposal,
		Kind:     kind.String(),
		Action:   action,
	}, nil
}

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create, vote on and execute governance proposals",
	}
	cmd.AddCommand(proposalCreateCommand())
	cmd.AddCommand(proposalVoteCommand())
	cmd.AddCommand(proposalExecuteCommand())
	cmd.AddCommand(proposalShowCommand())
	cmd.AddCommand(proposalListCommand())
	return cmd
}

func proposalCreateCommand() *cobra.Command {
	var flags struct {
		proposer   string
		collection string
		kind       string
		user       string
		amount     uint64
	}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a proposal on the collection multisig",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proposer, err := parseIdentity("proposer", flags.proposer)
			if err != nil {
				return err
			}
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			kind, err := ledger.ParseProposalKind(flags.kind)
			if err != nil {
				return err
			}
			var user lcommon.Identity
			if flags.user != "" {
				user, err = parseIdentity("user", flags.user)
				if err != nil {
					return err
				}
			}
			action, err := ledger.ProposalActionFromRequest(
				kind,
				user,
				flags.amount,
				[3]uint64{},
			)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				proposal, err := n.Ledger().CreateProposal(
					cmd.Context(),
					ledger.CreateProposalRequest{
						Proposer:   proposer,
						Collection: collection,
						Action:     action,
					},
				)
				if err != nil {
					return err
				}
				view, err := newProposalView(proposal)
				if err != nil {
					return err
				}
				return printJSON(cmd, view)
			})
		},
	}
	cmd.Flags().StringVar(&flags.proposer, "proposer", "", "proposer identity (hex)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().StringVar(&flags.kind, "kind", ledger.ProposalKindEarlyWithdrawal.String(), "proposal kind")
	cmd.Flags().StringVar(&flags.user, "user", "", "member the proposal applies to (hex)")
	cmd.Flags().Uint64Var(&flags.amount, "amount", 0, "amount the proposal applies to")
	return cmd
}

func proposalVoteCommand() *cobra.Command {
	var flags struct {
		signer     string
		collection string
		index      uint64
		approve    bool
	}
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Record a signer's vote on a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := parseIdentity("signer", flags.signer)
			if err != nil {
				return err
			}
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				proposal, err := n.Ledger().VoteOnProposal(
					cmd.Context(),
					ledger.VoteRequest{
						Signer:     signer,
						Collection: collection,
						Index:      flags.index,
						Approve:    flags.approve,
					},
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, proposal)
			})
		},
	}
	cmd.Flags().StringVar(&flags.signer, "signer", "", "signer identity (hex)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().Uint64Var(&flags.index, "index", 0, "proposal index")
	cmd.Flags().BoolVar(&flags.approve, "approve", true, "approve the proposal (use --approve=false to reject)")
	return cmd
}

func proposalExecuteCommand() *cobra.Command {
	var flags struct {
		executor   string
		collection string
		index      uint64
	}
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute an approved proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, err := parseIdentity("executor", flags.executor)
			if err != nil {
				return err
			}
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				result, err := n.Ledger().ExecuteProposal(
					cmd.Context(),
					ledger.ExecuteRequest{
						Executor:   executor,
						Collection: collection,
						Index:      flags.index,
					},
				)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	cmd.Flags().StringVar(&flags.executor, "executor", "", "executor identity (hex)")
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().Uint64Var(&flags.index, "index", 0, "proposal index")
	return cmd
}

func proposalShowCommand() *cobra.Command {
	var flags struct {
		collection string
		index      uint64
	}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a proposal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				proposal, err := n.Ledger().Proposal(collection, flags.index)
				if err != nil {
					return err
				}
				view, err := newProposalView(proposal)
				if err != nil {
					return err
				}
				return printJSON(cmd, view)
			})
		},
	}
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	cmd.Flags().Uint64Var(&flags.index, "index", 0, "proposal index")
	return cmd
}

func proposalListCommand() *cobra.Command {
	var flags struct {
		collection string
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the proposals of a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, err := parseKey("--collection", flags.collection)
			if err != nil {
				return err
			}
			return withNode(cmd, func(n *rotary.Node) error {
				proposals, err := n.Ledger().Proposals(collection)
				if err != nil {
					return err
				}
				views := make([]proposalView, 0, len(proposals))
				for _, proposal := range proposals {
					view, err := newProposalView(proposal)
					if err != nil {
						return err
					}
					views = append(views, view)
				}
				return printJSON(cmd, views)
			})
		},
	}
	cmd.Flags().StringVar(&flags.collection, "collection", "", "collection key (hex)")
	return cmd
}
