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

package ledger

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

type ExecuteRequest struct {
	Executor   lcommon.Identity
	Collection lcommon.Key
	Index      uint64
}

// ExecutionResult holds the state written by a proposal execution
type ExecutionResult struct {
	Proposal   *models.Proposal
	Member     *models.Member
	Collection *models.Collection
	Transfer   *models.Transfer
}

// PenaltyAmount returns the part of the principal retained by the collection
func PenaltyAmount(principal uint64, rate uint8) uint64 {
	rate = min(rate, MaxPenaltyRate)
	hi, lo := bits.Mul64(principal, uint64(rate))
	quo, _ := bits.Div64(hi, lo, MaxPenaltyRate)
	return quo
}

// ExecuteProposal applies an approved proposal. The proposal can only be
// executed once.
func (ls *LedgerState) ExecuteProposal(
	ctx context.Context,
	req ExecuteRequest,
) (*ExecutionResult, error) {
	var ret *ExecutionResult
	err := ls.observe(
		ctx,
		"execute_proposal",
		req.Collection,
		func(ctx context.Context) (*transition, error) {
			cs, err := ls.collectionState(req.Collection)
			if err != nil {
				return nil, err
			}
			cs.Lock()
			defer cs.Unlock()
			multisig, err := cs.requireMultisig()
			if err != nil {
				return nil, err
			}
			if req.Index >= uint64(len(cs.proposals)) {
				return nil, fmt.Errorf(
					"%w: index %d",
					ErrProposalNotFound,
					req.Index,
				)
			}
			current := cs.proposals[req.Index]
			if current.Executed {
				return nil, ErrAlreadyExecuted
			}
			if !ls.config.ExecutionPolicy.Allows(cs.collection, multisig, req.Executor) {
				return nil, fmt.Errorf(
					"%w: %s under %s policy",
					ErrUnauthorizedExecutor,
					req.Executor,
					ls.config.ExecutionPolicy,
				)
			}
			if approvals := current.Approvals.Count(); uint64(approvals) < uint64(multisig.Threshold) {
				return nil, NewInsufficientApprovalsError(
					approvals,
					multisig.Threshold,
				)
			}
			action, err := DecodeProposalAction(
				ProposalKind(current.Kind),
				current.Action,
			)
			if err != nil {
				return nil, err
			}
			t := ls.newTransition("execute_proposal", req.Executor)
			t.collection = cs.collection.Clone()
			proposal := current.Clone()
			proposal.Executed = true
			proposal.ExecutedAt = t.now
			proposal.ExecutedBy = req.Executor
			t.proposals = append(t.proposals, proposal)
			ret = &ExecutionResult{}
			switch action := action.(type) {
			case EarlyWithdrawalAction:
				if err := cs.applyEarlyWithdrawal(t, proposal, action, ret); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf(
					"%w: %s",
					ErrUnsupportedProposal,
					action.Kind(),
				)
			}
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ls.metrics.openProposals.Dec()
			ret.Proposal = proposal.Clone()
			ret.Collection = t.collection.Clone()
			if len(t.transfers) > 0 {
				tmpTransfer := *t.transfers[0]
				ret.Transfer = &tmpTransfer
			}
			t.addEvent(
				ProposalExecutedEventType,
				ProposalExecutedEvent{Proposal: *ret.Proposal, Action: action},
			)
			if ret.Transfer != nil {
				ls.metrics.payouts.Add(float64(ret.Transfer.Amount))
				ls.metrics.penalties.Add(float64(ret.Transfer.Penalty))
				t.addEvent(
					TransferEventType,
					TransferEvent{Transfer: *ret.Transfer},
				)
			}
			return t, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (cs *collectionState) applyEarlyWithdrawal(
	t *transition,
	proposal *models.Proposal,
	action EarlyWithdrawalAction,
	ret *ExecutionResult,
) error {
	current, ok := cs.members[action.User]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, action.User)
	}
	principal := uint64(current.TotalPaid)
	penalty := PenaltyAmount(
		principal,
		t.collection.EarlyWithdrawalPenaltyRate,
	)
	payout := principal - penalty
	if payout > uint64(t.collection.TotalBalance) {
		return invalidParams(
			"payout %d exceeds collection balance %d",
			payout,
			t.collection.TotalBalance,
		)
	}
	t.collection.TotalBalance -= types.Uint64(payout)
	member := current.Clone()
	member.TotalPaid = 0
	member.EarlyWithdrawalRequested = false
	t.members = append(t.members, member)
	transfer := &models.Transfer{
		CollectionKey: proposal.CollectionKey,
		ProposalIndex: proposal.Index,
		Recipient:     action.User,
		Principal:     types.Uint64(principal),
		Amount:        types.Uint64(payout),
		Penalty:       types.Uint64(penalty),
		CreatedAt:     t.now,
	}
	t.transfers = append(t.transfers, transfer)
	ret.Member = member.Clone()
	return nil
}
