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

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

type CreateProposalRequest struct {
	Proposer   lcommon.Identity
	Collection lcommon.Key
	Action     ProposalAction
}

// CreateProposal opens a new proposal on the collection multisig. The
// proposal takes the current multisig nonce as its index.
func (ls *LedgerState) CreateProposal(
	ctx context.Context,
	req CreateProposalRequest,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := ls.observe(
		ctx,
		"create_proposal",
		req.Collection,
		func(ctx context.Context) (*transition, error) {
			if req.Action == nil {
				return nil, invalidParams("proposal action is required")
			}
			cs, err := ls.collectionState(req.Collection)
			if err != nil {
				return nil, err
			}
			cs.Lock()
			defer cs.Unlock()
			if !cs.collection.IsActive {
				return nil, ErrCollectionInactive
			}
			multisig, err := cs.requireMultisig()
			if err != nil {
				return nil, err
			}
			t := ls.newTransition("create_proposal", req.Proposer)
			t.collection = cs.collection.Clone()
			switch action := req.Action.(type) {
			case EarlyWithdrawalAction:
				if err := cs.prepareEarlyWithdrawal(t, action); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf(
					"%w: %s",
					ErrUnsupportedProposal,
					req.Action.Kind(),
				)
			}
			actionData, err := encodeProposalAction(req.Action)
			if err != nil {
				return nil, err
			}
			t.multisig = multisig.Clone()
			index := t.multisig.Nonce
			t.multisig.Nonce++
			proposal := &models.Proposal{
				Key:           lcommon.ProposalKey(req.Collection, index),
				CollectionKey: req.Collection,
				Index:         index,
				Kind:          uint8(req.Action.Kind()),
				Proposer:      req.Proposer,
				Action:        actionData,
				Approvals:     types.NewApprovals(len(t.multisig.Signers)),
				CreatedAt:     t.now,
			}
			t.proposals = append(t.proposals, proposal)
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ls.metrics.openProposals.Inc()
			ret = proposal.Clone()
			t.addEvent(
				ProposalCreatedEventType,
				ProposalCreatedEvent{Proposal: *ret, Action: req.Action},
			)
			return t, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (cs *collectionState) prepareEarlyWithdrawal(
	t *transition,
	action EarlyWithdrawalAction,
) error {
	current, ok := cs.members[action.User]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, action.User)
	}
	if current.CanWithdraw {
		return fmt.Errorf("%w: %s", ErrEligibleForWithdrawal, action.User)
	}
	if current.EarlyWithdrawalRequested {
		return fmt.Errorf(
			"%w: %s",
			ErrDuplicateEarlyWithdrawalRequest,
			action.User,
		)
	}
	if action.Amount > uint64(current.TotalPaid) {
		return invalidParams(
			"withdrawal amount %d exceeds total paid %d",
			action.Amount,
			current.TotalPaid,
		)
	}
	member := current.Clone()
	member.EarlyWithdrawalRequested = true
	t.members = append(t.members, member)
	return nil
}

type VoteRequest struct {
	Signer     lcommon.Identity
	Collection lcommon.Key
	Index      uint64
	Approve    bool
}

// VoteOnProposal records a signer's vote. A later vote by the same signer
// replaces the earlier one.
func (ls *LedgerState) VoteOnProposal(
	ctx context.Context,
	req VoteRequest,
) (*models.Proposal, error) {
	var ret *models.Proposal
	err := ls.observe(
		ctx,
		"vote",
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
			signerIdx := multisig.Signers.IndexOf(req.Signer)
			if signerIdx < 0 {
				return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, req.Signer)
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
			t := ls.newTransition("vote", req.Signer)
			t.collection = cs.collection.Clone()
			proposal := current.Clone()
			if err := proposal.Approvals.Set(signerIdx, req.Approve); err != nil {
				return nil, err
			}
			t.proposals = append(t.proposals, proposal)
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ret = proposal.Clone()
			t.addEvent(
				ProposalVotedEventType,
				ProposalVotedEvent{
					Proposal: *ret,
					Signer:   req.Signer,
					Approve:  req.Approve,
				},
			)
			return t, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
