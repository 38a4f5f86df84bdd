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
	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/event"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

const (
	CollectionCreatedEventType event.EventType = "ledger.collection.created"
	MemberAddedEventType       event.EventType = "ledger.member.added"
	PaymentAcceptedEventType   event.EventType = "ledger.payment.accepted"
	MultisigCreatedEventType   event.EventType = "ledger.multisig.created"
	ProposalCreatedEventType   event.EventType = "ledger.proposal.created"
	ProposalVotedEventType     event.EventType = "ledger.proposal.voted"
	ProposalExecutedEventType  event.EventType = "ledger.proposal.executed"
	TransferEventType          event.EventType = "ledger.transfer"
)

type CollectionCreatedEvent struct {
	Collection models.Collection
}

type MemberAddedEvent struct {
	Collection models.Collection
	Member     models.Member
}

type PaymentAcceptedEvent struct {
	Collection models.Collection
	Member     models.Member
	Amount     uint64
}

type MultisigCreatedEvent struct {
	Multisig models.Multisig
}

type ProposalCreatedEvent struct {
	Proposal models.Proposal
	Action   ProposalAction
}

// ProposalVotedEvent is emitted for every accepted vote. A later vote by the
// same signer replaces the earlier one.
type ProposalVotedEvent struct {
	Proposal models.Proposal
	Signer   lcommon.Identity
	Approve  bool
}

type ProposalExecutedEvent struct {
	Proposal models.Proposal
	Action   ProposalAction
}

// TransferEvent carries a payout instruction for the funds holder to act on
type TransferEvent struct {
	Transfer models.Transfer
}
