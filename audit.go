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

package rotary

import (
	"github.com/blinklabs-io/rotary/event"
	"github.com/blinklabs-io/rotary/ledger"
)

// subscribeAudit logs every committed ledger transition at info level
func (n *Node) subscribeAudit() {
	logger := n.config.logger.With("component", "audit")
	n.eventBus.SubscribeFunc(
		ledger.CollectionCreatedEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(ledger.CollectionCreatedEvent)
			if !ok {
				return
			}
			logger.Info(
				"collection created",
				"collection", data.Collection.Key.String(),
				"name", data.Collection.Name,
				"admin", data.Collection.Admin.String(),
			)
		},
	)
	n.eventBus.SubscribeFunc(
		ledger.MemberAddedEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(ledger.MemberAddedEvent)
			if !ok {
				return
			}
			logger.Info(
				"member added",
				"collection", data.Collection.Key.String(),
				"user", data.Member.User.String(),
				"active_members", data.Collection.ActiveMembers,
			)
		},
	)
	n.eventBus.SubscribeFunc(
		ledger.PaymentAcceptedEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(ledger.PaymentAcceptedEvent)
			if !ok {
				return
			}
			logger.Info(
				"payment accepted",
				"collection", data.Collection.Key.String(),
				"user", data.Member.User.String(),
				"amount", data.Amount,
				"paid_periods", data.Member.PaidPeriods,
			)
		},
	)
	n.eventBus.SubscribeFunc(
		ledger.ProposalExecutedEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(ledger.ProposalExecutedEvent)
			if !ok {
				return
			}
			logger.Info(
				"proposal executed",
				"collection", data.Proposal.CollectionKey.String(),
				"index", data.Proposal.Index,
				"kind", ledger.ProposalKind(data.Proposal.Kind).String(),
			)
		},
	)
	n.eventBus.SubscribeFunc(
		ledger.TransferEventType,
		func(evt event.Event) {
			data, ok := evt.Data.(ledger.TransferEvent)
			if !ok {
				return
			}
			logger.Info(
				"transfer issued",
				"collection", data.Transfer.CollectionKey.String(),
				"recipient", data.Transfer.Recipient.String(),
				"amount", uint64(data.Transfer.Amount),
				"penalty", uint64(data.Transfer.Penalty),
			)
		},
	)
}
