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
	"math"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

type PayRequest struct {
	User       lcommon.Identity
	Collection lcommon.Key
	Amount     uint64
}

// Pay applies one period's contribution from a member
func (ls *LedgerState) Pay(
	ctx context.Context,
	req PayRequest,
) (*models.Member, error) {
	var ret *models.Member
	err := ls.observe(
		ctx,
		"pay",
		req.Collection,
		func(ctx context.Context) (*transition, error) {
			cs, err := ls.collectionState(req.Collection)
			if err != nil {
				return nil, err
			}
			cs.Lock()
			defer cs.Unlock()
			current, ok := cs.members[req.User]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownUser, req.User)
			}
			if !cs.collection.IsActive {
				return nil, ErrCollectionInactive
			}
			expected := uint64(cs.collection.AmountPerPeriod)
			if req.Amount != expected {
				return nil, NewPaymentAmountMismatchError(expected, req.Amount)
			}
			t := ls.newTransition("pay", req.User)
			if current.LastPaid != 0 {
				nextAllowed := current.LastPaid + cs.collection.Period
				if t.now < nextAllowed {
					return nil, NewTooEarlyError(current.LastPaid, nextAllowed)
				}
			}
			if uint64(current.TotalPaid) > math.MaxUint64-req.Amount ||
				uint64(cs.collection.TotalBalance) > math.MaxUint64-req.Amount {
				return nil, invalidParams("payment overflows balance")
			}
			if current.PaidPeriods == math.MaxUint32 {
				return nil, invalidParams("paid periods overflow")
			}
			t.collection = cs.collection.Clone()
			t.collection.TotalBalance += types.Uint64(req.Amount)
			member := current.Clone()
			member.PaidPeriods++
			member.TotalPaid += types.Uint64(req.Amount)
			member.LastPaid = t.now
			member.CanWithdraw = ls.config.WithdrawalRule(t.collection, member)
			t.members = append(t.members, member)
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ls.metrics.contributions.Add(float64(req.Amount))
			ret = member.Clone()
			t.addEvent(
				PaymentAcceptedEventType,
				PaymentAcceptedEvent{
					Collection: *t.collection.Clone(),
					Member:     *ret,
					Amount:     req.Amount,
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
