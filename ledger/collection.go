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

const MaxPenaltyRate = 100

type CreateCollectionRequest struct {
	Admin           lcommon.Identity
	Name            string
	Duration        int64 // seconds
	Period          int64 // seconds
	AmountPerPeriod uint64
	TotalMembers    uint8
	PenaltyRate     uint8 // percent
}

func (r CreateCollectionRequest) validate() error {
	if r.Admin.IsZero() {
		return invalidParams("admin is required")
	}
	if len(r.Name) == 0 || len(r.Name) > lcommon.MaxNameLength {
		return invalidParams(
			"name must be between 1 and %d bytes",
			lcommon.MaxNameLength,
		)
	}
	if r.TotalMembers == 0 {
		return invalidParams("total members must be greater than zero")
	}
	if r.Period <= 0 {
		return invalidParams("period must be greater than zero")
	}
	if r.Period > r.Duration {
		return invalidParams(
			"period %d exceeds duration %d",
			r.Period,
			r.Duration,
		)
	}
	if r.PenaltyRate > MaxPenaltyRate {
		return invalidParams(
			"penalty rate %d exceeds %d",
			r.PenaltyRate,
			MaxPenaltyRate,
		)
	}
	return nil
}

// CreateCollection creates a new active collection owned by the caller
func (ls *LedgerState) CreateCollection(
	ctx context.Context,
	req CreateCollectionRequest,
) (*models.Collection, error) {
	key := lcommon.CollectionKey(req.Admin, req.Name)
	var ret *models.Collection
	err := ls.observe(
		ctx,
		"create_collection",
		key,
		func(ctx context.Context) (*transition, error) {
			if err := req.validate(); err != nil {
				return nil, err
			}
			ls.Lock()
			defer ls.Unlock()
			if _, ok := ls.collections[key]; ok {
				return nil, fmt.Errorf(
					"%w: %s",
					ErrDuplicateCollection,
					key,
				)
			}
			t := ls.newTransition("create_collection", req.Admin)
			t.collection = &models.Collection{
				Key:                        key,
				Admin:                      req.Admin,
				Name:                       req.Name,
				Duration:                   req.Duration,
				Period:                     req.Period,
				AmountPerPeriod:            types.Uint64(req.AmountPerPeriod),
				TotalMembers:               req.TotalMembers,
				IsActive:                   true,
				EarlyWithdrawalPenaltyRate: req.PenaltyRate,
				CreatedAt:                  t.now,
			}
			cs := newCollectionState(nil)
			cs.Lock()
			defer cs.Unlock()
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ls.collections[key] = cs
			ls.metrics.collections.Set(float64(len(ls.collections)))
			ret = t.collection.Clone()
			t.addEvent(
				CollectionCreatedEventType,
				CollectionCreatedEvent{Collection: *ret},
			)
			return t, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
