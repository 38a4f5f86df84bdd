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
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

type AddUserRequest struct {
	Admin      lcommon.Identity
	Collection lcommon.Key
	User       lcommon.Identity
}

// AddUser registers a user as a member of the collection. Only the
// collection admin may add users.
func (ls *LedgerState) AddUser(
	ctx context.Context,
	req AddUserRequest,
) (*models.Member, error) {
	var ret *models.Member
	err := ls.observe(
		ctx,
		"add_user",
		req.Collection,
		func(ctx context.Context) (*transition, error) {
			if req.User.IsZero() {
				return nil, invalidParams("user is required")
			}
			cs, err := ls.collectionState(req.Collection)
			if err != nil {
				return nil, err
			}
			cs.Lock()
			defer cs.Unlock()
			if cs.collection.Admin != req.Admin {
				return nil, ErrNotAdmin
			}
			if !cs.collection.IsActive {
				return nil, ErrCollectionInactive
			}
			if cs.collection.ActiveMembers >= cs.collection.TotalMembers {
				return nil, fmt.Errorf(
					"%w: %d of %d members",
					ErrCollectionFull,
					cs.collection.ActiveMembers,
					cs.collection.TotalMembers,
				)
			}
			if _, ok := cs.members[req.User]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateMember, req.User)
			}
			t := ls.newTransition("add_user", req.Admin)
			t.collection = cs.collection.Clone()
			t.collection.ActiveMembers++
			member := &models.Member{
				Key:           lcommon.UserKey(req.Collection, req.User),
				CollectionKey: req.Collection,
				User:          req.User,
				JoinedAt:      t.now,
			}
			t.members = append(t.members, member)
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ls.metrics.membersAdded.Inc()
			ret = member.Clone()
			t.addEvent(
				MemberAddedEventType,
				MemberAddedEvent{Collection: *t.collection.Clone(), Member: *ret},
			)
			return t, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
