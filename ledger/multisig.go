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

type CreateMultisigRequest struct {
	Admin      lcommon.Identity
	Collection lcommon.Key
	Signers    []lcommon.Identity
	Threshold  uint32
}

func (r CreateMultisigRequest) validate() error {
	if len(r.Signers) == 0 {
		return invalidParams("at least one signer is required")
	}
	seen := make(map[lcommon.Identity]struct{}, len(r.Signers))
	for _, signer := range r.Signers {
		if signer.IsZero() {
			return invalidParams("signer identity is empty")
		}
		if _, ok := seen[signer]; ok {
			return invalidParams("duplicate signer %s", signer)
		}
		seen[signer] = struct{}{}
	}
	if r.Threshold == 0 || uint64(r.Threshold) > uint64(len(r.Signers)) {
		return invalidParams(
			"threshold must be between 1 and %d",
			len(r.Signers),
		)
	}
	return nil
}

// CreateMultisig attaches the signer committee to a collection. A collection
// has at most one multisig.
func (ls *LedgerState) CreateMultisig(
	ctx context.Context,
	req CreateMultisigRequest,
) (*models.Multisig, error) {
	var ret *models.Multisig
	err := ls.observe(
		ctx,
		"create_multisig",
		req.Collection,
		func(ctx context.Context) (*transition, error) {
			cs, err := ls.collectionState(req.Collection)
			if err != nil {
				return nil, err
			}
			cs.Lock()
			defer cs.Unlock()
			if cs.collection.Admin != req.Admin {
				return nil, ErrNotAdmin
			}
			if cs.multisig != nil {
				return nil, ErrDuplicateMultisig
			}
			if err := req.validate(); err != nil {
				return nil, err
			}
			t := ls.newTransition("create_multisig", req.Admin)
			t.collection = cs.collection.Clone()
			t.multisig = &models.Multisig{
				Key:           lcommon.MultisigKey(req.Collection),
				CollectionKey: req.Collection,
				Signers:       types.IdentityList(req.Signers).Clone(),
				Threshold:     req.Threshold,
			}
			if err := ls.commit(ctx, cs, t); err != nil {
				return nil, err
			}
			ret = t.multisig.Clone()
			t.addEvent(
				MultisigCreatedEventType,
				MultisigCreatedEvent{Multisig: *ret},
			)
			return t, nil
		},
	)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// requireMultisig returns the collection multisig or ErrMultisigNotFound
func (cs *collectionState) requireMultisig() (*models.Multisig, error) {
	if cs.multisig == nil {
		return nil, fmt.Errorf(
			"%w: %s",
			ErrMultisigNotFound,
			cs.collection.Key,
		)
	}
	return cs.multisig, nil
}
