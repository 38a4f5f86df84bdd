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

package models

import (
	"slices"

	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

// Proposal is a multisig proposal. Action holds the CBOR encoded action
// for the proposal kind. Proposals are open until executed.
type Proposal struct {
	Key           lcommon.Key      `gorm:"primaryKey;size:32"`
	CollectionKey lcommon.Key      `gorm:"uniqueIndex:idx_proposal_collection_index,priority:1;size:32;not null"`
	Index         uint64           `gorm:"column:proposal_index;uniqueIndex:idx_proposal_collection_index,priority:2;not null"`
	Kind          uint8            `gorm:"index;not null"` // ProposalKind enum
	Proposer      lcommon.Identity `gorm:"size:32;not null"`
	Action        []byte           `gorm:"not null"`
	Approvals     types.Approvals  `gorm:"not null"`
	Executed      bool             `gorm:"index;not null"`
	CreatedAt     int64            `gorm:"autoCreateTime:false;not null"`
	ExecutedAt    int64
	ExecutedBy    lcommon.Identity `gorm:"size:32"`
}

func (Proposal) TableName() string {
	return "proposal"
}

func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	ret := *p
	ret.Action = slices.Clone(p.Action)
	ret.Approvals = p.Approvals.Clone()
	return &ret
}
