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
	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

// Member is a user's participation record within a collection
type Member struct {
	Key                      lcommon.Key      `gorm:"primaryKey;size:32"`
	CollectionKey            lcommon.Key      `gorm:"uniqueIndex:idx_member_collection_user,priority:1;size:32;not null"`
	User                     lcommon.Identity `gorm:"uniqueIndex:idx_member_collection_user,priority:2;size:32;not null"`
	PaidPeriods              uint32           `gorm:"not null"`
	LastPaid                 int64            `gorm:"not null"` // 0 means never paid
	TotalPaid                types.Uint64     `gorm:"not null"`
	CanWithdraw              bool             `gorm:"not null"`
	EarlyWithdrawalRequested bool             `gorm:"not null"`
	JoinedAt                 int64            `gorm:"not null"`
}

func (Member) TableName() string {
	return "member"
}

func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	ret := *m
	return &ret
}
