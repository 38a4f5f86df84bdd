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

// Collection is a savings pool created by an admin. The admin and name
// together determine its key.
type Collection struct {
	Key                        lcommon.Key      `gorm:"primaryKey;size:32"`
	Admin                      lcommon.Identity `gorm:"uniqueIndex:idx_collection_admin_name,priority:1;size:32;not null"`
	Name                       string           `gorm:"uniqueIndex:idx_collection_admin_name,priority:2;size:32;not null"`
	Duration                   int64            `gorm:"not null"`
	Period                     int64            `gorm:"not null"`
	AmountPerPeriod            types.Uint64     `gorm:"not null"`
	TotalMembers               uint8            `gorm:"not null"`
	ActiveMembers              uint8            `gorm:"not null"`
	TotalBalance               types.Uint64     `gorm:"not null"`
	IsActive                   bool             `gorm:"not null"`
	EarlyWithdrawalPenaltyRate uint8            `gorm:"not null"`
	CreatedAt                  int64            `gorm:"autoCreateTime:false;not null"`
	Sequence                   uint64           `gorm:"not null"`
}

func (Collection) TableName() string {
	return "collection"
}

// Clone returns a copy that can be mutated without affecting the original
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	ret := *c
	return &ret
}

// PeriodsPerCycle returns the number of whole contribution periods that fit in the cycle
func (c *Collection) PeriodsPerCycle() uint64 {
	if c.Period <= 0 || c.Duration <= 0 {
		return 0
	}
	return uint64(c.Duration / c.Period) //nolint:gosec
}
