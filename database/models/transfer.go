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

// Transfer is a fund transfer instruction produced by proposal execution.
// Moving the funds is up to the caller.
type Transfer struct {
	ID            uint             `gorm:"primarykey"`
	CollectionKey lcommon.Key      `gorm:"index;size:32;not null"`
	ProposalIndex uint64           `gorm:"not null"`
	Recipient     lcommon.Identity `gorm:"size:32;not null"`
	Principal     types.Uint64     `gorm:"not null"`
	Amount        types.Uint64     `gorm:"not null"`
	Penalty       types.Uint64     `gorm:"not null"`
	CreatedAt     int64            `gorm:"autoCreateTime:false;not null"`
}

func (Transfer) TableName() string {
	return "transfer"
}
