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

// Multisig is the signer committee of a collection. Nonce is the index
// that the next proposal will be assigned.
type Multisig struct {
	Key           lcommon.Key        `gorm:"primaryKey;size:32"`
	CollectionKey lcommon.Key        `gorm:"uniqueIndex;size:32;not null"`
	Signers       types.IdentityList `gorm:"not null"`
	Threshold     uint32             `gorm:"not null"`
	Nonce         uint64             `gorm:"not null"`
}

func (Multisig) TableName() string {
	return "multisig"
}

func (m *Multisig) Clone() *Multisig {
	if m == nil {
		return nil
	}
	ret := *m
	ret.Signers = m.Signers.Clone()
	return &ret
}
