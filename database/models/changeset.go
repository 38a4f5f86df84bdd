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
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

// JournalEntry records a committed ledger transition
type JournalEntry struct {
	_          struct{} `cbor:",toarray"`
	Sequence   uint64
	Operation  string
	Actor      lcommon.Identity
	Collection lcommon.Key
	Timestamp  int64
	Keys       []lcommon.Key
}

// Changeset is the set of entities written by a single ledger transition
type Changeset struct {
	Collection *Collection
	Members    []*Member
	Multisig   *Multisig
	Proposals  []*Proposal
	Transfers  []*Transfer
	Journal    JournalEntry
}

// Snapshot is the full persisted ledger state
type Snapshot struct {
	Collections []*Collection
	Members     []*Member
	Multisigs   []*Multisig
	Proposals   []*Proposal
}
