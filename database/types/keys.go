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

package types

import (
	"encoding/binary"
	"slices"

	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

const (
	JournalBlobKeyPrefix   = "j"
	CommitTimestampBlobKey = "commit_ts"
)

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// JournalBlobPrefix returns the key prefix shared by all journal entries of a collection
func JournalBlobPrefix(collection lcommon.Key) []byte {
	return slices.Concat([]byte(JournalBlobKeyPrefix), collection[:])
}

// JournalBlobKey returns the key of a journal entry. Keys sort by sequence within a collection.
func JournalBlobKey(collection lcommon.Key, sequence uint64) []byte {
	return slices.Concat(
		JournalBlobPrefix(collection),
		BlobKeyUint64ToBytes(sequence),
	)
}
