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

package types_test

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"reflect"
	"slices"
	"testing"

	"github.com/blinklabs-io/rotary/database/types"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesScanValue(t *testing.T) {
	signerA := lcommon.Identity{0x01}
	signerB := lcommon.Identity{0x02}
	maxValue := types.Uint64(18446744073709551615)
	testDefs := []struct {
		origValue     any
		expectedValue any
	}{
		{
			origValue:     &maxValue,
			expectedValue: "18446744073709551615",
		},
		{
			origValue:     &types.Approvals{true, false, true},
			expectedValue: "101",
		},
		{
			origValue:     &types.IdentityList{signerA, signerB},
			expectedValue: slices.Concat(signerA.Bytes(), signerB.Bytes()),
		},
	}
	for _, testDef := range testDefs {
		tmpValuer, ok := testDef.origValue.(driver.Valuer)
		require.True(t, ok, "test original value does not implement driver.Valuer")
		valueOut, err := tmpValuer.Value()
		require.NoError(t, err)
		if !reflect.DeepEqual(valueOut, testDef.expectedValue) {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		// Scan into a fresh value of the same type
		tmpScanner, ok := reflect.New(
			reflect.TypeOf(testDef.origValue).Elem(),
		).Interface().(sql.Scanner)
		require.True(t, ok, "test original value does not implement sql.Scanner")
		require.NoError(t, tmpScanner.Scan(valueOut))
		if !reflect.DeepEqual(tmpScanner, testDef.origValue) {
			t.Fatalf(
				"did not get expected value after Scan(): got %#v, expected %#v",
				tmpScanner,
				testDef.origValue,
			)
		}
	}
}

func TestApprovals(t *testing.T) {
	approvals := types.NewApprovals(3)
	assert.Equal(t, 0, approvals.Count())
	require.NoError(t, approvals.Set(0, true))
	require.NoError(t, approvals.Set(1, true))
	assert.Equal(t, 2, approvals.Count())
	require.NoError(t, approvals.Set(1, false))
	assert.Equal(t, types.Approvals{true, false, false}, approvals)
	require.ErrorIs(t, approvals.Set(3, true), types.ErrApprovalIndex)
	require.ErrorIs(t, approvals.Set(-1, true), types.ErrApprovalIndex)
	clone := approvals.Clone()
	require.NoError(t, clone.Set(2, true))
	assert.False(t, approvals[2])
}

func TestApprovalsScanInvalid(t *testing.T) {
	var approvals types.Approvals
	require.Error(t, approvals.Scan("10x"))
	require.Error(t, approvals.Scan(42))
}

func TestIdentityListIndexOf(t *testing.T) {
	list := types.IdentityList{{0x01}, {0x02}, {0x03}}
	assert.Equal(t, 1, list.IndexOf(lcommon.Identity{0x02}))
	assert.Equal(t, -1, list.IndexOf(lcommon.Identity{0x04}))
	var scanned types.IdentityList
	require.ErrorIs(
		t,
		scanned.Scan(make([]byte, 33)),
		lcommon.ErrInvalidLength,
	)
}

func TestJournalBlobKeyOrdering(t *testing.T) {
	coll := lcommon.CollectionKey(lcommon.Identity{0x01}, "test")
	prefix := types.JournalBlobPrefix(coll)
	key1 := types.JournalBlobKey(coll, 1)
	key2 := types.JournalBlobKey(coll, 256)
	assert.True(t, bytes.HasPrefix(key1, prefix))
	assert.Equal(t, -1, bytes.Compare(key1, key2))
}
