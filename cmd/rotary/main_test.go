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

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/blinklabs-io/rotary/ledger"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cliAdmin  = strings.Repeat("a1", 32)
	cliUser   = strings.Repeat("b2", 32)
	cliSigner = strings.Repeat("c3", 32)
)

func runCommand(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runCommand(t, dataDir, args...)
	require.NoError(t, err, "command: %v", args)
	return out
}

func TestCLIEarlyWithdrawalFlow(t *testing.T) {
	dataDir := t.TempDir()

	out := mustRun(t, dataDir,
		"collection", "create",
		"--admin", cliAdmin,
		"--name", "family",
		"--duration", "720h",
		"--period", "24h",
		"--amount", "1000",
		"--members", "3",
		"--penalty", "5",
	)
	var coll struct {
		Key      string
		IsActive bool
	}
	require.NoError(t, json.Unmarshal([]byte(out), &coll))
	assert.True(t, coll.IsActive)
	admin, err := lcommon.NewIdentityFromHex(cliAdmin)
	require.NoError(t, err)
	assert.Equal(t, lcommon.CollectionKey(admin, "family").String(), coll.Key)

	mustRun(t, dataDir,
		"member", "add",
		"--admin", cliAdmin,
		"--collection", coll.Key,
		"--user", cliUser,
	)
	out = mustRun(t, dataDir,
		"pay",
		"--user", cliUser,
		"--collection", coll.Key,
		"--amount", "1000",
	)
	var member struct {
		PaidPeriods uint32
		TotalPaid   uint64
	}
	require.NoError(t, json.Unmarshal([]byte(out), &member))
	assert.EqualValues(t, 1, member.PaidPeriods)
	assert.EqualValues(t, 1000, member.TotalPaid)

	// Paying again within the period is rejected
	_, err = runCommand(t, dataDir,
		"pay",
		"--user", cliUser,
		"--collection", coll.Key,
		"--amount", "1000",
	)
	require.ErrorIs(t, err, ledger.ErrTooEarlyForNextPayment)

	mustRun(t, dataDir,
		"multisig", "create",
		"--admin", cliAdmin,
		"--collection", coll.Key,
		"--signer", cliSigner,
		"--threshold", "1",
	)
	out = mustRun(t, dataDir,
		"proposal", "create",
		"--proposer", cliUser,
		"--collection", coll.Key,
		"--user", cliUser,
		"--amount", "1000",
	)
	assert.Contains(t, out, `"kind": "early-withdrawal"`)
	mustRun(t, dataDir,
		"proposal", "vote",
		"--signer", cliSigner,
		"--collection", coll.Key,
		"--index", "0",
	)
	out = mustRun(t, dataDir,
		"proposal", "execute",
		"--executor", cliAdmin,
		"--collection", coll.Key,
		"--index", "0",
	)
	var result struct {
		Transfer struct {
			Amount  uint64
			Penalty uint64
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.EqualValues(t, 950, result.Transfer.Amount)
	assert.EqualValues(t, 50, result.Transfer.Penalty)

	out = mustRun(t, dataDir, "collection", "history", coll.Key)
	var journal []struct {
		Sequence  uint64
		Operation string
	}
	require.NoError(t, json.Unmarshal([]byte(out), &journal))
	require.Len(t, journal, 7)
	assert.Equal(t, "execute_proposal", journal[6].Operation)

	out = mustRun(t, dataDir, "collection", "transfers", coll.Key)
	var transfers []struct {
		Amount uint64
	}
	require.NoError(t, json.Unmarshal([]byte(out), &transfers))
	require.Len(t, transfers, 1)
	assert.EqualValues(t, 950, transfers[0].Amount)

	out = mustRun(t, dataDir, "collection", "show", coll.Key)
	var view struct {
		Collection struct {
			TotalBalance uint64
		} `json:"collection"`
		Members []struct {
			TotalPaid uint64
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.EqualValues(t, 50, view.Collection.TotalBalance)
	require.Len(t, view.Members, 1)
	assert.Zero(t, view.Members[0].TotalPaid)
}

func TestCLIInvalidInput(t *testing.T) {
	dataDir := t.TempDir()
	_, err := runCommand(t, dataDir,
		"collection", "create",
		"--name", "missing-admin",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--admin is required")

	_, err = runCommand(t, dataDir, "collection", "show", "zz")
	require.Error(t, err)

	_, err = runCommand(t, dataDir,
		"collection", "show",
		strings.Repeat("00", 32),
	)
	require.ErrorIs(t, err, ledger.ErrCollectionNotFound)
}

func TestCLIHistoryInMemory(t *testing.T) {
	_, err := runCommand(t, "",
		"--in-memory",
		"collection", "history",
		strings.Repeat("00", 32),
	)
	require.ErrorIs(t, err, errNoDatabase)
}

func TestCLIVersion(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version")
	assert.True(t, strings.HasPrefix(out, programName+" "))
}
