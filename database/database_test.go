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

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/rotary/database"
	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/database/types"
	"github.com/blinklabs-io/rotary/ledger"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

var (
	testAdmin  = lcommon.Identity{0xa0}
	testUser   = lcommon.Identity{0x01}
	testSigner = lcommon.Identity{0x51}
)

func setupTestDatabase(t *testing.T, dataDir string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	return db
}

func newTestLedger(
	t *testing.T,
	db *database.Database,
	clock ledger.Clock,
) *ledger.LedgerState {
	t.Helper()
	ls, err := ledger.NewLedgerState(
		context.Background(),
		ledger.LedgerStateConfig{Store: db, Clock: clock},
	)
	require.NoError(t, err)
	return ls
}

// runScenario creates a collection with one member who pays once and then
// withdraws early through a 1 of 1 multisig
func runScenario(t *testing.T, ls *ledger.LedgerState) *models.Collection {
	t.Helper()
	ctx := context.Background()
	coll, err := ls.CreateCollection(ctx, ledger.CreateCollectionRequest{
		Admin:           testAdmin,
		Name:            "monthly",
		Duration:        3600,
		Period:          60,
		AmountPerPeriod: 1000,
		TotalMembers:    2,
		PenaltyRate:     10,
	})
	require.NoError(t, err)
	_, err = ls.AddUser(ctx, ledger.AddUserRequest{
		Admin:      testAdmin,
		Collection: coll.Key,
		User:       testUser,
	})
	require.NoError(t, err)
	_, err = ls.Pay(ctx, ledger.PayRequest{
		User:       testUser,
		Collection: coll.Key,
		Amount:     1000,
	})
	require.NoError(t, err)
	_, err = ls.CreateMultisig(ctx, ledger.CreateMultisigRequest{
		Admin:      testAdmin,
		Collection: coll.Key,
		Signers:    []lcommon.Identity{testSigner},
		Threshold:  1,
	})
	require.NoError(t, err)
	_, err = ls.CreateProposal(ctx, ledger.CreateProposalRequest{
		Proposer:   testUser,
		Collection: coll.Key,
		Action:     ledger.EarlyWithdrawalAction{User: testUser, Amount: 1000},
	})
	require.NoError(t, err)
	_, err = ls.VoteOnProposal(ctx, ledger.VoteRequest{
		Signer:     testSigner,
		Collection: coll.Key,
		Index:      0,
		Approve:    true,
	})
	require.NoError(t, err)
	_, err = ls.ExecuteProposal(ctx, ledger.ExecuteRequest{
		Executor:   testSigner,
		Collection: coll.Key,
		Index:      0,
	})
	require.NoError(t, err)
	return coll
}

func TestDatabaseInMemory(t *testing.T) {
	db := setupTestDatabase(t, "")
	defer db.Close()
	clock := &fixedClock{now: time.Unix(1700000000, 0)}
	ls := newTestLedger(t, db, clock)
	coll := runScenario(t, ls)

	snapshot, err := db.LoadState(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Collections, 1)
	assert.EqualValues(t, 100, snapshot.Collections[0].TotalBalance)
	assert.EqualValues(t, 7, snapshot.Collections[0].Sequence)
	require.Len(t, snapshot.Members, 1)
	assert.Zero(t, snapshot.Members[0].TotalPaid)
	require.Len(t, snapshot.Proposals, 1)
	assert.True(t, snapshot.Proposals[0].Executed)
	assert.Equal(t, types.Approvals{true}, snapshot.Proposals[0].Approvals)
	require.Len(t, snapshot.Multisigs, 1)
	assert.Equal(
		t,
		types.IdentityList{testSigner},
		snapshot.Multisigs[0].Signers,
	)

	transfers, err := db.Transfers(context.Background(), coll.Key)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, testUser, transfers[0].Recipient)
	assert.EqualValues(t, 900, transfers[0].Amount)
	assert.EqualValues(t, 100, transfers[0].Penalty)

	journal, err := db.Journal(coll.Key)
	require.NoError(t, err)
	ops := make([]string, 0, len(journal))
	for i, entry := range journal {
		assert.EqualValues(t, i+1, entry.Sequence)
		ops = append(ops, entry.Operation)
	}
	assert.Equal(
		t,
		[]string{
			"create_collection",
			"add_user",
			"pay",
			"create_multisig",
			"create_proposal",
			"vote",
			"execute_proposal",
		},
		ops,
	)
	assert.Equal(t, testSigner, journal[6].Actor)
}

func TestDatabaseInMemoryIsolated(t *testing.T) {
	db1 := setupTestDatabase(t, "")
	defer db1.Close()
	db2 := setupTestDatabase(t, "")
	defer db2.Close()
	ls := newTestLedger(t, db1, &fixedClock{now: time.Unix(1, 0)})
	runScenario(t, ls)
	snapshot, err := db2.LoadState(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot.Collections)
}

func TestDatabasePersistence(t *testing.T) {
	dataDir := t.TempDir()
	clock := &fixedClock{now: time.Unix(1700000000, 0)}
	db := setupTestDatabase(t, dataDir)
	ls := newTestLedger(t, db, clock)
	coll := runScenario(t, ls)
	origMembers, err := ls.Members(coll.Key)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db = setupTestDatabase(t, dataDir)
	defer db.Close()
	reloaded := newTestLedger(t, db, clock)
	stored, err := reloaded.Collection(coll.Key)
	require.NoError(t, err)
	assert.EqualValues(t, 100, stored.TotalBalance)
	members, err := reloaded.Members(coll.Key)
	require.NoError(t, err)
	assert.Equal(t, origMembers, members)
	_, err = reloaded.ExecuteProposal(
		context.Background(),
		ledger.ExecuteRequest{
			Executor:   testSigner,
			Collection: coll.Key,
			Index:      0,
		},
	)
	require.ErrorIs(t, err, ledger.ErrAlreadyExecuted)

	// The member can pay again after a period and the journal continues
	clock.now = clock.now.Add(time.Minute)
	_, err = reloaded.Pay(context.Background(), ledger.PayRequest{
		User:       testUser,
		Collection: coll.Key,
		Amount:     1000,
	})
	require.NoError(t, err)
	journal, err := db.Journal(coll.Key)
	require.NoError(t, err)
	require.Len(t, journal, 8)
	assert.EqualValues(t, 8, journal[7].Sequence)
}

func TestDatabaseCommitTimestampRecovery(t *testing.T) {
	dataDir := t.TempDir()
	db := setupTestDatabase(t, dataDir)
	ls := newTestLedger(t, db, &fixedClock{now: time.Unix(1700000000, 0)})
	coll := runScenario(t, ls)

	// Simulate a blob commit whose metadata commit never happened
	staleEntry, err := cbor.Marshal(models.JournalEntry{
		Sequence:   8,
		Operation:  "pay",
		Collection: coll.Key,
	})
	require.NoError(t, err)
	txn := db.Blob().NewTransaction(true)
	require.NoError(
		t,
		db.Blob().Set(txn, types.JournalBlobKey(coll.Key, 8), staleEntry),
	)
	require.NoError(t, db.Blob().SetCommitTimestamp(1, txn))
	require.NoError(t, txn.Commit())
	require.NoError(t, db.Close())

	db = setupTestDatabase(t, dataDir)
	defer db.Close()
	journal, err := db.Journal(coll.Key)
	require.NoError(t, err)
	assert.Len(t, journal, 7)
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, metadataTs, blobTs)
}

func TestTxnRollback(t *testing.T) {
	db := setupTestDatabase(t, "")
	defer db.Close()
	key := types.JournalBlobKey(lcommon.Key{0x01}, 1)
	txn := db.Transaction(true)
	require.NoError(t, db.Blob().Set(txn.Blob(), key, []byte("value")))
	require.NoError(t, txn.Rollback())
	// Rollback is idempotent and commit after finish is a no-op
	require.NoError(t, txn.Rollback())
	require.NoError(t, txn.Commit())

	readTxn := db.Blob().NewTransaction(false)
	defer readTxn.Rollback() //nolint:errcheck
	_, err := db.Blob().Get(readTxn, key)
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}
