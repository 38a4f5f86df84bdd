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

package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/ledger"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/stretchr/testify/require"
)

const (
	testWeek   = 604800
	testAmount = 100000000
)

var testStart = time.Unix(1700000000, 0)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testStart}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testIdentity(b byte) lcommon.Identity {
	var ret lcommon.Identity
	for i := range ret {
		ret[i] = b
	}
	return ret
}

var (
	testAdmin    = testIdentity(0xa0)
	testUser1    = testIdentity(0x01)
	testUser2    = testIdentity(0x02)
	testSigner1  = testIdentity(0x51)
	testSigner2  = testIdentity(0x52)
	testSigner3  = testIdentity(0x53)
	testOutsider = testIdentity(0xee)
)

func newTestLedger(
	t *testing.T,
	cfg ledger.LedgerStateConfig,
) (*ledger.LedgerState, *testClock) {
	t.Helper()
	clock := newTestClock()
	if cfg.Clock == nil {
		cfg.Clock = clock
	}
	ls, err := ledger.NewLedgerState(context.Background(), cfg)
	require.NoError(t, err)
	return ls, clock
}

func defaultCollectionRequest() ledger.CreateCollectionRequest {
	return ledger.CreateCollectionRequest{
		Admin:           testAdmin,
		Name:            "weekly",
		Duration:        4 * testWeek,
		Period:          testWeek,
		AmountPerPeriod: testAmount,
		TotalMembers:    3,
		PenaltyRate:     5,
	}
}

func createTestCollection(
	t *testing.T,
	ls *ledger.LedgerState,
) *models.Collection {
	t.Helper()
	coll, err := ls.CreateCollection(
		context.Background(),
		defaultCollectionRequest(),
	)
	require.NoError(t, err)
	return coll
}

func addTestUser(
	t *testing.T,
	ls *ledger.LedgerState,
	coll lcommon.Key,
	user lcommon.Identity,
) {
	t.Helper()
	_, err := ls.AddUser(context.Background(), ledger.AddUserRequest{
		Admin:      testAdmin,
		Collection: coll,
		User:       user,
	})
	require.NoError(t, err)
}

func createTestMultisig(
	t *testing.T,
	ls *ledger.LedgerState,
	coll lcommon.Key,
	threshold uint32,
) *models.Multisig {
	t.Helper()
	ms, err := ls.CreateMultisig(
		context.Background(),
		ledger.CreateMultisigRequest{
			Admin:      testAdmin,
			Collection: coll,
			Signers:    []lcommon.Identity{testSigner1, testSigner2, testSigner3},
			Threshold:  threshold,
		},
	)
	require.NoError(t, err)
	return ms
}

// setupWithdrawal builds a collection with one paying member, a 2 of 3
// multisig and an open early withdrawal proposal for that member
func setupWithdrawal(
	t *testing.T,
	cfg ledger.LedgerStateConfig,
) (*ledger.LedgerState, *models.Collection, *models.Proposal) {
	t.Helper()
	ls, _ := newTestLedger(t, cfg)
	coll := createTestCollection(t, ls)
	addTestUser(t, ls, coll.Key, testUser1)
	_, err := ls.Pay(context.Background(), ledger.PayRequest{
		User:       testUser1,
		Collection: coll.Key,
		Amount:     testAmount,
	})
	require.NoError(t, err)
	createTestMultisig(t, ls, coll.Key, 2)
	proposal, err := ls.CreateProposal(
		context.Background(),
		ledger.CreateProposalRequest{
			Proposer:   testUser1,
			Collection: coll.Key,
			Action: ledger.EarlyWithdrawalAction{
				User:   testUser1,
				Amount: testAmount,
			},
		},
	)
	require.NoError(t, err)
	return ls, coll, proposal
}

func vote(
	t *testing.T,
	ls *ledger.LedgerState,
	coll lcommon.Key,
	index uint64,
	signer lcommon.Identity,
	approve bool,
) *models.Proposal {
	t.Helper()
	p, err := ls.VoteOnProposal(context.Background(), ledger.VoteRequest{
		Signer:     signer,
		Collection: coll,
		Index:      index,
		Approve:    approve,
	})
	require.NoError(t, err)
	return p
}
