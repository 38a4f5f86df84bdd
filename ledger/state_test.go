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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/event"
	"github.com/blinklabs-io/rotary/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestStore = errors.New("store unavailable")

// memoryStore keeps the latest version of every entity, like the database store does
type memoryStore struct {
	mu          sync.Mutex
	fail        bool
	changesets  []*models.Changeset
	collections map[string]*models.Collection
	members     map[string]*models.Member
	multisigs   map[string]*models.Multisig
	proposals   map[string]*models.Proposal
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		collections: make(map[string]*models.Collection),
		members:     make(map[string]*models.Member),
		multisigs:   make(map[string]*models.Multisig),
		proposals:   make(map[string]*models.Proposal),
	}
}

func (s *memoryStore) ApplyChangeset(
	_ context.Context,
	cs *models.Changeset,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errTestStore
	}
	s.changesets = append(s.changesets, cs)
	s.collections[cs.Collection.Key.String()] = cs.Collection.Clone()
	for _, m := range cs.Members {
		s.members[m.Key.String()] = m.Clone()
	}
	if cs.Multisig != nil {
		s.multisigs[cs.Multisig.Key.String()] = cs.Multisig.Clone()
	}
	for _, p := range cs.Proposals {
		s.proposals[p.Key.String()] = p.Clone()
	}
	return nil
}

func (s *memoryStore) LoadState(_ context.Context) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := &models.Snapshot{}
	for _, c := range s.collections {
		ret.Collections = append(ret.Collections, c.Clone())
	}
	for _, m := range s.members {
		ret.Members = append(ret.Members, m.Clone())
	}
	for _, ms := range s.multisigs {
		ret.Multisigs = append(ret.Multisigs, ms.Clone())
	}
	for _, p := range s.proposals {
		ret.Proposals = append(ret.Proposals, p.Clone())
	}
	return ret, nil
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	store := newMemoryStore()
	ls, _, proposal := setupWithdrawal(t, ledger.LedgerStateConfig{Store: store})
	coll := proposal.CollectionKey
	vote(t, ls, coll, proposal.Index, testSigner1, true)
	vote(t, ls, coll, proposal.Index, testSigner2, true)
	beforeColl, err := ls.Collection(coll)
	require.NoError(t, err)
	beforeMember, err := ls.Member(coll, testUser1)
	require.NoError(t, err)

	store.mu.Lock()
	store.fail = true
	store.mu.Unlock()
	_, err = ls.ExecuteProposal(context.Background(), ledger.ExecuteRequest{
		Executor:   testAdmin,
		Collection: coll,
		Index:      proposal.Index,
	})
	require.ErrorIs(t, err, errTestStore)

	afterColl, err := ls.Collection(coll)
	require.NoError(t, err)
	assert.Equal(t, beforeColl, afterColl)
	afterMember, err := ls.Member(coll, testUser1)
	require.NoError(t, err)
	assert.Equal(t, beforeMember, afterMember)
	p, err := ls.Proposal(coll, proposal.Index)
	require.NoError(t, err)
	assert.False(t, p.Executed)
}

func TestInactiveCollectionRejectsOperations(t *testing.T) {
	store := newMemoryStore()
	ls, _ := newTestLedger(t, ledger.LedgerStateConfig{Store: store})
	coll := createTestCollection(t, ls)
	addTestUser(t, ls, coll.Key, testUser1)
	createTestMultisig(t, ls, coll.Key, 2)
	store.mu.Lock()
	store.collections[coll.Key.String()].IsActive = false
	store.mu.Unlock()

	ls, _ = newTestLedger(t, ledger.LedgerStateConfig{Store: store})
	beforeColl, err := ls.Collection(coll.Key)
	require.NoError(t, err)
	require.False(t, beforeColl.IsActive)
	beforeMembers, err := ls.Members(coll.Key)
	require.NoError(t, err)
	beforeMultisig, err := ls.Multisig(coll.Key)
	require.NoError(t, err)
	beforeChangesets := len(store.changesets)

	testDefs := []struct {
		name string
		run  func() error
	}{
		{
			name: "add user",
			run: func() error {
				_, err := ls.AddUser(context.Background(), ledger.AddUserRequest{
					Admin:      testAdmin,
					Collection: coll.Key,
					User:       testUser2,
				})
				return err
			},
		},
		{
			name: "pay",
			run: func() error {
				_, err := ls.Pay(context.Background(), ledger.PayRequest{
					User:       testUser1,
					Collection: coll.Key,
					Amount:     testAmount,
				})
				return err
			},
		},
		{
			name: "create proposal",
			run: func() error {
				_, err := ls.CreateProposal(
					context.Background(),
					ledger.CreateProposalRequest{
						Proposer:   testUser1,
						Collection: coll.Key,
						Action:     ledger.EarlyWithdrawalAction{User: testUser1},
					},
				)
				return err
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			require.ErrorIs(t, testDef.run(), ledger.ErrCollectionInactive)
		})
	}

	afterColl, err := ls.Collection(coll.Key)
	require.NoError(t, err)
	assert.Equal(t, beforeColl, afterColl)
	afterMembers, err := ls.Members(coll.Key)
	require.NoError(t, err)
	assert.Equal(t, beforeMembers, afterMembers)
	afterMultisig, err := ls.Multisig(coll.Key)
	require.NoError(t, err)
	assert.Equal(t, beforeMultisig, afterMultisig)
	proposals, err := ls.Proposals(coll.Key)
	require.NoError(t, err)
	assert.Empty(t, proposals)
	assert.Len(t, store.changesets, beforeChangesets)
}

func TestStoreJournalSequence(t *testing.T) {
	store := newMemoryStore()
	setupWithdrawal(t, ledger.LedgerStateConfig{Store: store})
	ops := make([]string, 0, len(store.changesets))
	for i, cs := range store.changesets {
		assert.EqualValues(t, i+1, cs.Journal.Sequence)
		assert.Equal(t, cs.Collection.Key, cs.Journal.Collection)
		ops = append(ops, cs.Journal.Operation)
	}
	assert.Equal(
		t,
		[]string{
			"create_collection",
			"add_user",
			"pay",
			"create_multisig",
			"create_proposal",
		},
		ops,
	)
}

func TestReloadFromStore(t *testing.T) {
	store := newMemoryStore()
	ls, _, proposal := setupWithdrawal(t, ledger.LedgerStateConfig{Store: store})
	coll := proposal.CollectionKey
	vote(t, ls, coll, proposal.Index, testSigner1, true)

	reloaded, _ := newTestLedger(t, ledger.LedgerStateConfig{Store: store})
	origColl, err := ls.Collection(coll)
	require.NoError(t, err)
	newColl, err := reloaded.Collection(coll)
	require.NoError(t, err)
	assert.Equal(t, origColl, newColl)
	origMembers, err := ls.Members(coll)
	require.NoError(t, err)
	newMembers, err := reloaded.Members(coll)
	require.NoError(t, err)
	assert.Equal(t, origMembers, newMembers)
	origProposals, err := ls.Proposals(coll)
	require.NoError(t, err)
	newProposals, err := reloaded.Proposals(coll)
	require.NoError(t, err)
	assert.Equal(t, origProposals, newProposals)

	// The reloaded ledger continues where the original left off
	p := vote(t, reloaded, coll, proposal.Index, testSigner2, true)
	assert.Equal(t, 2, p.Approvals.Count())
}

func TestLedgerEvents(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, transferCh := eb.Subscribe(ledger.TransferEventType)
	_, paymentCh := eb.Subscribe(ledger.PaymentAcceptedEventType)
	ls, coll, proposal := setupWithdrawal(
		t,
		ledger.LedgerStateConfig{EventBus: eb},
	)
	select {
	case evt := <-paymentCh:
		data, ok := evt.Data.(ledger.PaymentAcceptedEvent)
		require.True(t, ok)
		assert.EqualValues(t, testAmount, data.Amount)
		assert.Equal(t, testUser1, data.Member.User)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for payment event")
	}
	vote(t, ls, coll.Key, proposal.Index, testSigner1, true)
	vote(t, ls, coll.Key, proposal.Index, testSigner2, true)
	_, err := ls.ExecuteProposal(context.Background(), ledger.ExecuteRequest{
		Executor:   testAdmin,
		Collection: coll.Key,
		Index:      proposal.Index,
	})
	require.NoError(t, err)
	select {
	case evt := <-transferCh:
		data, ok := evt.Data.(ledger.TransferEvent)
		require.True(t, ok)
		assert.Equal(t, testUser1, data.Transfer.Recipient)
		assert.EqualValues(t, 95000000, data.Transfer.Amount)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for transfer event")
	}
}

func TestLedgerStalledSubscriber(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	// Nothing ever reads from this channel
	_, _ = eb.Subscribe(ledger.CollectionCreatedEventType)
	ls, _ := newTestLedger(t, ledger.LedgerStateConfig{EventBus: eb})
	done := make(chan int, 1)
	go func() {
		created := 0
		for i := range 2 * event.EventQueueSize {
			req := defaultCollectionRequest()
			req.Name = fmt.Sprintf("collection-%d", i)
			if _, err := ls.CreateCollection(context.Background(), req); err != nil {
				break
			}
			created++
		}
		done <- created
	}()
	select {
	case created := <-done:
		assert.Equal(t, 2*event.EventQueueSize, created)
	case <-time.After(2 * time.Second):
		t.Fatal("ledger operations blocked on an undrained subscriber")
	}
	assert.Len(t, ls.Collections(), 2*event.EventQueueSize)
}

func TestLedgerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ls, coll, _ := setupWithdrawal(
		t,
		ledger.LedgerStateConfig{PromRegistry: reg},
	)
	_, err := ls.Pay(context.Background(), ledger.PayRequest{
		User:       testUser1,
		Collection: coll.Key,
		Amount:     testAmount,
	})
	require.ErrorIs(t, err, ledger.ErrTooEarlyForNextPayment)
	count, err := testutil.GatherAndCount(reg, "rotary_ledger_operations_total")
	require.NoError(t, err)
	// create_collection, add_user, pay ok, create_multisig, create_proposal, pay error
	assert.Equal(t, 6, count)
	count, err = testutil.GatherAndCount(reg, "rotary_ledger_open_proposals")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
