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

package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/blinklabs-io/rotary/database/models"
	"github.com/blinklabs-io/rotary/event"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/rotary/ledger"

// Store persists committed transitions. A transition is only applied in
// memory after ApplyChangeset succeeds.
type Store interface {
	ApplyChangeset(ctx context.Context, changeset *models.Changeset) error
	LoadState(ctx context.Context) (*models.Snapshot, error)
}

type LedgerStateConfig struct {
	Logger          *slog.Logger
	EventBus        *event.EventBus
	PromRegistry    prometheus.Registerer
	Store           Store
	Clock           Clock
	WithdrawalRule  WithdrawalRule
	ExecutionPolicy ExecutionPolicy
}

// collectionState holds everything owned by one collection. Its mutex
// serializes all transitions on the collection.
type collectionState struct {
	sync.Mutex
	collection  *models.Collection
	members     map[lcommon.Identity]*models.Member
	memberOrder []lcommon.Identity
	multisig    *models.Multisig
	proposals   []*models.Proposal
}

func newCollectionState(collection *models.Collection) *collectionState {
	return &collectionState{
		collection: collection,
		members:    make(map[lcommon.Identity]*models.Member),
	}
}

type LedgerState struct {
	sync.RWMutex
	config      LedgerStateConfig
	metrics     stateMetrics
	tracer      trace.Tracer
	collections map[lcommon.Key]*collectionState
}

func NewLedgerState(
	ctx context.Context,
	cfg LedgerStateConfig,
) (*LedgerState, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.WithdrawalRule == nil {
		cfg.WithdrawalRule = FullCycleRule
	}
	ls := &LedgerState{
		config:      cfg,
		tracer:      otel.Tracer(tracerName),
		collections: make(map[lcommon.Key]*collectionState),
	}
	ls.metrics.init(cfg.PromRegistry)
	if cfg.Store != nil {
		if err := ls.load(ctx); err != nil {
			return nil, fmt.Errorf("load ledger state: %w", err)
		}
	}
	return ls, nil
}

func (ls *LedgerState) load(ctx context.Context) error {
	snapshot, err := ls.config.Store.LoadState(ctx)
	if err != nil {
		return err
	}
	for _, c := range snapshot.Collections {
		ls.collections[c.Key] = newCollectionState(c)
	}
	for _, m := range snapshot.Members {
		cs, ok := ls.collections[m.CollectionKey]
		if !ok {
			return fmt.Errorf("member %s references unknown collection", m.Key)
		}
		cs.members[m.User] = m
		cs.memberOrder = append(cs.memberOrder, m.User)
	}
	for _, ms := range snapshot.Multisigs {
		cs, ok := ls.collections[ms.CollectionKey]
		if !ok {
			return fmt.Errorf("multisig %s references unknown collection", ms.Key)
		}
		cs.multisig = ms
	}
	proposals := slices.Clone(snapshot.Proposals)
	slices.SortFunc(proposals, func(a, b *models.Proposal) int {
		if a.Index < b.Index {
			return -1
		}
		if a.Index > b.Index {
			return 1
		}
		return 0
	})
	for _, p := range proposals {
		cs, ok := ls.collections[p.CollectionKey]
		if !ok {
			return fmt.Errorf("proposal %s references unknown collection", p.Key)
		}
		if p.Index != uint64(len(cs.proposals)) {
			return fmt.Errorf(
				"proposal index gap in collection %s: expected %d, got %d",
				p.CollectionKey,
				len(cs.proposals),
				p.Index,
			)
		}
		cs.proposals = append(cs.proposals, p)
		if !p.Executed {
			ls.metrics.openProposals.Inc()
		}
	}
	ls.metrics.collections.Set(float64(len(ls.collections)))
	ls.config.Logger.Info(
		fmt.Sprintf("loaded %d collections", len(ls.collections)),
		"component", "ledger",
	)
	return nil
}

// transition accumulates the copies of every entity touched by a ledger
// operation. Nothing is visible to other callers until commit.
type transition struct {
	operation  string
	actor      lcommon.Identity
	now        int64
	collection *models.Collection
	members    []*models.Member
	multisig   *models.Multisig
	proposals  []*models.Proposal
	transfers  []*models.Transfer
	events     []event.Event
}

func (t *transition) addEvent(eventType event.EventType, data any) {
	t.events = append(t.events, event.NewEvent(eventType, data))
}

func (ls *LedgerState) newTransition(
	operation string,
	actor lcommon.Identity,
) *transition {
	return &transition{
		operation: operation,
		actor:     actor,
		now:       ls.config.Clock.Now().Unix(),
	}
}

// commit persists the transition and installs its entities in memory
func (ls *LedgerState) commit(
	ctx context.Context,
	cs *collectionState,
	t *transition,
) error {
	t.collection.Sequence++
	keys := []lcommon.Key{t.collection.Key}
	for _, m := range t.members {
		keys = append(keys, m.Key)
	}
	if t.multisig != nil {
		keys = append(keys, t.multisig.Key)
	}
	for _, p := range t.proposals {
		keys = append(keys, p.Key)
	}
	changeset := &models.Changeset{
		Collection: t.collection,
		Members:    t.members,
		Multisig:   t.multisig,
		Proposals:  t.proposals,
		Transfers:  t.transfers,
		Journal: models.JournalEntry{
			Sequence:   t.collection.Sequence,
			Operation:  t.operation,
			Actor:      t.actor,
			Collection: t.collection.Key,
			Timestamp:  t.now,
			Keys:       keys,
		},
	}
	if ls.config.Store != nil {
		if err := ls.config.Store.ApplyChangeset(ctx, changeset); err != nil {
			return fmt.Errorf("persist %s: %w", t.operation, err)
		}
	}
	cs.collection = t.collection
	for _, m := range t.members {
		if _, ok := cs.members[m.User]; !ok {
			cs.memberOrder = append(cs.memberOrder, m.User)
		}
		cs.members[m.User] = m
	}
	if t.multisig != nil {
		cs.multisig = t.multisig
	}
	for _, p := range t.proposals {
		if p.Index < uint64(len(cs.proposals)) {
			cs.proposals[p.Index] = p
		} else {
			cs.proposals = append(cs.proposals, p)
		}
	}
	return nil
}

// observe runs a ledger operation inside a trace span, records its outcome
// and publishes its events once the collection lock has been released
func (ls *LedgerState) observe(
	ctx context.Context,
	operation string,
	collection lcommon.Key,
	fn func(context.Context) (*transition, error),
) error {
	ctx, span := ls.tracer.Start(
		ctx,
		"ledger."+operation,
		trace.WithAttributes(
			attribute.String("collection", collection.String()),
		),
	)
	defer span.End()
	t, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.metrics.operations.WithLabelValues(operation, "error").Inc()
		ls.config.Logger.Debug(
			"ledger operation rejected",
			"component", "ledger",
			"operation", operation,
			"collection", collection.String(),
			"error", err,
		)
		return err
	}
	ls.metrics.operations.WithLabelValues(operation, "ok").Inc()
	span.SetAttributes(
		attribute.Int64("sequence", int64(t.collection.Sequence)), //nolint:gosec
	)
	ls.config.Logger.Debug(
		"ledger operation applied",
		"component", "ledger",
		"operation", operation,
		"collection", collection.String(),
		"sequence", t.collection.Sequence,
	)
	// Events are queued for the bus workers so a slow subscriber never
	// holds up the caller
	if ls.config.EventBus != nil {
		for _, evt := range t.events {
			ls.config.EventBus.PublishAsync(evt.Type, evt)
		}
	}
	return nil
}

func (ls *LedgerState) collectionState(
	key lcommon.Key,
) (*collectionState, error) {
	ls.RLock()
	defer ls.RUnlock()
	cs, ok := ls.collections[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, key)
	}
	return cs, nil
}

// Collection returns a copy of the collection with the given key
func (ls *LedgerState) Collection(
	key lcommon.Key,
) (*models.Collection, error) {
	cs, err := ls.collectionState(key)
	if err != nil {
		return nil, err
	}
	cs.Lock()
	defer cs.Unlock()
	return cs.collection.Clone(), nil
}

// Collections returns copies of all collections
func (ls *LedgerState) Collections() []*models.Collection {
	ls.RLock()
	states := make([]*collectionState, 0, len(ls.collections))
	for _, cs := range ls.collections {
		states = append(states, cs)
	}
	ls.RUnlock()
	ret := make([]*models.Collection, 0, len(states))
	for _, cs := range states {
		cs.Lock()
		ret = append(ret, cs.collection.Clone())
		cs.Unlock()
	}
	slices.SortFunc(ret, func(a, b *models.Collection) int {
		if a.CreatedAt != b.CreatedAt {
			if a.CreatedAt < b.CreatedAt {
				return -1
			}
			return 1
		}
		return slices.Compare(a.Key[:], b.Key[:])
	})
	return ret
}

// Member returns a copy of a user's membership record
func (ls *LedgerState) Member(
	collection lcommon.Key,
	user lcommon.Identity,
) (*models.Member, error) {
	cs, err := ls.collectionState(collection)
	if err != nil {
		return nil, err
	}
	cs.Lock()
	defer cs.Unlock()
	m, ok := cs.members[user]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUser, user)
	}
	return m.Clone(), nil
}

// Members returns copies of the collection's members in the order they joined
func (ls *LedgerState) Members(
	collection lcommon.Key,
) ([]*models.Member, error) {
	cs, err := ls.collectionState(collection)
	if err != nil {
		return nil, err
	}
	cs.Lock()
	defer cs.Unlock()
	ret := make([]*models.Member, 0, len(cs.memberOrder))
	for _, user := range cs.memberOrder {
		ret = append(ret, cs.members[user].Clone())
	}
	return ret, nil
}

// Multisig returns a copy of the collection's multisig
func (ls *LedgerState) Multisig(
	collection lcommon.Key,
) (*models.Multisig, error) {
	cs, err := ls.collectionState(collection)
	if err != nil {
		return nil, err
	}
	cs.Lock()
	defer cs.Unlock()
	if cs.multisig == nil {
		return nil, fmt.Errorf("%w: %s", ErrMultisigNotFound, collection)
	}
	return cs.multisig.Clone(), nil
}

// Proposal returns a copy of the proposal with the given index
func (ls *LedgerState) Proposal(
	collection lcommon.Key,
	index uint64,
) (*models.Proposal, error) {
	cs, err := ls.collectionState(collection)
	if err != nil {
		return nil, err
	}
	cs.Lock()
	defer cs.Unlock()
	if index >= uint64(len(cs.proposals)) {
		return nil, fmt.Errorf("%w: index %d", ErrProposalNotFound, index)
	}
	return cs.proposals[index].Clone(), nil
}

// Proposals returns copies of all proposals of the collection in index order
func (ls *LedgerState) Proposals(
	collection lcommon.Key,
) ([]*models.Proposal, error) {
	cs, err := ls.collectionState(collection)
	if err != nil {
		return nil, err
	}
	cs.Lock()
	defer cs.Unlock()
	ret := make([]*models.Proposal, 0, len(cs.proposals))
	for _, p := range cs.proposals {
		ret = append(ret, p.Clone())
	}
	return ret, nil
}
