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

package rotary

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/rotary/database"
	"github.com/blinklabs-io/rotary/event"
	"github.com/blinklabs-io/rotary/ledger"
)

var ErrAlreadyStarted = errors.New("node already started")

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	ledgerState   *ledger.LedgerState
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	startOnce     sync.Once
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
		done:   make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n.eventBus = event.NewEventBus(cfg.promRegistry, cfg.logger)
	return n, nil
}

// Start brings up tracing, the database and the ledger state. It returns once
// the ledger is ready to accept operations.
func (n *Node) Start(ctx context.Context) error {
	err := ErrAlreadyStarted
	n.startOnce.Do(func() {
		err = n.start(ctx)
	})
	return err
}

func (n *Node) start(ctx context.Context) error {
	// Configure tracing
	if n.config.tracing {
		if err := n.setupTracing(ctx); err != nil {
			return err
		}
	}
	var store ledger.Store
	if !n.config.inMemory {
		db, err := database.New(&database.Config{
			DataDir:      n.config.dataDir,
			Logger:       n.config.logger,
			PromRegistry: n.config.promRegistry,
		})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		n.db = db
		store = db
	}
	state, err := ledger.NewLedgerState(
		ctx,
		ledger.LedgerStateConfig{
			Logger:          n.config.logger,
			EventBus:        n.eventBus,
			PromRegistry:    n.config.promRegistry,
			Store:           store,
			Clock:           n.config.clock,
			WithdrawalRule:  n.config.withdrawalRule,
			ExecutionPolicy: n.config.executionPolicy,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.ledgerState = state
	n.subscribeAudit()
	n.config.logger.Info(
		"ledger ready",
		"component", "node",
		"collections", len(state.Collections()),
		"data_dir", n.config.dataDir,
		"in_memory", n.config.inMemory,
	)
	return nil
}

// Run starts the node and blocks until Stop is called
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}
	<-n.done
	return nil
}

// Ledger returns the ledger state. It is nil until Start succeeds
func (n *Node) Ledger() *ledger.LedgerState {
	return n.ledgerState
}

// Database returns the backing database, or nil in in-memory mode
func (n *Node) Database() *database.Database {
	return n.db
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	ctx, cancel := context.WithTimeout(
		context.Background(),
		n.config.shutdownTimeout,
	)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown", "component", "node")

	// Stop event delivery before the stores go away
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Call registered shutdown functions
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete", "component", "node")
	close(n.done)
	return err
}
