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

package node

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/rotary/internal/config"
	"github.com/blinklabs-io/rotary/ledger"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOpenPersistent(t *testing.T) {
	cfg := &config.Config{
		DatabasePath:    t.TempDir(),
		ShutdownTimeout: "5s",
		WithdrawalRule:  config.DefaultWithdrawalRule,
		ExecutionPolicy: config.DefaultExecutionPolicy,
	}
	n, err := Open(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	coll, err := n.Ledger().CreateCollection(
		context.Background(),
		ledger.CreateCollectionRequest{
			Admin:           lcommon.Identity{0x01},
			Name:            "weekly",
			Duration:        4 * 604800,
			Period:          604800,
			AmountPerPeriod: 100,
			TotalMembers:    4,
		},
	)
	require.NoError(t, err)
	require.NoError(t, n.Stop())

	n, err = Open(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer n.Stop() //nolint:errcheck
	stored, err := n.Ledger().Collection(coll.Key)
	require.NoError(t, err)
	assert.Equal(t, coll.Name, stored.Name)
}

func TestOpenInMemory(t *testing.T) {
	cfg := &config.Config{
		DatabasePath: ".rotary",
		InMemory:     true,
	}
	n, err := Open(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer n.Stop() //nolint:errcheck
	assert.Nil(t, n.Database())
	assert.Empty(t, n.Ledger().Collections())
}

func TestOpenInvalidConfig(t *testing.T) {
	testDefs := []struct {
		name string
		cfg  *config.Config
	}{
		{
			name: "shutdown timeout",
			cfg:  &config.Config{InMemory: true, ShutdownTimeout: "never"},
		},
		{
			name: "withdrawal rule",
			cfg:  &config.Config{InMemory: true, WithdrawalRule: "whenever"},
		},
		{
			name: "execution policy",
			cfg:  &config.Config{InMemory: true, ExecutionPolicy: "anyone"},
		},
		{
			name: "stdout tracing",
			cfg:  &config.Config{InMemory: true, TracingStdout: true},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := Open(context.Background(), testDef.cfg, testLogger())
			require.Error(t, err)
		})
	}
}
