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
	"testing"
	"time"

	"github.com/blinklabs-io/rotary/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.withdrawalRule)
	assert.Equal(t, ledger.ExecutionPolicyAdminOrSigner, cfg.executionPolicy)
	assert.Equal(t, DefaultShutdownTimeout, cfg.shutdownTimeout)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.tracing)
}

func TestNewConfigOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := NewConfig(
		WithDatabasePath("/tmp/rotary"),
		WithPrometheusRegistry(reg),
		WithExecutionPolicy(ledger.ExecutionPolicySignerOnly),
		WithWithdrawalRule(ledger.CoveredDurationRule),
		WithTracing(true),
		WithTracingStdout(true),
		WithTracingEndpoint("http://localhost:4318"),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Equal(t, "/tmp/rotary", cfg.dataDir)
	assert.Equal(t, reg, cfg.promRegistry)
	assert.Equal(t, ledger.ExecutionPolicySignerOnly, cfg.executionPolicy)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, "http://localhost:4318", cfg.tracingEndpoint)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}

func TestConfigValidate(t *testing.T) {
	testDefs := []struct {
		name    string
		opts    []ConfigOptionFunc
		wantErr string
	}{
		{
			name: "defaults",
		},
		{
			name: "in-memory with path",
			opts: []ConfigOptionFunc{
				WithInMemory(true),
				WithDatabasePath("/tmp/rotary"),
			},
			wantErr: "in-memory",
		},
		{
			name: "unknown execution policy",
			opts: []ConfigOptionFunc{
				WithExecutionPolicy(ledger.ExecutionPolicy(42)),
			},
			wantErr: "execution policy",
		},
		{
			name:    "stdout tracing without tracing",
			opts:    []ConfigOptionFunc{WithTracingStdout(true)},
			wantErr: "stdout tracing",
		},
		{
			name:    "negative shutdown timeout",
			opts:    []ConfigOptionFunc{WithShutdownTimeout(-time.Second)},
			wantErr: "shutdown timeout",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			n, err := New(NewConfig(testDef.opts...))
			if testDef.wantErr == "" {
				require.NoError(t, err)
				require.NoError(t, n.Stop())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), testDef.wantErr)
		})
	}
}
