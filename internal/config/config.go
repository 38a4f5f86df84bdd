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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/rotary/internal/sops"
	"github.com/blinklabs-io/rotary/ledger"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "rotary.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultWithdrawalRule  = "full-cycle"
	DefaultExecutionPolicy = "admin-or-signer"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config yaml.Node `yaml:"config,omitempty"`
}

type Config struct {
	DatabasePath    string `yaml:"databasePath"    split_words:"true"`
	BindAddr        string `yaml:"bindAddr"        split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout" split_words:"true"`
	WithdrawalRule  string `yaml:"withdrawalRule"  split_words:"true"`
	ExecutionPolicy string `yaml:"executionPolicy" split_words:"true"`
	TracingEndpoint string `yaml:"tracingEndpoint" split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"     split_words:"true"`
	InMemory        bool   `yaml:"inMemory"        split_words:"true"`
	Tracing         bool   `yaml:"tracing"`
	TracingStdout   bool   `yaml:"tracingStdout"   split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    ".rotary",
		BindAddr:        "127.0.0.1",
		MetricsPort:     12799,
		ShutdownTimeout: DefaultShutdownTimeout,
		WithdrawalRule:  DefaultWithdrawalRule,
		ExecutionPolicy: DefaultExecutionPolicy,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.rotary/rotary.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".rotary", "rotary.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/rotary/rotary.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/rotary/rotary.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if sops.IsEncrypted(buf) {
			buf, err = sops.Decrypt(buf)
			if err != nil {
				return nil, fmt.Errorf("error decrypting config file: %w", err)
			}
		}

		var tempCfg tempConfig
		err = yaml.Unmarshal(buf, &tempCfg)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}

		// If config section exists, use it for main config
		if tempCfg.Config.Kind != 0 {
			// Overlay only the keys present in the section onto the defaults
			err = tempCfg.Config.Decode(globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			err = yaml.Unmarshal(buf, globalConfig)
			if err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}
	// Process environment variables
	err := envconfig.Process("rotary", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := globalConfig.Validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

// Validate checks the values which are parsed later when building the node
func (c *Config) Validate() error {
	if _, err := c.ParsedShutdownTimeout(); err != nil {
		return err
	}
	if _, err := c.ParsedWithdrawalRule(); err != nil {
		return fmt.Errorf("invalid withdrawalRule: %w", err)
	}
	if _, err := c.ParsedExecutionPolicy(); err != nil {
		return fmt.Errorf("invalid executionPolicy: %w", err)
	}
	if c.TracingStdout && !c.Tracing {
		return errors.New("tracingStdout requires tracing to be enabled")
	}
	return nil
}

func (c *Config) ParsedShutdownTimeout() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	timeout, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf(
			"invalid shutdownTimeout %q: %w",
			c.ShutdownTimeout,
			err,
		)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf(
			"invalid shutdownTimeout %q: must be positive",
			c.ShutdownTimeout,
		)
	}
	return timeout, nil
}

func (c *Config) ParsedWithdrawalRule() (ledger.WithdrawalRule, error) {
	return ledger.WithdrawalRuleByName(c.WithdrawalRule)
}

func (c *Config) ParsedExecutionPolicy() (ledger.ExecutionPolicy, error) {
	return ledger.ParseExecutionPolicy(c.ExecutionPolicy)
}

func GetConfig() *Config {
	return globalConfig
}
