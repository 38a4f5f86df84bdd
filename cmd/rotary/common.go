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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/rotary"
	"github.com/blinklabs-io/rotary/internal/config"
	"github.com/blinklabs-io/rotary/internal/node"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/spf13/cobra"
)

// withNode opens the node for the duration of a single command
func withNode(cmd *cobra.Command, fn func(*rotary.Node) error) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	logger := commonRun(cmd.ErrOrStderr())
	n, err := node.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	fnErr := fn(n)
	if err := n.Stop(); err != nil {
		return errors.Join(fnErr, err)
	}
	return fnErr
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseIdentity(name string, value string) (lcommon.Identity, error) {
	if value == "" {
		return lcommon.Identity{}, fmt.Errorf("--%s is required", name)
	}
	ret, err := lcommon.NewIdentityFromHex(value)
	if err != nil {
		return lcommon.Identity{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return ret, nil
}

func parseKey(name string, value string) (lcommon.Key, error) {
	if value == "" {
		return lcommon.Key{}, fmt.Errorf("%s is required", name)
	}
	ret, err := lcommon.NewKeyFromHex(value)
	if err != nil {
		return lcommon.Key{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return ret, nil
}
