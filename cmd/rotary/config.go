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
	"fmt"
	"os"

	"github.com/blinklabs-io/rotary/internal/sops"
	"github.com/spf13/cobra"
)

func configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config file utilities",
	}
	cmd.AddCommand(configEncryptCommand())
	return cmd
}

func configEncryptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a YAML config file with sops using the KMS keys from the environment",
		Long: "Encrypt a YAML config file with sops. Keys are taken from " +
			"ROTARY_GCP_KMS_RESOURCE_ID and/or ROTARY_AWS_KMS_KEY_ARNS " +
			"(with optional ROTARY_AWS_KMS_PROFILE). The encrypted document " +
			"is written to stdout.",
		Args:             cobra.ExactArgs(1),
		PersistentPreRun: func(*cobra.Command, []string) {},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("error reading config file: %w", err)
			}
			encrypted, err := sops.Encrypt(data)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(encrypted)
			return err
		},
	}
}
