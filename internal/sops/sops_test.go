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

package sops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEncrypted(t *testing.T) {
	assert.False(t, IsEncrypted([]byte("databasePath: /tmp/rotary\n")))
	assert.True(
		t,
		IsEncrypted([]byte("databasePath: ENC[abc]\nsops:\n  version: 3.11.0\n")),
	)
	assert.False(t, IsEncrypted([]byte(":::not yaml")))
}

func TestEncryptWithoutKeys(t *testing.T) {
	t.Setenv("ROTARY_GCP_KMS_RESOURCE_ID", "")
	t.Setenv("ROTARY_AWS_KMS_KEY_ARNS", "")
	_, err := Encrypt([]byte("databasePath: /tmp/rotary\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one master key")
}

func TestEncryptAlreadyEncrypted(t *testing.T) {
	_, err := Encrypt([]byte("foo: bar\nsops:\n  version: 3.11.0\n"))
	require.ErrorIs(t, err, ErrAlreadyEncrypted)
}

func TestDecryptPlainFails(t *testing.T) {
	_, err := Decrypt([]byte("databasePath: /tmp/rotary\n"))
	require.Error(t, err)
}
