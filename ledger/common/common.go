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

package common

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/blake2b"
)

const (
	IdentitySize = 32
	KeySize      = blake2b.Size256

	// MaxNameLength is the longest collection name accepted as part of a
	// collection key
	MaxNameLength = 32
)

const (
	collectionKeyTag = "collection"
	multisigKeyTag   = "multisig"
	userKeyTag       = "user"
	proposalKeyTag   = "proposal"
)

var ErrInvalidLength = errors.New("invalid length")

// Identity is an authenticated caller identity, such as a public key
//
//nolint:recvcheck
type Identity [IdentitySize]byte

func NewIdentity(data []byte) (Identity, error) {
	var ret Identity
	if len(data) != IdentitySize {
		return ret, fmt.Errorf(
			"%w: identity must be %d bytes, got %d",
			ErrInvalidLength,
			IdentitySize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// NewIdentityFromHex decodes a hex encoded identity
func NewIdentityFromHex(s string) (Identity, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return Identity{}, fmt.Errorf("decode identity: %w", err)
	}
	return NewIdentity(data)
}

func (i Identity) Bytes() []byte {
	return slices.Clone(i[:])
}

func (i Identity) String() string {
	return hex.EncodeToString(i[:])
}

func (i Identity) IsZero() bool {
	return i == Identity{}
}

func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Identity) UnmarshalText(data []byte) error {
	tmp, err := NewIdentityFromHex(string(data))
	if err != nil {
		return err
	}
	*i = tmp
	return nil
}

func (i Identity) Value() (driver.Value, error) {
	return i[:], nil
}

func (i *Identity) Scan(val any) error {
	return scanFixed(i[:], val)
}

// Key is the deterministic address of a ledger entity
//
//nolint:recvcheck
type Key [KeySize]byte

func NewKeyFromHex(s string) (Key, error) {
	var ret Key
	data, err := hex.DecodeString(s)
	if err != nil {
		return ret, fmt.Errorf("decode key: %w", err)
	}
	if len(data) != KeySize {
		return ret, fmt.Errorf(
			"%w: key must be %d bytes, got %d",
			ErrInvalidLength,
			KeySize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

func (k Key) Bytes() []byte {
	return slices.Clone(k[:])
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(data []byte) error {
	tmp, err := NewKeyFromHex(string(data))
	if err != nil {
		return err
	}
	*k = tmp
	return nil
}

func (k Key) Value() (driver.Value, error) {
	return k[:], nil
}

func (k *Key) Scan(val any) error {
	return scanFixed(k[:], val)
}

func scanFixed(dst []byte, val any) error {
	v, ok := val.([]byte)
	if !ok {
		return fmt.Errorf(
			"value was not expected type, wanted []byte, got %T",
			val,
		)
	}
	if len(v) != len(dst) {
		return fmt.Errorf(
			"%w: wanted %d bytes, got %d",
			ErrInvalidLength,
			len(dst),
			len(v),
		)
	}
	copy(dst, v)
	return nil
}

func deriveKey(tag string, parts ...[]byte) Key {
	data := slices.Concat(append([][]byte{[]byte(tag)}, parts...)...)
	return Key(blake2b.Sum256(data))
}

// CollectionKey returns the address of the collection an admin created with the given name
func CollectionKey(admin Identity, name string) Key {
	return deriveKey(collectionKeyTag, admin[:], []byte(name))
}

// MultisigKey returns the address of the multisig attached to a collection
func MultisigKey(collection Key) Key {
	return deriveKey(multisigKeyTag, collection[:])
}

// UserKey returns the address of a member's record within a collection
func UserKey(collection Key, user Identity) Key {
	return deriveKey(userKeyTag, collection[:], user[:])
}

// ProposalKey returns the address of the proposal with the given index
func ProposalKey(collection Key, index uint64) Key {
	idx := make([]byte, 8)
	binary.BigEndian.PutUint64(idx, index)
	return deriveKey(proposalKeyTag, collection[:], idx)
}
