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

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

//nolint:recvcheck
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	v, ok := val.(string)
	if !ok {
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	tmpUint, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return err
	}
	*u = Uint64(tmpUint)
	return nil
}

// ErrApprovalIndex is returned when an approval slot outside the signer set is addressed
var ErrApprovalIndex = errors.New("approval index out of range")

// Approvals holds one slot per multisig signer. The length is fixed when the
// proposal is created and never changes afterward.
//
//nolint:recvcheck
type Approvals []bool

func NewApprovals(size int) Approvals {
	return make(Approvals, size)
}

// Set records the vote of the signer at the given index
func (a Approvals) Set(idx int, approve bool) error {
	if idx < 0 || idx >= len(a) {
		return fmt.Errorf("%w: %d", ErrApprovalIndex, idx)
	}
	a[idx] = approve
	return nil
}

// Count returns the number of approving slots
func (a Approvals) Count() int {
	ret := 0
	for _, v := range a {
		if v {
			ret++
		}
	}
	return ret
}

func (a Approvals) Clone() Approvals {
	if a == nil {
		return nil
	}
	ret := make(Approvals, len(a))
	copy(ret, a)
	return ret
}

func (a Approvals) String() string {
	var sb strings.Builder
	for _, v := range a {
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func (a Approvals) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Approvals) Scan(val any) error {
	var v string
	switch tmp := val.(type) {
	case string:
		v = tmp
	case []byte:
		v = string(tmp)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	ret := make(Approvals, len(v))
	for i, c := range v {
		switch c {
		case '0':
		case '1':
			ret[i] = true
		default:
			return fmt.Errorf("invalid approval flag %q at index %d", c, i)
		}
	}
	*a = ret
	return nil
}

// IdentityList is an ordered list of identities stored as concatenated bytes
//
//nolint:recvcheck
type IdentityList []lcommon.Identity

// IndexOf returns the position of the identity in the list, or -1
func (l IdentityList) IndexOf(id lcommon.Identity) int {
	for i, tmp := range l {
		if tmp == id {
			return i
		}
	}
	return -1
}

func (l IdentityList) Clone() IdentityList {
	if l == nil {
		return nil
	}
	ret := make(IdentityList, len(l))
	copy(ret, l)
	return ret
}

func (l IdentityList) Value() (driver.Value, error) {
	ret := make([]byte, 0, len(l)*lcommon.IdentitySize)
	for _, id := range l {
		ret = append(ret, id[:]...)
	}
	return ret, nil
}

func (l *IdentityList) Scan(val any) error {
	v, ok := val.([]byte)
	if !ok {
		return fmt.Errorf(
			"value was not expected type, wanted []byte, got %T",
			val,
		)
	}
	if len(v)%lcommon.IdentitySize != 0 {
		return fmt.Errorf(
			"%w: identity list of %d bytes",
			lcommon.ErrInvalidLength,
			len(v),
		)
	}
	ret := make(IdentityList, 0, len(v)/lcommon.IdentitySize)
	for i := 0; i < len(v); i += lcommon.IdentitySize {
		var id lcommon.Identity
		copy(id[:], v[i:i+lcommon.IdentitySize])
		ret = append(ret, id)
	}
	*l = ret
	return nil
}

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = errors.New("blob key not found")

// ErrTxnWrongType is returned when a transaction has the wrong type
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

// ErrNoStoreAvailable is returned when no blob or metadata store is available
var ErrNoStoreAvailable = errors.New("no store available")

// Txn is a simple transaction handle for commit/rollback only.
// Database layer (Txn) coordinates metadata and blob operations separately.
type Txn interface {
	Commit() error
	Rollback() error
}
