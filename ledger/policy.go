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
	"fmt"

	"github.com/blinklabs-io/rotary/database/models"
	lcommon "github.com/blinklabs-io/rotary/ledger/common"
)

// WithdrawalRule decides whether a member may withdraw after a payment has been applied
type WithdrawalRule func(collection *models.Collection, member *models.Member) bool

// FullCycleRule allows withdrawal once the member has paid every whole period of the cycle
func FullCycleRule(
	collection *models.Collection,
	member *models.Member,
) bool {
	periods := collection.PeriodsPerCycle()
	return periods > 0 && uint64(member.PaidPeriods) >= periods
}

// CoveredDurationRule allows withdrawal once the paid periods cover the cycle
// duration, counting a trailing partial period as a full one
func CoveredDurationRule(
	collection *models.Collection,
	member *models.Member,
) bool {
	if collection.Period <= 0 {
		return false
	}
	return int64(member.PaidPeriods)*collection.Period >= collection.Duration
}

// WithdrawalRuleByName returns a built-in withdrawal rule
func WithdrawalRuleByName(name string) (WithdrawalRule, error) {
	switch name {
	case "", "full-cycle":
		return FullCycleRule, nil
	case "covered-duration":
		return CoveredDurationRule, nil
	default:
		return nil, fmt.Errorf("unknown withdrawal rule: %s", name)
	}
}

// ExecutionPolicy determines who may execute an approved proposal
type ExecutionPolicy uint8

const (
	ExecutionPolicyAdminOrSigner ExecutionPolicy = iota
	ExecutionPolicyAdminOnly
	ExecutionPolicySignerOnly
)

func (p ExecutionPolicy) String() string {
	switch p {
	case ExecutionPolicyAdminOrSigner:
		return "admin-or-signer"
	case ExecutionPolicyAdminOnly:
		return "admin-only"
	case ExecutionPolicySignerOnly:
		return "signer-only"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

func ParseExecutionPolicy(name string) (ExecutionPolicy, error) {
	switch name {
	case "", "admin-or-signer":
		return ExecutionPolicyAdminOrSigner, nil
	case "admin-only":
		return ExecutionPolicyAdminOnly, nil
	case "signer-only":
		return ExecutionPolicySignerOnly, nil
	default:
		return 0, fmt.Errorf("unknown execution policy: %s", name)
	}
}

// Allows reports whether the caller may execute proposals for the collection
func (p ExecutionPolicy) Allows(
	collection *models.Collection,
	multisig *models.Multisig,
	caller lcommon.Identity,
) bool {
	isAdmin := collection.Admin == caller
	isSigner := multisig.Signers.IndexOf(caller) >= 0
	switch p {
	case ExecutionPolicyAdminOnly:
		return isAdmin
	case ExecutionPolicySignerOnly:
		return isSigner
	default:
		return isAdmin || isSigner
	}
}
