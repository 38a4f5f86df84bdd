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

	lcommon "github.com/blinklabs-io/rotary/ledger/common"
	"github.com/fxamacker/cbor/v2"
)

type ProposalKind uint8

const (
	ProposalKindWithdraw        ProposalKind = 0
	ProposalKindCloseCollection ProposalKind = 1
	ProposalKindAdjustSettings  ProposalKind = 2
	ProposalKindEarlyWithdrawal ProposalKind = 3
)

func (k ProposalKind) String() string {
	switch k {
	case ProposalKindWithdraw:
		return "withdraw"
	case ProposalKindCloseCollection:
		return "close-collection"
	case ProposalKindAdjustSettings:
		return "adjust-settings"
	case ProposalKindEarlyWithdrawal:
		return "early-withdrawal"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

func ParseProposalKind(name string) (ProposalKind, error) {
	for _, k := range []ProposalKind{
		ProposalKindWithdraw,
		ProposalKindCloseCollection,
		ProposalKindAdjustSettings,
		ProposalKindEarlyWithdrawal,
	} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, invalidParams("unknown proposal kind: %s", name)
}

// ProposalAction is the kind-specific payload of a proposal
type ProposalAction interface {
	Kind() ProposalKind
	isProposalAction()
}

// EarlyWithdrawalAction pays out a member's contributions before the end of
// the cycle, less the collection's penalty
type EarlyWithdrawalAction struct {
	_      struct{} `cbor:",toarray"`
	User   lcommon.Identity
	Amount uint64
}

func (EarlyWithdrawalAction) Kind() ProposalKind {
	return ProposalKindEarlyWithdrawal
}

func (EarlyWithdrawalAction) isProposalAction() {}

// ProposalActionFromRequest builds an action from the flat command fields.
// Fields that the kind does not use must be left at zero.
func ProposalActionFromRequest(
	kind ProposalKind,
	user lcommon.Identity,
	amount uint64,
	aux [3]uint64,
) (ProposalAction, error) {
	switch kind {
	case ProposalKindEarlyWithdrawal:
		if aux != [3]uint64{} {
			return nil, invalidParams(
				"auxiliary fields are not used by %s proposals",
				kind,
			)
		}
		if user.IsZero() {
			return nil, invalidParams("proposal user is required")
		}
		return EarlyWithdrawalAction{User: user, Amount: amount}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProposal, kind)
	}
}

func encodeProposalAction(action ProposalAction) ([]byte, error) {
	data, err := cbor.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("encode proposal action: %w", err)
	}
	return data, nil
}

// DecodeProposalAction decodes a stored proposal action of the given kind
func DecodeProposalAction(
	kind ProposalKind,
	data []byte,
) (ProposalAction, error) {
	switch kind {
	case ProposalKindEarlyWithdrawal:
		var action EarlyWithdrawalAction
		if err := cbor.Unmarshal(data, &action); err != nil {
			return nil, fmt.Errorf("decode proposal action: %w", err)
		}
		return action, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProposal, kind)
	}
}
