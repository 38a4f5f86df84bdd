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
	"errors"
	"fmt"
)

var (
	ErrDuplicateCollection = errors.New("collection already exists")
	ErrInvalidParameters   = errors.New("invalid parameters")
	ErrCollectionFull      = errors.New("collection is full")
	ErrDuplicateMember     = errors.New("user is already a member")
	ErrNotAdmin            = errors.New(
		"caller is not the collection admin",
	)
	ErrCollectionInactive    = errors.New("collection is not active")
	ErrPaymentAmountMismatch = errors.New(
		"payment amount does not match amount per period",
	)
	ErrTooEarlyForNextPayment = errors.New(
		"too early for next payment",
	)
	ErrUnknownUser   = errors.New("user is not a member of the collection")
	ErrUnknownSigner = errors.New(
		"caller is not a signer of the collection multisig",
	)
	ErrDuplicateEarlyWithdrawalRequest = errors.New(
		"early withdrawal already requested",
	)
	ErrInsufficientApprovals = errors.New(
		"proposal does not have enough approvals",
	)
	ErrAlreadyExecuted = errors.New("proposal already executed")

	ErrCollectionNotFound = errors.New("collection not found")
	ErrMultisigNotFound   = errors.New("collection has no multisig")
	ErrDuplicateMultisig  = errors.New(
		"collection already has a multisig",
	)
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrUnauthorizedExecutor = errors.New(
		"caller is not allowed to execute proposals",
	)
	ErrEligibleForWithdrawal = fmt.Errorf(
		"%w: user is already eligible for regular withdrawal",
		ErrInvalidParameters,
	)
	ErrUnsupportedProposal = fmt.Errorf(
		"%w: unsupported proposal kind",
		ErrInvalidParameters,
	)
)

func invalidParams(format string, args ...any) error {
	return fmt.Errorf(
		"%w: %s",
		ErrInvalidParameters,
		fmt.Sprintf(format, args...),
	)
}

type TooEarlyError struct {
	lastPaid    int64
	nextAllowed int64
}

func NewTooEarlyError(lastPaid int64, nextAllowed int64) TooEarlyError {
	return TooEarlyError{
		lastPaid:    lastPaid,
		nextAllowed: nextAllowed,
	}
}

func (e TooEarlyError) LastPaid() int64 {
	return e.lastPaid
}

func (e TooEarlyError) NextAllowed() int64 {
	return e.nextAllowed
}

func (e TooEarlyError) Error() string {
	return fmt.Sprintf(
		"too early for next payment: last paid at %d, next payment allowed at %d",
		e.lastPaid,
		e.nextAllowed,
	)
}

func (e TooEarlyError) Is(target error) bool {
	return target == ErrTooEarlyForNextPayment
}

type PaymentAmountMismatchError struct {
	expected uint64
	actual   uint64
}

func NewPaymentAmountMismatchError(
	expected uint64,
	actual uint64,
) PaymentAmountMismatchError {
	return PaymentAmountMismatchError{
		expected: expected,
		actual:   actual,
	}
}

func (e PaymentAmountMismatchError) Expected() uint64 {
	return e.expected
}

func (e PaymentAmountMismatchError) Actual() uint64 {
	return e.actual
}

func (e PaymentAmountMismatchError) Error() string {
	return fmt.Sprintf(
		"payment amount %d does not match amount per period %d",
		e.actual,
		e.expected,
	)
}

func (e PaymentAmountMismatchError) Is(target error) bool {
	return target == ErrPaymentAmountMismatch
}

type InsufficientApprovalsError struct {
	approvals int
	threshold uint32
}

func NewInsufficientApprovalsError(
	approvals int,
	threshold uint32,
) InsufficientApprovalsError {
	return InsufficientApprovalsError{
		approvals: approvals,
		threshold: threshold,
	}
}

func (e InsufficientApprovalsError) Approvals() int {
	return e.approvals
}

func (e InsufficientApprovalsError) Threshold() uint32 {
	return e.threshold
}

func (e InsufficientApprovalsError) Error() string {
	return fmt.Sprintf(
		"proposal has %d approvals, threshold is %d",
		e.approvals,
		e.threshold,
	)
}

func (e InsufficientApprovalsError) Is(target error) bool {
	return target == ErrInsufficientApprovals
}
