// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"fmt"
)

// AssertError identifies an error that indicates an internal code consistency
// issue and should be treated as a critical and unrecoverable error.
type AssertError string

// Error returns the assertion error as a human-readable string and satisfies
// the error interface.
func (e AssertError) Error() string {
	return "assertion failed: " + string(e)
}

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrMultiExecute indicates a transaction carries more than one
	// EXECUTE marker output.
	ErrMultiExecute ErrorCode = iota

	// ErrZeroWithdrawals indicates an EXECUTE marker commits to an empty
	// withdrawal list.
	ErrZeroWithdrawals

	// ErrWithdrawalsOOB indicates an EXECUTE marker commits to more
	// withdrawal outputs than the transaction has after the marker.
	ErrWithdrawalsOOB

	// ErrExecuteUnapproved indicates an EXECUTE marker references a
	// bundle that has not accumulated enough yes votes.
	ErrExecuteUnapproved

	// ErrAlreadyExecuted indicates an EXECUTE marker references a bundle
	// that has already been paid out.
	ErrAlreadyExecuted

	// ErrWithdrawalIsDrivechain indicates an output inside the withdrawal
	// range itself decodes as a drivechain marker.
	ErrWithdrawalIsDrivechain

	// ErrWithdrawalScriptTooBig indicates a withdrawal output script
	// exceeds MaxWithdrawalScriptSize bytes.
	ErrWithdrawalScriptTooBig

	// ErrPostWithdrawalIsDrivechain indicates an output after the
	// withdrawal range decodes as a drivechain marker.
	ErrPostWithdrawalIsDrivechain

	// ErrBundleHashMismatch indicates the canonical hash of the
	// withdrawal outputs does not match the hash the EXECUTE marker
	// commits to.
	ErrBundleHashMismatch

	// ErrEscrowInsufficient indicates the withdrawal outputs total more
	// than the sidechain's escrow balance.
	ErrEscrowInsufficient
)

// Map of ErrorCode values back to their reason token, the short form the
// outer validator reports when rejecting a block.
var errorCodeStrings = map[ErrorCode]string{
	ErrMultiExecute:               "multi-execute",
	ErrZeroWithdrawals:            "zero-withdrawals",
	ErrWithdrawalsOOB:             "withdrawals-oob",
	ErrExecuteUnapproved:          "execute-unapproved",
	ErrAlreadyExecuted:            "already-executed",
	ErrWithdrawalIsDrivechain:     "withdrawal-is-drivechain",
	ErrWithdrawalScriptTooBig:     "withdrawal-script-too-big",
	ErrPostWithdrawalIsDrivechain: "post-withdrawal-is-drivechain",
	ErrBundleHashMismatch:         "bundlehash-mismatch",
	ErrEscrowInsufficient:         "escrow-insufficient",
}

// String returns the ErrorCode as its reason token.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a block failed due to one of the consensus rules.  The
// caller can use type assertions to determine if a failure was specifically
// due to a rule violation and access the ErrorCode field to ascertain the
// specific reason for the rule violation.  Every RuleError is fatal to the
// block being connected; the outer validator must reject the block and not
// retry it.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates an RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}
