// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
)

// OpDrivechain is the opcode that introduces every drivechain marker output
// script.  The host chain assigns the reserved OP_NOP5 value to it, so
// marker outputs remain anyone-can-spend no-ops to pre-fork validators.
const OpDrivechain = txscript.OP_NOP5

// MarkerKind identifies the role of a drivechain marker output.  The kind
// values double as the tag byte carried in the script.
type MarkerKind uint8

const (
	// KindDeposit locks the output's value into the sidechain escrow.
	KindDeposit MarkerKind = 0x00

	// KindBundleCommit announces a candidate withdrawal bundle.
	KindBundleCommit MarkerKind = 0x01

	// KindVoteYes casts one approval vote for a bundle.  Only counted
	// from coinbase transactions.
	KindVoteYes MarkerKind = 0x02

	// KindExecute pays out an approved bundle.  The marker additionally
	// carries the number of withdrawal outputs that follow it.
	KindExecute MarkerKind = 0x03
)

// markerKindStrings maps marker kinds to their names for debugging output.
var markerKindStrings = map[MarkerKind]string{
	KindDeposit:      "deposit",
	KindBundleCommit: "bundle-commit",
	KindVoteYes:      "vote-yes",
	KindExecute:      "execute",
}

// String returns the MarkerKind as a human-readable name.
func (k MarkerKind) String() string {
	if s := markerKindStrings[k]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown MarkerKind (%d)", int(k))
}

// MarkerInfo is the decoded form of a drivechain marker output script.
//
// NWithdrawals is only meaningful when Kind is KindExecute; decoding leaves
// it zero for every other kind, and encoding ignores it for them, so two
// MarkerInfo values describe the same marker exactly when they are equal.
type MarkerInfo struct {
	Kind         MarkerKind
	SidechainID  uint8
	Payload      chainhash.Hash
	NWithdrawals uint32
}

// DecodeMarker attempts to decode the passed output script as a drivechain
// marker.  The expected layout is:
//
//	OP_DRIVECHAIN <sidechain_id:1> <payload:32> <tag:1> [<n_withdrawals:4 LE>]
//
// where the trailing push is present exactly when the tag selects the
// execute kind.  Each field must be a data push of the exact size shown;
// any push encoding the host chain accepts (direct pushes as well as
// OP_PUSHDATA1/2/4) is recognized, but the small-integer opcodes are bare
// opcodes rather than data pushes and never satisfy the size checks.
//
// The boolean return is false when the script is not a well-formed marker:
// wrong leading opcode, wrong push sizes, unknown tag, a zero withdrawal
// count, malformed push data, or trailing bytes after the final push.  The
// function is total over arbitrary input bytes and never errors out; a
// non-marker output is simply not drivechain's business.
func DecodeMarker(pkScript []byte) (MarkerInfo, bool) {
	var info MarkerInfo

	const scriptVersion = 0
	tokenizer := txscript.MakeScriptTokenizer(scriptVersion, pkScript)
	if !tokenizer.Next() || tokenizer.Opcode() != OpDrivechain {
		return MarkerInfo{}, false
	}

	if !tokenizer.Next() || len(tokenizer.Data()) != 1 {
		return MarkerInfo{}, false
	}
	info.SidechainID = tokenizer.Data()[0]

	if !tokenizer.Next() || len(tokenizer.Data()) != chainhash.HashSize {
		return MarkerInfo{}, false
	}
	copy(info.Payload[:], tokenizer.Data())

	if !tokenizer.Next() || len(tokenizer.Data()) != 1 {
		return MarkerInfo{}, false
	}
	tag := MarkerKind(tokenizer.Data()[0])

	switch tag {
	case KindDeposit, KindBundleCommit, KindVoteYes:
		info.Kind = tag

	case KindExecute:
		info.Kind = KindExecute
		if !tokenizer.Next() || len(tokenizer.Data()) != 4 {
			return MarkerInfo{}, false
		}
		info.NWithdrawals = binary.LittleEndian.Uint32(tokenizer.Data())
		if info.NWithdrawals == 0 {
			return MarkerInfo{}, false
		}

	default:
		return MarkerInfo{}, false
	}

	// The final push must end the script.  A further token means trailing
	// bytes, and a tokenizer error means what remains is not even a valid
	// push.
	if tokenizer.Next() || tokenizer.Err() != nil {
		return MarkerInfo{}, false
	}

	return info, true
}

// IsMarker reports whether the passed output script decodes as a drivechain
// marker.
func IsMarker(pkScript []byte) bool {
	_, ok := DecodeMarker(pkScript)
	return ok
}

// markerScript assembles the canonical marker script bytes.  The fields are
// emitted as direct length-prefixed pushes.  ScriptBuilder is deliberately
// not used here: it canonicalizes one-byte values into the small-integer
// opcodes, which are not data pushes and would change the consensus wire
// format.
func markerScript(kind MarkerKind, sidechainID uint8, payload *chainhash.Hash) []byte {
	script := make([]byte, 0, 43)
	script = append(script, OpDrivechain)
	script = append(script, txscript.OP_DATA_1, sidechainID)
	script = append(script, txscript.OP_DATA_32)
	script = append(script, payload[:]...)
	script = append(script, txscript.OP_DATA_1, byte(kind))
	return script
}

// DepositScript returns the marker script that locks its output's value into
// the escrow pool of the given sidechain.  The payload is free-form
// commitment space for the depositor (typically a sidechain destination).
func DepositScript(sidechainID uint8, payload *chainhash.Hash) []byte {
	return markerScript(KindDeposit, sidechainID, payload)
}

// BundleCommitScript returns the marker script that announces a candidate
// withdrawal bundle with the given canonical bundle hash.
func BundleCommitScript(sidechainID uint8, bundleHash *chainhash.Hash) []byte {
	return markerScript(KindBundleCommit, sidechainID, bundleHash)
}

// VoteYesScript returns the marker script that casts one approval vote for
// the bundle with the given canonical bundle hash.  Votes are only counted
// when the script appears in a coinbase output.
func VoteYesScript(sidechainID uint8, bundleHash *chainhash.Hash) []byte {
	return markerScript(KindVoteYes, sidechainID, bundleHash)
}

// ExecuteScript returns the marker script that pays out an approved bundle.
// The nWithdrawals outputs immediately following the marker output in the
// spending transaction form the withdrawal list the bundle hash must commit
// to.  An execute marker for an empty withdrawal list is not expressible.
func ExecuteScript(sidechainID uint8, bundleHash *chainhash.Hash, nWithdrawals uint32) ([]byte, error) {
	if nWithdrawals == 0 {
		return nil, fmt.Errorf("execute marker requires at least one " +
			"withdrawal")
	}

	script := markerScript(KindExecute, sidechainID, bundleHash)
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], nWithdrawals)
	script = append(script, txscript.OP_DATA_4)
	script = append(script, count[:]...)
	return script, nil
}
