// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/davecgh/go-spew/spew"
)

// testSidechainID is the sidechain the end-to-end tests operate on.
const testSidechainID = 0x01

// testHash returns a hash with every byte set to the passed value.
func testHash(b byte) *chainhash.Hash {
	var hash chainhash.Hash
	for i := range hash {
		hash[i] = b
	}
	return &hash
}

// testTx returns a transaction with the passed outputs and no inputs.  The
// engine never looks at inputs, so none are needed.
func testTx(outs ...*wire.TxOut) *wire.MsgTx {
	return &wire.MsgTx{Version: 1, TxOut: outs}
}

// testBlock returns a block wrapping the passed transactions in order.  The
// transaction at index 0 serves as the coinbase.
func testBlock(txs ...*wire.MsgTx) *btcutil.Block {
	return btcutil.NewBlock(&wire.MsgBlock{Transactions: txs})
}

// connectOrFatal connects the block at the given height and fails the test
// on any error.
func connectOrFatal(t *testing.T, state *State, block *btcutil.Block,
	height int32) {

	t.Helper()
	if err := state.ConnectBlock(block, height); err != nil {
		t.Fatalf("unexpected error connecting block at height %d: %v",
			height, err)
	}
}

// approveBundle drives the standard payout prologue against the state: a
// coinbase deposit at height 100, a coinbase bundle commit at height 101,
// and one coinbase vote per block from height 102 on.
func approveBundle(t *testing.T, state *State, deposit int64,
	bundleHash *chainhash.Hash, votes int) {

	t.Helper()

	depositOut := wire.NewTxOut(deposit,
		DepositScript(testSidechainID, testHash(0xaa)))
	connectOrFatal(t, state, testBlock(testTx(depositOut)), 100)

	commitOut := wire.NewTxOut(0,
		BundleCommitScript(testSidechainID, bundleHash))
	connectOrFatal(t, state, testBlock(testTx(commitOut)), 101)

	for i := 0; i < votes; i++ {
		voteOut := wire.NewTxOut(0,
			VoteYesScript(testSidechainID, bundleHash))
		connectOrFatal(t, state, testBlock(testTx(voteOut)),
			102+int32(i))
	}
}

// voteBlock returns a block whose coinbase carries a single vote for the
// passed bundle hash.
func voteBlock(bundleHash *chainhash.Hash) *btcutil.Block {
	out := wire.NewTxOut(0, VoteYesScript(testSidechainID, bundleHash))
	return testBlock(testTx(out))
}

// executeTx returns a transaction paying out the passed withdrawals behind
// an execute marker committing to the given bundle hash.
func executeTx(t *testing.T, bundleHash *chainhash.Hash,
	withdrawals ...*wire.TxOut) *wire.MsgTx {

	t.Helper()
	script, err := ExecuteScript(testSidechainID, bundleHash,
		uint32(len(withdrawals)))
	if err != nil {
		t.Fatalf("failed to build execute script: %v", err)
	}

	outs := make([]*wire.TxOut, 0, len(withdrawals)+1)
	outs = append(outs, wire.NewTxOut(0, script))
	outs = append(outs, withdrawals...)
	return testTx(outs...)
}

// mustBundleHash computes the canonical hash of the passed withdrawals.
func mustBundleHash(t *testing.T, withdrawals ...*wire.TxOut) *chainhash.Hash {
	t.Helper()
	hash, err := BundleHash(withdrawals)
	if err != nil {
		t.Fatalf("failed to hash withdrawals: %v", err)
	}
	return &hash
}

// cloneState deep-copies the state for before/after comparisons.
func cloneState(s *State) *State {
	stateCopy := NewState()
	for id, sc := range s.sidechains {
		stateCopy.sidechains[id] = sc.clone()
	}
	return stateCopy
}

// assertRuleError fails the test unless err is a RuleError with the given
// code.
func assertRuleError(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var ruleErr RuleError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected a rule error, got %v", spew.Sdump(err))
	}
	if ruleErr.ErrorCode != code {
		t.Fatalf("wrong rule error: got %v, want %v (%v)",
			ruleErr.ErrorCode, code, ruleErr)
	}
}
