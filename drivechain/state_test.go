// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"sort"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// TestSidechainLazyCreation ensures a sidechain record appears on first
// marker reference with the referencing block's height and stays absent
// otherwise.
func TestSidechainLazyCreation(t *testing.T) {
	t.Parallel()

	state := NewState()
	if sc := state.Sidechain(0x01); sc != nil {
		t.Fatalf("unreferenced sidechain exists: %+v", sc)
	}

	out := wire.NewTxOut(500, DepositScript(0x01, testHash(0x11)))
	connectOrFatal(t, state, testBlock(testTx(out)), 42)

	sc := state.Sidechain(0x01)
	if sc == nil {
		t.Fatal("deposit did not create the sidechain")
	}
	if sc.ID != 0x01 || sc.CreationHeight != 42 || !sc.IsActive {
		t.Fatalf("bad sidechain record: %+v", sc)
	}
	if sc.EscrowBalance != 500 {
		t.Fatalf("escrow balance = %d, want 500", sc.EscrowBalance)
	}
	if state.NumSidechains() != 1 {
		t.Fatalf("state has %d sidechains, want 1",
			state.NumSidechains())
	}
}

// TestSidechainIDsSorted ensures id iteration is ascending regardless of
// reference order.
func TestSidechainIDsSorted(t *testing.T) {
	t.Parallel()

	state := NewState()
	for _, id := range []uint8{0xc8, 0x01, 0x7f, 0x00} {
		out := wire.NewTxOut(1, DepositScript(id, testHash(0x11)))
		connectOrFatal(t, state, testBlock(testTx(out)), 10)
	}

	ids := state.SidechainIDs()
	if !sort.SliceIsSorted(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	}) {
		t.Fatalf("sidechain ids not sorted: %v", ids)
	}
	if len(ids) != 4 {
		t.Fatalf("got %d ids, want 4: %v", len(ids), ids)
	}
}

// TestBundleHashesSorted ensures bundle iteration is byte-lexicographic.
func TestBundleHashesSorted(t *testing.T) {
	t.Parallel()

	state := NewState()
	for _, b := range []byte{0x90, 0x05, 0xff, 0x30} {
		out := wire.NewTxOut(0, BundleCommitScript(0x01, testHash(b)))
		connectOrFatal(t, state, testBlock(testTx(out)), 10)
	}

	sc := state.Sidechain(0x01)
	hashes := sc.BundleHashes()
	if len(hashes) != 4 {
		t.Fatalf("got %d bundle hashes, want 4", len(hashes))
	}
	want := []byte{0x05, 0x30, 0x90, 0xff}
	for i, hash := range hashes {
		if hash != *testHash(want[i]) {
			t.Fatalf("hash %d out of order: got %v", i, hash)
		}
	}
}

// TestBundleFirstSeen ensures a bundle record carries the height of the
// block that first referenced it and keeps it across later references.
func TestBundleFirstSeen(t *testing.T) {
	t.Parallel()

	state := NewState()
	hash := testHash(0x42)

	commit := wire.NewTxOut(0, BundleCommitScript(0x01, hash))
	connectOrFatal(t, state, testBlock(testTx(commit)), 100)

	bundle := state.Sidechain(0x01).Bundle(hash)
	if bundle == nil {
		t.Fatal("commit did not create the bundle")
	}
	if bundle.FirstSeenHeight != 100 {
		t.Fatalf("first seen height = %d, want 100",
			bundle.FirstSeenHeight)
	}

	// A later commit for the same hash does not move first-seen.
	connectOrFatal(t, state, testBlock(testTx(commit)), 200)
	if got := state.Sidechain(0x01).Bundle(hash); got.FirstSeenHeight != 100 {
		t.Fatalf("first seen height moved to %d", got.FirstSeenHeight)
	}

	if unknown := state.Sidechain(0x01).Bundle(testHash(0x43)); unknown != nil {
		t.Fatalf("unreferenced bundle exists: %+v", unknown)
	}
}

// TestSidechainClone ensures clones share nothing with the original.
func TestSidechainClone(t *testing.T) {
	t.Parallel()

	sc := newSidechain(0x01, 100)
	sc.EscrowBalance = 5000
	var hash chainhash.Hash
	hash[0] = 0x01
	sc.fetchBundle(&hash, 100).YesVotes = 3

	scCopy := sc.clone()
	scCopy.EscrowBalance = 1
	scCopy.bundles[hash].YesVotes = 9
	scCopy.fetchBundle(testHash(0x02), 101)

	if sc.EscrowBalance != 5000 {
		t.Fatalf("clone mutated original balance: %d",
			sc.EscrowBalance)
	}
	if got := sc.bundles[hash].YesVotes; got != 3 {
		t.Fatalf("clone mutated original bundle votes: %d", got)
	}
	if sc.NumBundles() != 1 {
		t.Fatalf("clone mutated original bundle set: %d bundles",
			sc.NumBundles())
	}
}
