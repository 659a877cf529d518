// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Bundle tracks the voting and payout state of one candidate withdrawal
// bundle under a sidechain.
type Bundle struct {
	// Hash is the canonical bundle hash the record is keyed by.
	Hash chainhash.Hash

	// FirstSeenHeight is the height of the block whose BUNDLE_COMMIT or
	// VOTE_YES marker first referenced the bundle.  It anchors the vote
	// window.
	FirstSeenHeight int32

	// YesVotes is the number of in-window coinbase votes accumulated so
	// far.
	YesVotes uint32

	// Approved is set the first time YesVotes reaches VoteThreshold.  A
	// disconnect that drops the tally back below the threshold clears it
	// again.
	Approved bool

	// Executed is set by the one EXECUTE marker that pays the bundle out
	// and cleared by the disconnect of that same block.
	Executed bool
}

// Sidechain is one escrow pool, identified by a single byte.
type Sidechain struct {
	// ID is the 8-bit sidechain identifier the record is keyed by.
	ID uint8

	// EscrowBalance is the pool balance in the chain's base monetary
	// unit.  Consensus keeps it non-negative: deposits add to it and an
	// executed bundle may not withdraw more than it holds.
	EscrowBalance int64

	// CreationHeight is the height of the first connected block whose
	// markers referenced the sidechain.  Non-coinbase votes do not count
	// as a reference.
	CreationHeight int32

	// IsActive is always true once the sidechain exists.  It is carried
	// for a future deactivation soft-fork.
	IsActive bool

	bundles map[chainhash.Hash]*Bundle
}

// Bundle returns the bundle with the given canonical hash, or nil when the
// sidechain has never seen it.  The returned record is owned by the engine
// and must not be mutated.
func (sc *Sidechain) Bundle(hash *chainhash.Hash) *Bundle {
	return sc.bundles[*hash]
}

// NumBundles returns the number of bundle records under the sidechain.
func (sc *Sidechain) NumBundles() int {
	return len(sc.bundles)
}

// BundleHashes returns the hashes of all bundle records under the
// sidechain, sorted byte-lexicographically.  The order is not consensus
// observable; it exists so callers iterate deterministically.
func (sc *Sidechain) BundleHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, 0, len(sc.bundles))
	for hash := range sc.bundles {
		hashes = append(hashes, hash)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return bytes.Compare(hashes[i][:], hashes[j][:]) < 0
	})
	return hashes
}

// fetchBundle returns the bundle record for the given hash, creating it
// with the passed height as its first-seen height when the sidechain has
// not seen the hash before.  Only the connect path creates bundles;
// disconnect looks records up and tolerates absence.
func (sc *Sidechain) fetchBundle(hash *chainhash.Hash, height int32) *Bundle {
	if bundle := sc.bundles[*hash]; bundle != nil {
		return bundle
	}

	bundle := &Bundle{
		Hash:            *hash,
		FirstSeenHeight: height,
	}
	sc.bundles[*hash] = bundle
	return bundle
}

// clone returns a deep copy of the sidechain, bundle records included.  The
// block connector stages its mutations on clones so a rejected block leaves
// the committed state untouched.
func (sc *Sidechain) clone() *Sidechain {
	scCopy := *sc
	scCopy.bundles = make(map[chainhash.Hash]*Bundle, len(sc.bundles))
	for hash, bundle := range sc.bundles {
		bundleCopy := *bundle
		scCopy.bundles[hash] = &bundleCopy
	}
	return &scCopy
}

// newSidechain returns an empty sidechain record created at the given
// height.
func newSidechain(id uint8, height int32) *Sidechain {
	return &Sidechain{
		ID:             id,
		CreationHeight: height,
		IsActive:       true,
		bundles:        make(map[chainhash.Hash]*Bundle),
	}
}

// State holds the escrow and voting state of every sidechain.  It is
// mutated exclusively through ConnectBlock and DisconnectBlock, which the
// outer validation driver serializes; the engine performs no locking of its
// own.  Read access must likewise not overlap those calls.
type State struct {
	sidechains map[uint8]*Sidechain
}

// NewState returns an empty drivechain state, as of a chain that has never
// carried a marker output.
func NewState() *State {
	return &State{
		sidechains: make(map[uint8]*Sidechain),
	}
}

// Sidechain returns the sidechain with the given id, or nil when no
// connected block has created it (a non-coinbase vote creates nothing).
// The returned record is owned by the engine and
// must not be mutated.
func (s *State) Sidechain(id uint8) *Sidechain {
	return s.sidechains[id]
}

// NumSidechains returns the number of sidechain records in the state.
func (s *State) NumSidechains() int {
	return len(s.sidechains)
}

// SidechainIDs returns the ids of all sidechain records, sorted ascending.
// The order is not consensus observable; it exists so callers iterate
// deterministically.
func (s *State) SidechainIDs() []uint8 {
	ids := make([]uint8, 0, len(s.sidechains))
	for id := range s.sidechains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
