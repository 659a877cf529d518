// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

const (
	// VoteWindow is the number of blocks, counted inclusively from the
	// height a bundle was first seen, during which coinbase VOTE_YES
	// markers affect the bundle's vote tally.  Votes at a height more
	// than VoteWindow blocks past the first-seen height are ignored.
	VoteWindow = 1000

	// VoteThreshold is the number of yes votes a bundle must accumulate
	// before an EXECUTE marker referencing it is valid.  The approved
	// flag is set the first time the tally reaches this value.
	VoteThreshold = 10

	// MaxWithdrawalScriptSize is the maximum size, in bytes, of a single
	// withdrawal output script.  The canonical bundle hash prefixes each
	// script with a one-byte length, so larger scripts cannot be
	// committed to and are rejected by consensus.
	MaxWithdrawalScriptSize = 255
)

// voteInWindow reports whether a vote observed at the given height counts
// toward a bundle first seen at firstSeenHeight.  Both the connect path and
// the disconnect path use this single predicate so the increment and
// decrement decisions cannot diverge.
func voteInWindow(height, firstSeenHeight int32) bool {
	delta := height - firstSeenHeight
	return delta >= 0 && delta <= VoteWindow
}
