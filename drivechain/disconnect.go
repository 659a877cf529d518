// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// DisconnectBlock reverses the marker effects of a previously connected
// block so the state returns to what it was before ConnectBlock ran at the
// same height.  It must only be called with blocks that connected
// successfully, in reverse connect order.
//
// Disconnect never fails: records that cannot be found are skipped, and a
// vote tally never decrements below zero.  It also never creates records;
// a sidechain that first appeared in the disconnected block keeps its bare
// record, which is the one deliberate asymmetry of the reversal.
func (s *State) DisconnectBlock(block *btcutil.Block, height int32) {
	for txIdx, tx := range block.Transactions() {
		isCoinbase := txIdx == 0
		s.disconnectTransaction(tx.MsgTx(), isCoinbase, height)
	}

	log.Debugf("Disconnected block at height %d", height)
}

// disconnectTransaction reverses one transaction's marker effects.  It
// mirrors connectTransaction: per-output effects are undone during the
// sweep and a recorded execute marker is reversed afterwards.  The
// per-output reversals are linear in independent fields, so walking the
// outputs in forward order undoes a forward-order connect exactly.
func (s *State) disconnectTransaction(tx *wire.MsgTx, isCoinbase bool,
	height int32) {

	executeIdx := -1
	var executeInfo MarkerInfo

	for outIdx, txOut := range tx.TxOut {
		info, ok := DecodeMarker(txOut.PkScript)
		if !ok {
			continue
		}

		sc := s.sidechains[info.SidechainID]
		if sc == nil {
			continue
		}

		switch info.Kind {
		case KindDeposit:
			sc.EscrowBalance -= txOut.Value

		case KindBundleCommit:
			// A commit at the bundle's first-seen height is the
			// commit that created it.
			bundle := sc.bundles[info.Payload]
			if bundle != nil && bundle.FirstSeenHeight == height {
				delete(sc.bundles, info.Payload)
			}

		case KindVoteYes:
			if !isCoinbase {
				continue
			}

			bundle := sc.bundles[info.Payload]
			if bundle == nil {
				continue
			}

			// The same window predicate the connect path used at
			// this height decides whether the vote was counted.
			if !voteInWindow(height, bundle.FirstSeenHeight) {
				continue
			}
			if bundle.YesVotes > 0 {
				bundle.YesVotes--
			}
			if bundle.Approved && bundle.YesVotes < VoteThreshold {
				bundle.Approved = false
			}

		case KindExecute:
			executeIdx = outIdx
			executeInfo = info
		}
	}

	if executeIdx != -1 {
		s.disconnectExecute(tx, executeIdx, &executeInfo)
	}
}

// disconnectExecute restores the withdrawal total to the sidechain escrow
// and clears the bundle's executed flag.
func (s *State) disconnectExecute(tx *wire.MsgTx, markerIdx int,
	info *MarkerInfo) {

	sc := s.sidechains[info.SidechainID]
	if sc == nil {
		return
	}

	// The connected block already proved the range exists; clamp in
	// 64-bit space anyway so a stray caller cannot fault the reversal.
	first := markerIdx + 1
	last := len(tx.TxOut)
	if end := int64(first) + int64(info.NWithdrawals); end < int64(last) {
		last = int(end)
	}

	var withdrawSum int64
	for _, txOut := range tx.TxOut[first:last] {
		withdrawSum += txOut.Value
	}

	sc.EscrowBalance += withdrawSum
	if bundle := sc.bundles[info.Payload]; bundle != nil {
		bundle.Executed = false
	}
}
