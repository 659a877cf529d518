// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// blockView stages the mutations of a single block connect.  A sidechain is
// deep-copied out of the backing state the first time the block touches it
// and every mutation lands on the copy, so the block either commits as a
// whole or leaves the state exactly as it was.
type blockView struct {
	state  *State
	staged map[uint8]*Sidechain
}

// newBlockView returns a view staging mutations on top of the given state.
func newBlockView(state *State) *blockView {
	return &blockView{
		state:  state,
		staged: make(map[uint8]*Sidechain),
	}
}

// fetchSidechain returns the staged sidechain record for the given id,
// cloning it from the backing state on first touch, or creating it with the
// passed height as its creation height when no marker has referenced the id
// before.
func (v *blockView) fetchSidechain(id uint8, height int32) *Sidechain {
	if sc := v.staged[id]; sc != nil {
		return sc
	}

	var sc *Sidechain
	if backing := v.state.sidechains[id]; backing != nil {
		sc = backing.clone()
	} else {
		sc = newSidechain(id, height)
	}
	v.staged[id] = sc
	return sc
}

// commit writes every staged sidechain back into the backing state.
func (v *blockView) commit() {
	for id, sc := range v.staged {
		v.state.sidechains[id] = sc
	}
}

// ConnectBlock applies the marker outputs of the passed block to the state.
// Transactions are processed in block order and outputs in index order, so
// a deposit in an earlier transaction funds an execute in a later one
// within the same block.  The transaction at index 0 is the coinbase; it is
// the only carrier of authoritative votes.
//
// When any execute consensus rule is violated the block is rejected as a
// whole: a RuleError describing the violation is returned and the state is
// left untouched.
func (s *State) ConnectBlock(block *btcutil.Block, height int32) error {
	view := newBlockView(s)

	for txIdx, tx := range block.Transactions() {
		isCoinbase := txIdx == 0
		err := view.connectTransaction(tx.MsgTx(), isCoinbase, height)
		if err != nil {
			return err
		}
	}

	view.commit()
	if len(view.staged) > 0 {
		log.Debugf("Connected block at height %d: touched %d "+
			"sidechain(s)", height, len(view.staged))
	}
	return nil
}

// connectTransaction applies one transaction's marker outputs to the view.
// Deposits, bundle commits, and votes take effect immediately during the
// output sweep.  An execute marker only has its position recorded; its
// consensus checks and escrow effect run after the sweep so they observe
// the full output list.
func (v *blockView) connectTransaction(tx *wire.MsgTx, isCoinbase bool,
	height int32) error {

	executeIdx := -1
	var executeInfo MarkerInfo

	for outIdx, txOut := range tx.TxOut {
		info, ok := DecodeMarker(txOut.PkScript)
		if !ok {
			continue
		}

		switch info.Kind {
		case KindDeposit:
			sc := v.fetchSidechain(info.SidechainID, height)
			sc.EscrowBalance += txOut.Value
			log.Tracef("Deposit of %d to sidechain %d at height "+
				"%d, escrow now %d", txOut.Value, sc.ID,
				height, sc.EscrowBalance)

		case KindBundleCommit:
			sc := v.fetchSidechain(info.SidechainID, height)
			sc.fetchBundle(&info.Payload, height)

		case KindVoteYes:
			// Votes are only authoritative from the coinbase; a
			// vote anywhere else has no effect and creates
			// nothing.
			if !isCoinbase {
				continue
			}

			sc := v.fetchSidechain(info.SidechainID, height)
			bundle := sc.fetchBundle(&info.Payload, height)
			if !voteInWindow(height, bundle.FirstSeenHeight) {
				continue
			}

			bundle.YesVotes++
			if !bundle.Approved &&
				bundle.YesVotes >= VoteThreshold {

				bundle.Approved = true
				log.Debugf("Bundle %v on sidechain %d "+
					"approved at height %d with %d votes",
					bundle.Hash, sc.ID, height,
					bundle.YesVotes)
			}

		case KindExecute:
			if executeIdx != -1 {
				str := fmt.Sprintf("transaction carries "+
					"execute markers at outputs %d and %d",
					executeIdx, outIdx)
				return ruleError(ErrMultiExecute, str)
			}

			// DecodeMarker already refuses a zero count; the rule
			// stands on its own regardless.
			if info.NWithdrawals == 0 {
				str := "execute marker commits to an empty " +
					"withdrawal list"
				return ruleError(ErrZeroWithdrawals, str)
			}

			executeIdx = outIdx
			executeInfo = info
		}
	}

	if executeIdx != -1 {
		return v.connectExecute(tx, executeIdx, &executeInfo, height)
	}
	return nil
}

// connectExecute enforces the execute consensus rules against the outputs
// following the marker and, when they all pass, drains the withdrawal total
// from the sidechain escrow and marks the bundle executed.
func (v *blockView) connectExecute(tx *wire.MsgTx, markerIdx int,
	info *MarkerInfo, height int32) error {

	// The full withdrawal range must exist.  The count is compared in
	// 64-bit space so a hostile count near the uint32 ceiling cannot
	// wrap on 32-bit builds.
	if int64(markerIdx)+1+int64(info.NWithdrawals) > int64(len(tx.TxOut)) {
		str := fmt.Sprintf("execute marker at output %d commits to "+
			"%d withdrawals but only %d outputs follow it",
			markerIdx, info.NWithdrawals,
			len(tx.TxOut)-markerIdx-1)
		return ruleError(ErrWithdrawalsOOB, str)
	}
	first := markerIdx + 1
	last := first + int(info.NWithdrawals)

	sc := v.fetchSidechain(info.SidechainID, height)
	bundle := sc.fetchBundle(&info.Payload, height)

	if !bundle.Approved {
		str := fmt.Sprintf("bundle %v has %d of the %d votes "+
			"required for payout", bundle.Hash, bundle.YesVotes,
			VoteThreshold)
		return ruleError(ErrExecuteUnapproved, str)
	}
	if bundle.Executed {
		str := fmt.Sprintf("bundle %v has already been paid out",
			bundle.Hash)
		return ruleError(ErrAlreadyExecuted, str)
	}

	var withdrawSum int64
	for outIdx, txOut := range tx.TxOut[first:last] {
		if IsMarker(txOut.PkScript) {
			str := fmt.Sprintf("withdrawal output %d is itself a "+
				"drivechain marker", first+outIdx)
			return ruleError(ErrWithdrawalIsDrivechain, str)
		}
		if len(txOut.PkScript) > MaxWithdrawalScriptSize {
			str := fmt.Sprintf("withdrawal output %d script is "+
				"%d bytes, above the %d byte limit",
				first+outIdx, len(txOut.PkScript),
				MaxWithdrawalScriptSize)
			return ruleError(ErrWithdrawalScriptTooBig, str)
		}
		withdrawSum += txOut.Value
	}

	// Change outputs are allowed after the withdrawal range, further
	// markers are not.
	for outIdx, txOut := range tx.TxOut[last:] {
		if IsMarker(txOut.PkScript) {
			str := fmt.Sprintf("output %d after the withdrawal "+
				"range is a drivechain marker", last+outIdx)
			return ruleError(ErrPostWithdrawalIsDrivechain, str)
		}
	}

	computed, err := BundleHash(tx.TxOut[first:last])
	if err != nil {
		// Every withdrawal script was length-checked above.
		return AssertError(fmt.Sprintf("bundle hash over checked "+
			"withdrawals failed: %v", err))
	}
	if computed != info.Payload {
		str := fmt.Sprintf("execute marker commits to bundle %v but "+
			"the withdrawals hash to %v", info.Payload, computed)
		return ruleError(ErrBundleHashMismatch, str)
	}

	if sc.EscrowBalance < withdrawSum {
		str := fmt.Sprintf("withdrawals total %d but sidechain %d "+
			"escrow holds %d", withdrawSum, sc.ID,
			sc.EscrowBalance)
		return ruleError(ErrEscrowInsufficient, str)
	}

	// The marker output's own value is deliberately not part of the
	// escrow accounting.
	sc.EscrowBalance -= withdrawSum
	bundle.Executed = true

	log.Debugf("Executed bundle %v on sidechain %d at height %d: paid "+
		"%d across %d withdrawals, escrow now %d", bundle.Hash, sc.ID,
		height, withdrawSum, info.NWithdrawals, sc.EscrowBalance)
	return nil
}
