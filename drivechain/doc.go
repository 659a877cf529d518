// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package drivechain implements the sidechain escrow and withdrawal-bundle
consensus engine.

Specially tagged transaction outputs, introduced by the reserved
OP_DRIVECHAIN opcode, act as in-band control messages.  A DEPOSIT marker
locks its output value into the escrow pool of an 8-bit sidechain.  A
BUNDLE_COMMIT marker announces a candidate withdrawal bundle, identified by
a 32-byte hash committing to an ordered list of payout outputs.  VOTE_YES
markers, counted only from coinbase transactions and only within a sliding
window of blocks after the bundle was first seen, accumulate approval for a
bundle.  Once a bundle has gathered enough votes, a single EXECUTE marker
may spend it: the marker is followed in the same transaction by the exact
outputs the bundle hash commits to, and connecting the block drains their
total value from the sidechain's escrow.

The engine is driven by the outer block validator.  ConnectBlock applies a
block's marker outputs to the state and enforces the execute consensus
rules, failing the whole block with a RuleError when any is violated.
DisconnectBlock reverses a previously connected block so chain
reorganizations converge; the one effect it leaves in place is the bare
record of a sidechain that block first created.  Both entry points are serialized by the caller;
the engine performs no locking of its own.

The state lives entirely in memory.  Persistence, fee policy, mempool
admission, and signature checking of withdrawal outputs are the host
chain's concern.
*/
package drivechain
