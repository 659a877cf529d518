// Copyright (c) 2025 The litecoin-patched developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package drivechain

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// BundleHash computes the canonical withdrawal-bundle commitment over the
// passed outputs, in order.  The image that is hashed is, for each output,
// the little-endian 64-bit output value, a single byte holding the script
// length, and the raw script bytes.  The commitment is the double-SHA256 of
// that image.
//
// A script longer than MaxWithdrawalScriptSize bytes cannot be represented
// in the one-byte length prefix and yields an error; the block connector
// rejects such outputs before hashing, so integrators building an execute
// transaction see the error at construction time instead.
func BundleHash(withdrawals []*wire.TxOut) (chainhash.Hash, error) {
	buf := make([]byte, 0, len(withdrawals)*64)

	for i, txOut := range withdrawals {
		if len(txOut.PkScript) > MaxWithdrawalScriptSize {
			return chainhash.Hash{}, fmt.Errorf("withdrawal %d "+
				"script is %d bytes, above the %d byte limit",
				i, len(txOut.PkScript), MaxWithdrawalScriptSize)
		}

		var value [8]byte
		binary.LittleEndian.PutUint64(value[:], uint64(txOut.Value))
		buf = append(buf, value[:]...)
		buf = append(buf, byte(len(txOut.PkScript)))
		buf = append(buf, txOut.PkScript...)
	}

	return chainhash.DoubleHashH(buf), nil
}
