package btcsign_sdk

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// WitnessSignatureHash computes the BIP-143 signing digest for the
// referenced input, committing to every input and output of the
// transaction (the SIGHASH_ALL variant, the only one this library signs).
// The scriptCode is the single-key claim script for P2WPKH spends or the
// redeem script for P2WSH spends; value resolves to the amount of the
// output being spent. The digest is the double-SHA256 of
//
//	nVersion || hashPrevouts || hashSequence || outpoint ||
//	varbytes(scriptCode) || amount || nSequence || hashOutputs ||
//	nLockTime || sighash type
//
// with all integers little-endian.
func WitnessSignatureHash(ref TxInRef, scriptCode []byte, value TxOutValue) []byte {
	tx := ref.Tx()
	txIn := ref.TxIn()
	amount := value.ResolveAmount(ref)

	var sigHash bytes.Buffer
	var scratch [8]byte

	binary.LittleEndian.PutUint32(scratch[:4], uint32(tx.Version))
	sigHash.Write(scratch[:4])

	hashPrevouts := calcHashPrevouts(tx)
	sigHash.Write(hashPrevouts[:])
	hashSequence := calcHashSequence(tx)
	sigHash.Write(hashSequence[:])

	sigHash.Write(txIn.PreviousOutPoint.Hash[:])
	binary.LittleEndian.PutUint32(scratch[:4], txIn.PreviousOutPoint.Index)
	sigHash.Write(scratch[:4])

	wire.WriteVarBytes(&sigHash, 0, scriptCode)

	binary.LittleEndian.PutUint64(scratch[:], amount)
	sigHash.Write(scratch[:])

	binary.LittleEndian.PutUint32(scratch[:4], txIn.Sequence)
	sigHash.Write(scratch[:4])

	hashOutputs := calcHashOutputs(tx)
	sigHash.Write(hashOutputs[:])

	binary.LittleEndian.PutUint32(scratch[:4], tx.LockTime)
	sigHash.Write(scratch[:4])

	binary.LittleEndian.PutUint32(scratch[:4], uint32(txscript.SigHashAll))
	sigHash.Write(scratch[:4])

	return chainhash.DoubleHashB(sigHash.Bytes())
}

// calcHashPrevouts double-hashes the concatenated outpoints of every
// input.
func calcHashPrevouts(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	var scratch [4]byte
	for _, txIn := range tx.TxIn {
		b.Write(txIn.PreviousOutPoint.Hash[:])
		binary.LittleEndian.PutUint32(scratch[:], txIn.PreviousOutPoint.Index)
		b.Write(scratch[:])
	}
	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashSequence double-hashes the concatenated sequence words of every
// input.
func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	var scratch [4]byte
	for _, txIn := range tx.TxIn {
		binary.LittleEndian.PutUint32(scratch[:], txIn.Sequence)
		b.Write(scratch[:])
	}
	return chainhash.DoubleHashH(b.Bytes())
}

// calcHashOutputs double-hashes the wire serialization of every output.
func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, txOut := range tx.TxOut {
		wire.WriteTxOut(&b, 0, 0, txOut)
	}
	return chainhash.DoubleHashH(b.Bytes())
}
