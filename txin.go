// Package btcsign_sdk signs segregated-witness transaction inputs: it
// computes BIP-143 signing digests, wraps signatures with their sighash
// type, and carries the reference types shared by the p2wpk and p2wsh
// input signers.
package btcsign_sdk

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"
)

// TxInRef pairs a borrowed transaction with the index of one of its
// inputs. The transaction is not copied; callers must not mutate it while
// a reference is outstanding.
type TxInRef struct {
	tx    *wire.MsgTx
	index int
}

// NewTxInRef returns a reference to the given input. The index must be in
// range for the transaction; violating that is a programming error and
// panics rather than returning a value that would address wrong data.
func NewTxInRef(tx *wire.MsgTx, index int) TxInRef {
	if index < 0 || index >= len(tx.TxIn) {
		panic(fmt.Sprintf("input index %d out of range for transaction "+
			"with %d inputs", index, len(tx.TxIn)))
	}
	return TxInRef{tx: tx, index: index}
}

// Tx returns the referenced transaction.
func (r TxInRef) Tx() *wire.MsgTx {
	return r.tx
}

// Index returns the referenced input position.
func (r TxInRef) Index() int {
	return r.index
}

// TxIn returns the referenced input itself.
func (r TxInRef) TxIn() *wire.TxIn {
	return r.tx.TxIn[r.index]
}

// TxOutValue describes how to obtain the value of the output spent by an
// input: as a literal amount, by lookup in the full previous transaction,
// or from the specific previous output. The three forms exist so callers
// that already know the amount are not forced to materialize a previous
// transaction.
type TxOutValue interface {
	// ResolveAmount returns the spent amount in satoshis for the
	// referenced input.
	ResolveAmount(ref TxInRef) uint64
}

// Amount wraps an already-known output value.
func Amount(value uint64) TxOutValue {
	return amountValue(value)
}

// PrevTx wraps the full previous transaction. The amount is looked up via
// the outpoint index recorded in the input being signed; an index outside
// the previous transaction's outputs is a programming error and panics.
func PrevTx(tx *wire.MsgTx) TxOutValue {
	return prevTxValue{tx: tx}
}

// PrevOut wraps the specific output being spent.
func PrevOut(out *wire.TxOut) TxOutValue {
	return prevOutValue{out: out}
}

type amountValue uint64

func (v amountValue) ResolveAmount(TxInRef) uint64 {
	return uint64(v)
}

type prevTxValue struct {
	tx *wire.MsgTx
}

func (v prevTxValue) ResolveAmount(ref TxInRef) uint64 {
	outIndex := ref.TxIn().PreviousOutPoint.Index
	if outIndex >= uint32(len(v.tx.TxOut)) {
		panic(fmt.Sprintf("output index %d out of range for previous "+
			"transaction with %d outputs", outIndex, len(v.tx.TxOut)))
	}
	return uint64(v.tx.TxOut[outIndex].Value)
}

type prevOutValue struct {
	out *wire.TxOut
}

func (v prevOutValue) ResolveAmount(TxInRef) uint64 {
	return uint64(v.out.Value)
}
