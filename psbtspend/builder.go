// Package psbtspend exchanges partially signed transactions between the
// participants of a multisig spend. A coordinator creates a packet for
// the unsigned transaction, each participant attaches its signature, and
// whoever holds a quorum of signatures finalizes and extracts the fully
// signed transaction. Packets travel as hex strings.
package psbtspend

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"btcsign-sdk"
	"btcsign-sdk/multisig"
	"btcsign-sdk/p2wpk"
	"btcsign-sdk/p2wsh"
)

// Builder wraps a PSBT packet under construction.
type Builder struct {
	NetParams *chaincfg.Params
	Updater   *psbt.Updater
}

// NewBuilder creates a packet spending the given inputs to the given
// outputs. The transaction skeleton uses version 2, zero lock time, and
// the maximum sequence on every input.
func NewBuilder(netParams *chaincfg.Params, ins []Input, outs []Output) (*Builder, error) {
	var (
		txIns      = make([]*wire.OutPoint, 0, len(ins))
		txOuts     = make([]*wire.TxOut, 0, len(outs))
		nSequences = make([]uint32, 0, len(ins))
	)
	for _, in := range ins {
		txHash, err := chainhash.NewHashFromStr(in.OutTxID)
		if err != nil {
			return nil, err
		}
		txIns = append(txIns, wire.NewOutPoint(txHash, in.OutIndex))
		nSequences = append(nSequences, wire.MaxTxInSequenceNum)
	}

	for _, out := range outs {
		pkScript, err := outputScript(out, netParams)
		if err != nil {
			return nil, err
		}
		txOuts = append(txOuts, wire.NewTxOut(int64(out.Amount), pkScript))
	}

	packet, err := psbt.New(txIns, txOuts, 2, 0, nSequences)
	if err != nil {
		return nil, err
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return nil, err
	}
	return &Builder{NetParams: netParams, Updater: updater}, nil
}

// NewBuilderFromPacket resumes work on a packet received from another
// participant.
func NewBuilderFromPacket(netParams *chaincfg.Params, packetHex string) (*Builder, error) {
	b, err := hex.DecodeString(packetHex)
	if err != nil {
		return nil, err
	}
	packet, err := psbt.NewFromRawBytes(bytes.NewReader(b), false)
	if err != nil {
		return nil, err
	}
	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return nil, err
	}
	return &Builder{NetParams: netParams, Updater: updater}, nil
}

func outputScript(out Output, netParams *chaincfg.Params) ([]byte, error) {
	if out.Script != "" {
		return hex.DecodeString(out.Script)
	}
	address, err := btcutil.DecodeAddress(out.Address, netParams)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(address)
}

// AttachKeyUtxo records the single-key witness UTXO spent by the given
// input, so that any holder of the packet can compute its signing digest.
func (s *Builder) AttachKeyUtxo(index int, publicKey *btcec.PublicKey, amount uint64) error {
	pkScript, err := p2wpk.NewInputSigner(publicKey, s.NetParams).ScriptPubKey()
	if err != nil {
		return err
	}
	txOut := wire.TxOut{Value: int64(amount), PkScript: pkScript}
	if err := s.Updater.AddInWitnessUtxo(&txOut, index); err != nil {
		return err
	}
	return s.Updater.AddInSighashType(txscript.SigHashAll, index)
}

// AttachMultisigUtxo records the multisig witness UTXO spent by the given
// input along with its redeem script, which co-signers need both for the
// digest and for finalization.
func (s *Builder) AttachMultisigUtxo(index int, script *multisig.RedeemScript, amount uint64) error {
	pkScript, err := p2wsh.NewInputSigner(script).ScriptPubKey(s.NetParams)
	if err != nil {
		return err
	}
	txOut := wire.TxOut{Value: int64(amount), PkScript: pkScript}
	if err := s.Updater.AddInWitnessUtxo(&txOut, index); err != nil {
		return err
	}
	if err := s.Updater.AddInSighashType(txscript.SigHashAll, index); err != nil {
		return err
	}
	return s.Updater.AddInWitnessScript(script.Script(), index)
}

// SignKeyInput signs a single-key input with the given secret key and
// finalizes it. AttachKeyUtxo must have recorded the input's UTXO first.
func (s *Builder) SignKeyInput(index int, secret *btcec.PrivateKey) error {
	witnessUtxo := s.Updater.Upsbt.Inputs[index].WitnessUtxo
	if witnessUtxo == nil {
		return fmt.Errorf("input %d: no witness utxo attached", index)
	}

	signer := p2wpk.NewInputSigner(secret.PubKey(), s.NetParams)
	ref := btcsign_sdk.NewTxInRef(s.Updater.Upsbt.UnsignedTx, index)
	sig, err := signer.SignInput(ref, btcsign_sdk.Amount(uint64(witnessUtxo.Value)), secret)
	if err != nil {
		return err
	}

	res, err := s.Updater.Sign(index, sig.Bytes(),
		secret.PubKey().SerializeCompressed(), nil, nil)
	if err != nil || res != 0 {
		return fmt.Errorf("input %d: sign outcome %d: %v", index, res, err)
	}
	_, err = psbt.MaybeFinalize(s.Updater.Upsbt, index)
	if err != nil {
		return fmt.Errorf("input %d: %v", index, err)
	}
	return nil
}

// SignMultisigInput contributes one participant's signature for a
// multisig input. The input is not finalized here; that happens in
// ExtractTransaction once a quorum of partial signatures is present. The
// finalizer orders the signatures by their keys' position in the redeem
// script, matching the witness the direct p2wsh signer assembles.
func (s *Builder) SignMultisigInput(index int, secret *btcec.PrivateKey) error {
	in := s.Updater.Upsbt.Inputs[index]
	if in.WitnessUtxo == nil {
		return fmt.Errorf("input %d: no witness utxo attached", index)
	}
	script, err := multisig.ParseRedeemScript(in.WitnessScript)
	if err != nil {
		return fmt.Errorf("input %d: %w", index, err)
	}

	signer := p2wsh.NewInputSigner(script)
	ref := btcsign_sdk.NewTxInRef(s.Updater.Upsbt.UnsignedTx, index)
	sig, err := signer.SignInput(ref, btcsign_sdk.Amount(uint64(in.WitnessUtxo.Value)), secret)
	if err != nil {
		return err
	}

	res, err := s.Updater.Sign(index, sig.Bytes(),
		secret.PubKey().SerializeCompressed(), nil, in.WitnessScript)
	if err != nil || res != 0 {
		return fmt.Errorf("input %d: sign outcome %d: %v", index, res, err)
	}
	return nil
}

// AttachFinalWitness injects an externally assembled witness stack for
// the given input, serialized the way the packet's finalizer would have.
// The input's UTXO must already be attached.
func (s *Builder) AttachFinalWitness(index int, witness wire.TxWitness) error {
	var buf bytes.Buffer
	wire.WriteVarInt(&buf, 0, uint64(len(witness)))
	for _, item := range witness {
		wire.WriteVarBytes(&buf, 0, item)
	}
	s.Updater.Upsbt.Inputs[index].FinalScriptWitness = buf.Bytes()
	return s.Updater.Upsbt.SanityCheck()
}

// AddOutput appends destinations to the unsigned transaction. Only valid
// before any input is signed.
func (s *Builder) AddOutput(outs []Output) error {
	for _, out := range outs {
		pkScript, err := outputScript(out, s.NetParams)
		if err != nil {
			return err
		}
		s.Updater.Upsbt.UnsignedTx.AddTxOut(wire.NewTxOut(int64(out.Amount), pkScript))
	}
	s.Updater.Upsbt.Outputs = make([]psbt.POutput, len(s.Updater.Upsbt.UnsignedTx.TxOut))
	return nil
}

// Inputs returns the unsigned transaction's inputs.
func (s *Builder) Inputs() []*wire.TxIn {
	return s.Updater.Upsbt.UnsignedTx.TxIn
}

// Outputs returns the unsigned transaction's outputs.
func (s *Builder) Outputs() []*wire.TxOut {
	return s.Updater.Upsbt.UnsignedTx.TxOut
}

// IsComplete reports whether every input carries a finalized witness.
func (s *Builder) IsComplete() bool {
	return s.Updater.Upsbt.IsComplete()
}

// Serialize renders the packet as hex for transport to the next
// participant.
func (s *Builder) Serialize() (string, error) {
	var b bytes.Buffer
	if err := s.Updater.Upsbt.Serialize(&b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b.Bytes()), nil
}

// ExtractTransaction finalizes every input that has gathered enough
// signatures and returns the fully signed transaction as hex.
//
// The packet finalizer handles redeem scripts of up to sixteen keys.
// Larger scripts must have their witness assembled with p2wsh.SpendInput
// and injected through AttachFinalWitness.
func (s *Builder) ExtractTransaction() (string, error) {
	if !s.IsComplete() {
		for i := range s.Updater.Upsbt.UnsignedTx.TxIn {
			success, err := psbt.MaybeFinalize(s.Updater.Upsbt, i)
			if err != nil || !success {
				return "", fmt.Errorf("input %d: finalize: %v", i, err)
			}
		}
		if err := psbt.MaybeFinalizeAll(s.Updater.Upsbt); err != nil {
			return "", err
		}
	}

	tx, err := psbt.Extract(s.Updater.Upsbt)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := tx.Serialize(&b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b.Bytes()), nil
}
