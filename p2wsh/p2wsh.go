// Package p2wsh signs pay-to-witness-script-hash inputs locked to an
// M-of-N multisig redeem script. Several independent signers each
// contribute one signature over the same digest; the collected signatures
// are assembled into the input's witness in the order their keys appear
// in the redeem script.
package p2wsh

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"btcsign-sdk"
	"btcsign-sdk/multisig"
)

// InputSigner signs inputs locked to a multisig redeem script. The script
// fixes the participant keys and their order for every signer
// contributing to the spend; it is immutable shared reference data. The
// signer itself holds no mutable state and is safe for concurrent use.
type InputSigner struct {
	script *multisig.RedeemScript
}

// NewInputSigner returns a signer for inputs locked to the given redeem
// script.
func NewInputSigner(script *multisig.RedeemScript) *InputSigner {
	return &InputSigner{script: script}
}

// RedeemScript returns the script the signer was created for.
func (s *InputSigner) RedeemScript() *multisig.RedeemScript {
	return s.script
}

// Address derives the pay-to-witness-script-hash address that locks coins
// to the redeem script on the given network.
func (s *InputSigner) Address(
	netParams *chaincfg.Params) (*btcutil.AddressWitnessScriptHash, error) {

	return s.script.WitnessAddress(netParams)
}

// ScriptPubKey returns the witness program that locks an output to the
// redeem script.
func (s *InputSigner) ScriptPubKey(netParams *chaincfg.Params) ([]byte, error) {
	address, err := s.Address(netParams)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(address)
}

// SignatureHash computes the signing digest for the referenced input. The
// redeem script itself is the BIP-143 script code, so every participant
// signs the same digest.
func (s *InputSigner) SignatureHash(ref btcsign_sdk.TxInRef,
	value btcsign_sdk.TxOutValue) ([]byte, error) {

	return btcsign_sdk.WitnessSignatureHash(ref, s.script.Script(), value), nil
}

// SignInput signs the referenced input with one participant's secret key
// and returns the signature tagged SIGHASH_ALL.
func (s *InputSigner) SignInput(ref btcsign_sdk.TxInRef, value btcsign_sdk.TxOutValue,
	secret *btcec.PrivateKey) (btcsign_sdk.InputSignature, error) {

	digest, err := s.SignatureHash(ref, value)
	if err != nil {
		return btcsign_sdk.InputSignature{}, err
	}
	return btcsign_sdk.NewInputSignature(
		ecdsa.Sign(secret, digest), txscript.SigHashAll), nil
}

// VerifyInput recomputes the digest for the referenced input and checks
// one contributed signature against its participant's public key,
// independently of any other signatures.
func (s *InputSigner) VerifyInput(ref btcsign_sdk.TxInRef, value btcsign_sdk.TxOutValue,
	publicKey *btcec.PublicKey, sig btcsign_sdk.InputSignature) error {

	digest, err := s.SignatureHash(ref, value)
	if err != nil {
		return err
	}
	parsed, err := sig.Signature()
	if err != nil {
		return err
	}
	if !parsed.Verify(digest, publicKey) {
		return btcsign_sdk.ErrSigVerification
	}
	return nil
}

// SpendInput sets the input's witness to the stack the validator expects:
// a leading empty element (consumed by OP_CHECKMULTISIG's historical
// extra pop), the collected signatures, and the redeem script.
//
// Signatures MUST be ordered by the ascending position of their keys in
// the redeem script. An out-of-order stack fails validation even when
// every individual signature is valid.
func (s *InputSigner) SpendInput(in *wire.TxIn, sigs []btcsign_sdk.InputSignature) {
	witness := make(wire.TxWitness, 0, len(sigs)+2)
	witness = append(witness, nil)
	for _, sig := range sigs {
		witness = append(witness, sig.Bytes())
	}
	witness = append(witness, s.script.Script())
	in.Witness = witness
}
