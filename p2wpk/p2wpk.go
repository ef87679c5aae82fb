// Package p2wpk signs pay-to-witness-public-key inputs: transaction
// inputs that spend an output locked to the hash of a single compressed
// public key.
package p2wpk

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"btcsign-sdk"
)

// InputSigner signs inputs spendable by a single public key. The network
// parameters affect only address derivation, never signing. The signer
// holds no mutable state and is safe for concurrent use; the underlying
// engine derives signature nonces deterministically per call.
type InputSigner struct {
	publicKey *btcec.PublicKey
	netParams *chaincfg.Params
}

// NewInputSigner returns a signer for inputs locked to the given key.
func NewInputSigner(publicKey *btcec.PublicKey, netParams *chaincfg.Params) *InputSigner {
	return &InputSigner{
		publicKey: publicKey,
		netParams: netParams,
	}
}

// PublicKey returns the key the signer was created for.
func (s *InputSigner) PublicKey() *btcec.PublicKey {
	return s.publicKey
}

// Address derives the pay-to-witness-public-key-hash address spendable by
// the signer's key.
func (s *InputSigner) Address() (*btcutil.AddressWitnessPubKeyHash, error) {
	pubKeyHash := btcutil.Hash160(s.publicKey.SerializeCompressed())
	return btcutil.NewAddressWitnessPubKeyHash(pubKeyHash, s.netParams)
}

// ScriptPubKey returns the witness program that locks an output to the
// signer's key.
func (s *InputSigner) ScriptPubKey() ([]byte, error) {
	address, err := s.Address()
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(address)
}

// claimScript is the BIP-143 script code for a witness key hash spend:
// the legacy pay-to-public-key-hash script of the signer's key.
func (s *InputSigner) claimScript() ([]byte, error) {
	pubKeyHash := btcutil.Hash160(s.publicKey.SerializeCompressed())
	address, err := btcutil.NewAddressPubKeyHash(pubKeyHash, s.netParams)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(address)
}

// SignatureHash computes the signing digest for the referenced input.
func (s *InputSigner) SignatureHash(ref btcsign_sdk.TxInRef,
	value btcsign_sdk.TxOutValue) ([]byte, error) {

	script, err := s.claimScript()
	if err != nil {
		return nil, err
	}
	return btcsign_sdk.WitnessSignatureHash(ref, script, value), nil
}

// SignInput signs the referenced input with the given secret key and
// returns the signature tagged SIGHASH_ALL.
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
// the signature's content against the given public key.
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

// SpendInput sets the input's witness to the two-element stack the
// validator expects: the tagged signature followed by the compressed
// public key. The signature is assumed valid at this point; sign or
// verify first.
func (s *InputSigner) SpendInput(in *wire.TxIn, sig btcsign_sdk.InputSignature) {
	in.Witness = wire.TxWitness{sig.Bytes(), s.publicKey.SerializeCompressed()}
}
