package btcsign_sdk

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrEmptySignature is returned when parsing zero-length signature
	// bytes, which cannot carry the trailing sighash-type byte.
	ErrEmptySignature = errors.New("empty input signature")

	// ErrSigVerification is returned when a signature does not verify
	// against the computed signing digest.
	ErrSigVerification = errors.New("signature verification failed")
)

// InputSignature is a DER-encoded ECDSA signature followed by exactly one
// sighash-type byte, the form each witness element stores. Instances are
// immutable; construct them with NewInputSignature or ParseInputSignature.
type InputSignature struct {
	raw []byte
}

// NewInputSignature appends the sighash-type byte to the serialized
// signature.
func NewInputSignature(sig *ecdsa.Signature, hashType txscript.SigHashType) InputSignature {
	return InputSignature{raw: append(sig.Serialize(), byte(hashType))}
}

// ParseInputSignature validates untrusted bytes as a tagged signature: the
// bytes must be non-empty and everything before the trailing byte must
// parse as a DER signature. This guards against feeding garbage into a
// witness; no further validation is performed.
func ParseInputSignature(raw []byte) (InputSignature, error) {
	if len(raw) == 0 {
		return InputSignature{}, ErrEmptySignature
	}
	if _, err := ecdsa.ParseDERSignature(raw[:len(raw)-1]); err != nil {
		return InputSignature{}, err
	}
	sig := make([]byte, len(raw))
	copy(sig, raw)
	return InputSignature{raw: sig}, nil
}

// Content returns the signature bytes without the trailing sighash-type
// byte.
func (s InputSignature) Content() []byte {
	content := make([]byte, len(s.raw)-1)
	copy(content, s.raw[:len(s.raw)-1])
	return content
}

// SighashType decodes the trailing byte.
func (s InputSignature) SighashType() txscript.SigHashType {
	return txscript.SigHashType(s.raw[len(s.raw)-1])
}

// Bytes returns the stored signature-plus-tag concatenation.
func (s InputSignature) Bytes() []byte {
	raw := make([]byte, len(s.raw))
	copy(raw, s.raw)
	return raw
}

// Signature re-parses the content into the engine's signature form for
// verification.
func (s InputSignature) Signature() (*ecdsa.Signature, error) {
	return ecdsa.ParseDERSignature(s.raw[:len(s.raw)-1])
}
