// Package multisig builds and parses the redeem scripts that govern M-of-N
// multisignature segwit inputs.
//
// A standard redeem script has the form
//
//	<quorum> <pubkey 1> ... <pubkey n> <n> OP_CHECKMULTISIG
//
// with every public key pushed in its 33-byte compressed encoding. Scripts
// are built with RedeemScriptBuilder and parsed back with ParseRedeemScript;
// the two operations are exact inverses for every script either of them
// accepts.
package multisig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

var (
	// ErrIncorrectQuorum is returned when the quorum exceeds the number
	// of public keys added to the builder.
	ErrIncorrectQuorum = errors.New("not enough keys for the quorum")

	// ErrNoQuorum is returned when no quorum was set before building, or
	// when the first script element does not decode as one.
	ErrNoQuorum = errors.New("quorum was not set")

	// ErrNotEnoughPublicKeys is returned when the builder holds no keys,
	// or when the key count embedded in a parsed script does not match
	// the number of keys the script actually carries.
	ErrNotEnoughPublicKeys = errors.New("not enough public keys, at least " +
		"one public key must be specified")

	// ErrNotStandard is returned for any script that deviates from the
	// canonical multisig layout.
	ErrNotStandard = errors.New("given script is not a standard redeem script")
)

// RedeemScript is an immutable, validated multisig redeem script. Every
// instance is guaranteed to parse under the canonical grammar, whether it
// came from the builder or from untrusted bytes.
type RedeemScript struct {
	script []byte
}

// ParseRedeemScript validates raw script bytes against the canonical
// multisig layout and wraps them. Invalid bytes yield an error and no
// instance.
func ParseRedeemScript(script []byte) (*RedeemScript, error) {
	if _, err := parseContent(script); err != nil {
		return nil, err
	}
	raw := make([]byte, len(script))
	copy(raw, script)
	return &RedeemScript{script: raw}, nil
}

// RedeemScriptFromHex decodes a lower-case hex string produced by String
// and validates it the same way ParseRedeemScript does.
func RedeemScriptFromHex(s string) (*RedeemScript, error) {
	script, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return ParseRedeemScript(script)
}

// Script returns a copy of the raw script bytes.
func (s *RedeemScript) Script() []byte {
	script := make([]byte, len(s.script))
	copy(script, s.script)
	return script
}

// Content decodes the quorum and public keys embedded in the script.
func (s *RedeemScript) Content() *RedeemScriptContent {
	content, err := parseContent(s.script)
	if err != nil {
		// Construction validated the script, so reparsing cannot fail.
		panic("multisig: validated redeem script failed to reparse: " +
			err.Error())
	}
	return content
}

// WitnessAddress derives the pay-to-witness-script-hash address that locks
// coins to this redeem script on the given network.
func (s *RedeemScript) WitnessAddress(
	params *chaincfg.Params) (*btcutil.AddressWitnessScriptHash, error) {

	scriptHash := sha256.Sum256(s.script)
	return btcutil.NewAddressWitnessScriptHash(scriptHash[:], params)
}

// String renders the script as lower-case hex. It is the exact inverse of
// RedeemScriptFromHex.
func (s *RedeemScript) String() string {
	return hex.EncodeToString(s.script)
}

// MarshalText implements encoding.TextMarshaler using the hex form.
func (s *RedeemScript) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, validating the decoded
// script before accepting it.
func (s *RedeemScript) UnmarshalText(text []byte) error {
	parsed, err := RedeemScriptFromHex(string(text))
	if err != nil {
		return err
	}
	s.script = parsed.script
	return nil
}

// Equal reports whether two redeem scripts carry identical bytes.
func (s *RedeemScript) Equal(other *RedeemScript) bool {
	return bytes.Equal(s.script, other.script)
}

// RedeemScriptContent is the decoded form of a redeem script: the ordered
// participant keys and the signature quorum. Key order is significant, it
// is embedded in the script and drives witness assembly.
type RedeemScriptContent struct {
	// PublicKeys holds the participants' keys in script order.
	PublicKeys []*btcec.PublicKey

	// Quorum is the number of signatures required to spend an input
	// locked to the script.
	Quorum int
}

// asScriptInt interprets a script element as a non-negative integer: either
// a small-integer opcode (OP_0 through OP_16) or a data push of one to
// eight bytes read little-endian.
func asScriptInt(op byte, data []byte) (int, bool) {
	if txscript.IsSmallInt(op) {
		return txscript.AsSmallInt(op), true
	}
	if op <= txscript.OP_PUSHDATA4 && len(data) >= 1 && len(data) <= 8 {
		var v uint64
		for i, b := range data {
			v |= uint64(b) << (8 * uint(i))
		}
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// parseContent reads a script strictly in the canonical multisig grammar.
//
// The first element is the quorum. Every following multi-byte data push
// must be a parseable public key; a one-byte push is never a key (real
// keys are always longer), so it terminates the key sequence as the
// key-count candidate. The count must equal the number of keys collected,
// the next opcode must be OP_CHECKMULTISIG, and nothing may follow it.
//
// The quorum bounds are not re-checked here: the builder, not the parser,
// enforces 1 <= quorum <= n.
func parseContent(script []byte) (*RedeemScriptContent, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, script)

	if !tokenizer.Next() {
		return nil, ErrNoQuorum
	}
	quorum, ok := asScriptInt(tokenizer.Opcode(), tokenizer.Data())
	if !ok {
		return nil, ErrNoQuorum
	}

	var publicKeys []*btcec.PublicKey
	for {
		if !tokenizer.Next() {
			return nil, ErrNotStandard
		}
		op, data := tokenizer.Opcode(), tokenizer.Data()
		if op <= txscript.OP_PUSHDATA4 && len(data) != 1 {
			pubKey, err := btcec.ParsePubKey(data)
			if err != nil {
				return nil, ErrNotStandard
			}
			publicKeys = append(publicKeys, pubKey)
			continue
		}

		count, ok := asScriptInt(op, data)
		if !ok {
			return nil, ErrNotStandard
		}
		if count != len(publicKeys) {
			return nil, ErrNotEnoughPublicKeys
		}
		break
	}

	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_CHECKMULTISIG {
		return nil, ErrNotStandard
	}
	if tokenizer.Err() != nil || !tokenizer.Done() {
		return nil, ErrNotStandard
	}

	return &RedeemScriptContent{
		PublicKeys: publicKeys,
		Quorum:     quorum,
	}, nil
}
