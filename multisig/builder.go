package multisig

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
)

// RedeemScriptBuilder accumulates a quorum and an ordered set of public
// keys for a multisig redeem script. Accumulation never fails; all
// validation happens in the terminal ToScript call.
type RedeemScriptBuilder struct {
	publicKeys []*btcec.PublicKey
	quorum     int
}

// NewRedeemScriptBuilder returns an empty builder.
func NewRedeemScriptBuilder() *RedeemScriptBuilder {
	return &RedeemScriptBuilder{}
}

// BuilderWithQuorum returns a builder with the quorum preset and no keys.
func BuilderWithQuorum(quorum int) *RedeemScriptBuilder {
	return &RedeemScriptBuilder{quorum: quorum}
}

// BuilderWithPublicKeys returns a builder preloaded with the given keys.
// The quorum defaults to the full key count until SetQuorum overrides it.
func BuilderWithPublicKeys(publicKeys []*btcec.PublicKey) *RedeemScriptBuilder {
	keys := make([]*btcec.PublicKey, len(publicKeys))
	copy(keys, publicKeys)
	return &RedeemScriptBuilder{
		publicKeys: keys,
		quorum:     len(keys),
	}
}

// AddPublicKey appends a participant key. Key order is preserved in the
// emitted script.
func (b *RedeemScriptBuilder) AddPublicKey(publicKey *btcec.PublicKey) *RedeemScriptBuilder {
	b.publicKeys = append(b.publicKeys, publicKey)
	return b
}

// SetQuorum sets the number of signatures required to spend.
func (b *RedeemScriptBuilder) SetQuorum(quorum int) *RedeemScriptBuilder {
	b.quorum = quorum
	return b
}

// ToScript validates the accumulated state and emits the redeem script.
// The checks run in a fixed order: a positive quorum (ErrNoQuorum), at
// least one key (ErrNotEnoughPublicKeys), and enough keys to satisfy the
// quorum (ErrIncorrectQuorum). No upper bound on the key count is
// enforced here.
func (b *RedeemScriptBuilder) ToScript() (*RedeemScript, error) {
	totalCount := len(b.publicKeys)
	if b.quorum <= 0 {
		return nil, ErrNoQuorum
	}
	if totalCount == 0 {
		return nil, ErrNotEnoughPublicKeys
	}
	if totalCount < b.quorum {
		return nil, ErrIncorrectQuorum
	}

	builder := txscript.NewScriptBuilder().AddInt64(int64(b.quorum))
	for _, publicKey := range b.publicKeys {
		builder.AddData(publicKey.SerializeCompressed())
	}
	script, err := builder.
		AddInt64(int64(totalCount)).
		AddOp(txscript.OP_CHECKMULTISIG).
		Script()
	if err != nil {
		return nil, err
	}
	return &RedeemScript{script: script}, nil
}
