// Package testutil provides the key and transaction helpers used by the
// library's tests and examples. It is published so downstream code can
// build fixtures the same way.
package testutil

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip32"
)

// GenKeyPair returns a fresh random keypair.
func GenKeyPair() (*btcec.PublicKey, *btcec.PrivateKey, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, err
	}
	return privateKey.PubKey(), privateKey, nil
}

// GenKeyPairFromRand derives a keypair from the given entropy source.
// Tests pass a seeded source to obtain reproducible keys.
func GenKeyPairFromRand(r io.Reader) (*btcec.PublicKey, *btcec.PrivateKey, error) {
	privateKey, err := secp256k1.GeneratePrivateKeyFromRand(r)
	if err != nil {
		return nil, nil, err
	}
	return privateKey.PubKey(), privateKey, nil
}

// DeriveKeyPairs derives n sequential child keypairs from the given seed.
func DeriveKeyPairs(seed []byte, n int) ([]*btcec.PublicKey, []*btcec.PrivateKey, error) {
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, nil, err
	}
	publicKeys := make([]*btcec.PublicKey, 0, n)
	privateKeys := make([]*btcec.PrivateKey, 0, n)
	for i := 0; i < n; i++ {
		childKey, err := masterKey.NewChildKey(uint32(i))
		if err != nil {
			return nil, nil, err
		}
		privateKey, publicKey := btcec.PrivKeyFromBytes(childKey.Key)
		publicKeys = append(publicKeys, publicKey)
		privateKeys = append(privateKeys, privateKey)
	}
	return publicKeys, privateKeys, nil
}

// TxFromHex decodes a serialized transaction fixture.
func TxFromHex(s string) (*wire.MsgTx, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return tx, nil
}
