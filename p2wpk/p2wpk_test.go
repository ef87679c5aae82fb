package p2wpk

import (
	"bytes"
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"btcsign-sdk"
	"btcsign-sdk/testutil"
)

// A testnet transaction paying 0.1 tBTC to a witness public key hash on
// its second output, and the confirmed transaction that spent that
// output.
const (
	fundingTxHex = "02000000000101beccab33bc72bfc81b63fdec8a4a9a4719e4418bdb7b20e47b02074dc42f2d800000000" +
		"017160014f3b1b3819c1290cd5d675c1319dc7d9d98d571bcfeffffff02dceffa0200000000160014368c" +
		"6b7c38f0ff0839bf78d77544da96cb685bf28096980000000000160014284175e336fa10865fb4d1351c9" +
		"e18e730f5d6f90247304402207c893c85d75e2230dde04f5a1e2c83c4f0b7d93213372746eb2227b06826" +
		"0d840220705484b6ec70a8fc0d1f80c3a98079602595351b7a9bca7caddb9a6adb0a3440012103150514f" +
		"05f3e3f40c7b404b16f8a09c2c71bad3ba8da5dd1e411a7069cc080a004b91300"

	spendTxHex = "0200000000010145f4a039a4bd6cc753ec02a22498b98427c6c288244340fff9d2abb5c63e48390100000" +
		"000ffffffff0100000000000000000f6a0d48656c6c6f2045786f6e756d2102483045022100bdc1be9286" +
		"2281061a14f7153dd57b7b3befa2b98fe85ae5d427d3921fe165ca02202f259a63f965f6d7f0503584b46" +
		"3ce4b67c09b5a2e99c27f236f7a986743a94a0121031cf96b4fef362af7d86ee6c7159fa89485730dac8e" +
		"3090163dd0c282dbc84f2200000000"
)

// assertValidSpend runs the signed input through the script engine
// against the output it spends.
func assertValidSpend(t *testing.T, tx *wire.MsgTx, index int, prevOut *wire.TxOut) {
	t.Helper()

	fetcher := txscript.NewCannedPrevOutputFetcher(prevOut.PkScript, prevOut.Value)
	vm, err := txscript.NewEngine(
		prevOut.PkScript, tx, index, txscript.StandardVerifyFlags, nil,
		txscript.NewTxSigHashes(tx, fetcher), prevOut.Value, fetcher,
	)
	require.NoError(t, err)
	require.NoError(t, vm.Execute())
}

// TestSpendReproducesTestnetTransaction rebuilds the confirmed spending
// transaction from its own witness data: the embedded signature must
// verify against our digest, witness assembly must reproduce the
// transaction byte for byte, and the script engine must accept it.
func TestSpendReproducesTestnetTransaction(t *testing.T) {
	t.Parallel()

	fundingTx, err := testutil.TxFromHex(fundingTxHex)
	require.NoError(t, err)
	spendTx, err := testutil.TxFromHex(spendTxHex)
	require.NoError(t, err)
	require.Equal(t, fundingTx.TxHash(), spendTx.TxIn[0].PreviousOutPoint.Hash)

	witness := spendTx.TxIn[0].Witness
	require.Len(t, witness, 2)

	publicKey, err := btcec.ParsePubKey(witness[1])
	require.NoError(t, err)
	signer := NewInputSigner(publicKey, &chaincfg.TestNet3Params)

	// The funding output must be exactly the witness program we derive
	// for the key.
	scriptPubKey, err := signer.ScriptPubKey()
	require.NoError(t, err)
	spentOut := fundingTx.TxOut[spendTx.TxIn[0].PreviousOutPoint.Index]
	require.Equal(t, spentOut.PkScript, scriptPubKey)

	// The confirmed signature must verify against the digest we compute.
	sig, err := btcsign_sdk.ParseInputSignature(witness[0])
	require.NoError(t, err)
	require.Equal(t, txscript.SigHashAll, sig.SighashType())

	ref := btcsign_sdk.NewTxInRef(spendTx, 0)
	value := btcsign_sdk.PrevTx(fundingTx)
	require.NoError(t, signer.VerifyInput(ref, value, publicKey, sig))

	// Any change to the signature bytes must break verification.
	corrupt := sig.Bytes()
	corrupt[len(corrupt)-2] ^= 0x01
	badSig, err := btcsign_sdk.ParseInputSignature(corrupt)
	require.NoError(t, err)
	err = signer.VerifyInput(ref, value, publicKey, badSig)
	require.ErrorIs(t, err, btcsign_sdk.ErrSigVerification)

	// Reassembling the witness must reproduce the confirmed transaction.
	rebuilt := spendTx.Copy()
	rebuilt.TxIn[0].Witness = nil
	signer.SpendInput(rebuilt.TxIn[0], sig)

	var buf bytes.Buffer
	require.NoError(t, rebuilt.Serialize(&buf))
	require.Equal(t, spendTxHex, hex.EncodeToString(buf.Bytes()))

	assertValidSpend(t, rebuilt, 0, spentOut)
}

// TestSignFreshKey signs a locally built transaction end to end and runs
// the result through the script engine.
func TestSignFreshKey(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	publicKey, secretKey, err := testutil.GenKeyPairFromRand(rng)
	require.NoError(t, err)

	signer := NewInputSigner(publicKey, &chaincfg.TestNet3Params)
	address, err := signer.Address()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(address.EncodeAddress(), "tb1"))

	scriptPubKey, err := signer.ScriptPubKey()
	require.NoError(t, err)

	fundingTx := wire.NewMsgTx(wire.TxVersion)
	fundingTx.AddTxOut(wire.NewTxOut(100_000, scriptPubKey))
	fundingHash := fundingTx.TxHash()

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&fundingHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(99_000, scriptPubKey))

	ref := btcsign_sdk.NewTxInRef(tx, 0)
	value := btcsign_sdk.Amount(100_000)

	sig, err := signer.SignInput(ref, value, secretKey)
	require.NoError(t, err)
	require.NoError(t, signer.VerifyInput(ref, value, publicKey, sig))

	// A signature from one key must not verify under another.
	otherKey, _, err := testutil.GenKeyPairFromRand(rng)
	require.NoError(t, err)
	err = signer.VerifyInput(ref, value, otherKey, sig)
	require.ErrorIs(t, err, btcsign_sdk.ErrSigVerification)

	signer.SpendInput(tx.TxIn[0], sig)
	assertValidSpend(t, tx, 0, fundingTx.TxOut[0])
}
