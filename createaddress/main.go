package main

import (
	"encoding/hex"
	"log"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"

	"btcsign-sdk/multisig"
	"btcsign-sdk/p2wpk"
	"btcsign-sdk/p2wsh"
	"btcsign-sdk/testutil"
)

func main() {
	netParams := &chaincfg.SigNetParams
	//netParams := &chaincfg.TestNet3Params

	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		log.Fatal(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("new mnemonic %s \n", mnemonic)

	seed := bip39.NewSeed(mnemonic, "")
	publicKeys, privateKeys, err := testutil.DeriveKeyPairs(seed, 3)
	if err != nil {
		log.Fatal(err)
	}

	for i, publicKey := range publicKeys {
		log.Printf("participant %d private key %s \n", i,
			hex.EncodeToString(privateKeys[i].Serialize()))
		log.Printf("participant %d public key %s \n", i,
			hex.EncodeToString(publicKey.SerializeCompressed()))

		segwitAddress, err := p2wpk.NewInputSigner(publicKey, netParams).Address()
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("participant %d native segwit address %s \n", i,
			segwitAddress.EncodeAddress())
	}

	script, err := multisig.BuilderWithPublicKeys(publicKeys).
		SetQuorum(2).
		ToScript()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("2-of-3 redeem script %s \n", script)

	multisigAddress, err := p2wsh.NewInputSigner(script).Address(netParams)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("2-of-3 multisig address %s \n", multisigAddress.EncodeAddress())

	/**
	test btc faucet
	https://signetfaucet.com/
	https://alt.signetfaucet.com/
	*/
}
