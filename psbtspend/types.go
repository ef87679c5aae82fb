package psbtspend

// Input identifies an unspent output to be consumed by the transaction
// under construction.
type Input struct {
	OutTxID  string `json:"out_tx_id"`
	OutIndex uint32 `json:"out_index"`
}

// Output describes a destination for the transaction under construction.
// Script, when set, is used verbatim as the hex-encoded scriptPubKey;
// otherwise the scriptPubKey is derived from Address.
type Output struct {
	Address string `json:"address"`
	Script  string `json:"script"`
	Amount  uint64 `json:"amount"`
}
