package tx

import (
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// UTXO represents a spendable output owned by the payer.
type UTXO struct {
	TxID         []byte         `json:"txid"` // 32 bytes, internal byte order
	Vout         uint32         `json:"vout"`
	Amount       uint64         `json:"amount"`        // satoshis
	ScriptPubKey []byte         `json:"script_pubkey"` // locking script bytes
	PrivateKey   *ec.PrivateKey `json:"-"`             // signing key (not serialized)
}

// Payment is a built and signed value transfer.
type Payment struct {
	RawTx  []byte  // serialized signed transaction
	TxID   []byte  // transaction hash (32 bytes)
	Hex    string  // RawTx as hex, ready for broadcast
	Fee    uint64  // satoshis paid to miners
	Spent  []*UTXO // inputs consumed, in input order
	Change *UTXO   // change output back to the payer (nil if dust)
}
