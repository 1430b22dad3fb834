package network

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/estateshare-go/tx"
)

// Signer resolves the private key that controls an address.
type Signer interface {
	PrivateKey(address string) (*ec.PrivateKey, error)
}

var _ Transferer = (*ChainTransferer)(nil)

// ChainTransferer settles transfers as signed P2PKH payments built locally
// from the payer's unspent outputs. Amounts are in satoshis.
type ChainTransferer struct {
	chain   BlockchainService
	signer  Signer
	feeRate uint64

	// mu serialises transfers so consecutive payments never select the same UTXO.
	mu sync.Mutex
}

// NewChainTransferer creates a transferer that funds payments from chain
// and signs them with keys from signer. A zero feeRate uses tx.DefaultFeeRate.
func NewChainTransferer(chain BlockchainService, signer Signer, feeRate uint64) *ChainTransferer {
	return &ChainTransferer{chain: chain, signer: signer, feeRate: feeRate}
}

// SubmitTransfer builds, signs and broadcasts a payment of amount from
// address from to address to.
func (t *ChainTransferer) SubmitTransfer(ctx context.Context, from, to string, amount *big.Int) (*Receipt, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: invalid amount %v", ErrTransferFailed, amount)
	}
	if !amount.IsUint64() {
		return nil, fmt.Errorf("%w: %s", ErrAmountOverflow, amount)
	}
	key, err := t.signer.PrivateKey(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnknownAccount, from, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	unspent, err := t.chain.ListUnspent(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: list unspent: %w", ErrTransferFailed, err)
	}
	inputs := make([]*tx.UTXO, 0, len(unspent))
	for _, u := range unspent {
		in, err := toTxInput(u, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
		inputs = append(inputs, in)
	}

	payment, err := tx.BuildPayment(&tx.PaymentParams{
		Inputs:     inputs,
		To:         to,
		Amount:     amount.Uint64(),
		ChangeAddr: from,
		FeeRate:    t.feeRate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	txid, err := t.chain.BroadcastTx(ctx, payment.Hex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return &Receipt{TxID: txid, From: from, To: to}, nil
}

// toTxInput converts a node UTXO (display-order txid, hex script) into a
// signable transaction input.
func toTxInput(u *UTXO, key *ec.PrivateKey) (*tx.UTXO, error) {
	h, err := chainhash.NewHashFromHex(u.TxID)
	if err != nil {
		return nil, fmt.Errorf("utxo %s:%d: txid: %w", u.TxID, u.Vout, err)
	}
	script, err := hex.DecodeString(u.ScriptPubKey)
	if err != nil {
		return nil, fmt.Errorf("utxo %s:%d: script: %w", u.TxID, u.Vout, err)
	}
	return &tx.UTXO{
		TxID:         h.CloneBytes(),
		Vout:         u.Vout,
		Amount:       u.Amount,
		ScriptPubKey: script,
		PrivateKey:   key,
	}, nil
}
