package tx

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
)

// PaymentParams describes a single-recipient P2PKH payment.
type PaymentParams struct {
	Inputs     []*UTXO // candidate inputs, spent in order until the payment is covered
	To         string  // recipient address
	Amount     uint64  // satoshis to the recipient
	ChangeAddr string  // address receiving the change
	FeeRate    uint64  // sat/KB; zero means DefaultFeeRate
}

// BuildPayment selects inputs, builds a two-output transaction
// (recipient, change) and signs every input with its UTXO's key.
func BuildPayment(params *PaymentParams) (*Payment, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params", ErrNilParam)
	}
	if params.Amount < DustLimit {
		return nil, fmt.Errorf("%w: %d sat is below dust limit", ErrInvalidAmount, params.Amount)
	}

	toScript, err := lockingScriptFor(params.To)
	if err != nil {
		return nil, err
	}
	changeScript, err := lockingScriptFor(params.ChangeAddr)
	if err != nil {
		return nil, err
	}

	feeRate := params.FeeRate
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}

	// Greedy selection in the order given; fee assumes a change output.
	var selected []*UTXO
	var available, fee uint64
	for i, u := range params.Inputs {
		if u == nil {
			return nil, fmt.Errorf("%w: input[%d]", ErrNilParam, i)
		}
		selected = append(selected, u)
		available += u.Amount
		fee = EstimateFee(EstimateTxSize(len(selected), 2), feeRate)
		if available >= params.Amount+fee {
			break
		}
	}
	if available < params.Amount+fee || len(selected) == 0 {
		return nil, fmt.Errorf("%w: need %d sat, have %d sat",
			ErrInsufficientFunds, params.Amount+fee, available)
	}

	sdkTx := transaction.NewTransaction()
	for i, u := range selected {
		if err := addSignedInput(sdkTx, u, i); err != nil {
			return nil, err
		}
	}

	sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
		Satoshis:      params.Amount,
		LockingScript: toScript,
	})

	result := &Payment{Spent: selected, Fee: fee}
	changeAmount := available - params.Amount - fee
	if changeAmount > DustLimit {
		sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
			Satoshis:      changeAmount,
			LockingScript: changeScript,
		})
		result.Change = &UTXO{
			Vout:         1,
			Amount:       changeAmount,
			ScriptPubKey: []byte(*changeScript),
		}
	} else {
		result.Fee += changeAmount
	}

	if err := sdkTx.Sign(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	result.RawTx = sdkTx.Bytes()
	result.TxID = sdkTx.TxID().CloneBytes()
	result.Hex = hex.EncodeToString(result.RawTx)
	if result.Change != nil {
		result.Change.TxID = result.TxID
	}
	return result, nil
}

// addSignedInput attaches u as an input together with its source output
// and a P2PKH unlocker.
func addSignedInput(sdkTx *transaction.Transaction, u *UTXO, idx int) error {
	if len(u.TxID) != TxIDLen {
		return fmt.Errorf("%w: input[%d] txid length %d", ErrScriptBuild, idx, len(u.TxID))
	}
	if u.PrivateKey == nil {
		return fmt.Errorf("%w: input[%d] has nil PrivateKey", ErrSigningFailed, idx)
	}
	if len(u.ScriptPubKey) == 0 {
		return fmt.Errorf("%w: input[%d] has empty ScriptPubKey", ErrSigningFailed, idx)
	}

	hash, err := chainhash.NewHash(u.TxID)
	if err != nil {
		return fmt.Errorf("%w: input[%d] txid: %w", ErrScriptBuild, idx, err)
	}
	unlocker, err := p2pkh.Unlock(u.PrivateKey, nil)
	if err != nil {
		return fmt.Errorf("%w: unlocker for input %d: %w", ErrSigningFailed, idx, err)
	}

	sdkTx.AddInputWithOutput(
		&transaction.TransactionInput{
			SourceTXID:              hash,
			SourceTxOutIndex:        u.Vout,
			SequenceNumber:          transaction.DefaultSequenceNumber,
			UnlockingScriptTemplate: unlocker,
		},
		&transaction.TransactionOutput{
			Satoshis:      u.Amount,
			LockingScript: script.NewFromBytes(u.ScriptPubKey),
		},
	)
	return nil
}

// lockingScriptFor builds the P2PKH locking script paying addr.
func lockingScriptFor(addr string) (*script.Script, error) {
	a, err := script.NewAddressFromString(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAddress, addr, err)
	}
	lock, err := p2pkh.Lock(a)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock: %w", ErrScriptBuild, err)
	}
	return lock, nil
}

// BuildP2PKHScript creates a P2PKH locking script for the given public key.
func BuildP2PKHScript(pubKey *ec.PublicKey, mainnet bool) ([]byte, error) {
	if pubKey == nil {
		return nil, fmt.Errorf("%w: public key", ErrNilParam)
	}
	addr, err := script.NewAddressFromPublicKey(pubKey, mainnet)
	if err != nil {
		return nil, fmt.Errorf("%w: address from pubkey: %w", ErrScriptBuild, err)
	}
	lock, err := p2pkh.Lock(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: P2PKH lock script: %w", ErrScriptBuild, err)
	}
	return []byte(*lock), nil
}
