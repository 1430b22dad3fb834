package tx

import (
	"bytes"
	"encoding/hex"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateTestKeyPair(t *testing.T) (*ec.PrivateKey, string) {
	t.Helper()
	privKey, err := ec.NewPrivateKey()
	require.NoError(t, err)
	addr, err := script.NewAddressFromPublicKey(privKey.PubKey(), false)
	require.NoError(t, err)
	return privKey, addr.AddressString
}

func testUTXO(t *testing.T, priv *ec.PrivateKey, seed byte, amount uint64) *UTXO {
	t.Helper()
	lock, err := BuildP2PKHScript(priv.PubKey(), false)
	require.NoError(t, err)
	return &UTXO{
		TxID:         bytes.Repeat([]byte{seed}, 32),
		Vout:         0,
		Amount:       amount,
		ScriptPubKey: lock,
		PrivateKey:   priv,
	}
}

func TestEstimateFee(t *testing.T) {
	tests := []struct {
		name string
		size int
		rate uint64
		want uint64
	}{
		{"zero size", 0, 1, 0},
		{"rounds up", 1, 1, 1},
		{"one KB", 1000, 1, 1},
		{"just over one KB", 1001, 1, 2},
		{"higher rate", 226, 500, 113},
		{"default rate", 226, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateFee(tt.size, tt.rate))
		})
	}
}

func TestEstimateTxSize(t *testing.T) {
	assert.Equal(t, 10+148+2*34, EstimateTxSize(1, 2))
	assert.Equal(t, 10+3*148+34, EstimateTxSize(3, 1))
}

func TestBuildPayment(t *testing.T) {
	payerKey, payerAddr := generateTestKeyPair(t)
	_, recipientAddr := generateTestKeyPair(t)

	payment, err := BuildPayment(&PaymentParams{
		Inputs:     []*UTXO{testUTXO(t, payerKey, 0x01, 100000)},
		To:         recipientAddr,
		Amount:     30000,
		ChangeAddr: payerAddr,
	})
	require.NoError(t, err)
	require.NotNil(t, payment)

	assert.Len(t, payment.TxID, TxIDLen)
	assert.Equal(t, hex.EncodeToString(payment.RawTx), payment.Hex)
	require.NotNil(t, payment.Change)
	assert.Equal(t, uint64(100000-30000)-payment.Fee, payment.Change.Amount)
	assert.Equal(t, payment.TxID, payment.Change.TxID)

	parsed, err := transaction.NewTransactionFromBytes(payment.RawTx)
	require.NoError(t, err)
	require.Len(t, parsed.Inputs, 1)
	require.Len(t, parsed.Outputs, 2)
	assert.Equal(t, uint64(30000), parsed.Outputs[0].Satoshis)
	assert.Equal(t, payment.Change.Amount, parsed.Outputs[1].Satoshis)
	assert.Greater(t, len(*parsed.Inputs[0].UnlockingScript), 0, "input should be signed")
}

func TestBuildPayment_SelectsOnlyNeededInputs(t *testing.T) {
	payerKey, payerAddr := generateTestKeyPair(t)
	_, recipientAddr := generateTestKeyPair(t)

	inputs := []*UTXO{
		testUTXO(t, payerKey, 0x01, 600),
		testUTXO(t, payerKey, 0x02, 600),
		testUTXO(t, payerKey, 0x03, 600),
	}
	payment, err := BuildPayment(&PaymentParams{
		Inputs:     inputs,
		To:         recipientAddr,
		Amount:     1000,
		ChangeAddr: payerAddr,
	})
	require.NoError(t, err)
	assert.Len(t, payment.Spent, 2)
}

func TestBuildPayment_Errors(t *testing.T) {
	payerKey, payerAddr := generateTestKeyPair(t)
	_, recipientAddr := generateTestKeyPair(t)

	tests := []struct {
		name    string
		params  *PaymentParams
		wantErr error
	}{
		{"nil params", nil, ErrNilParam},
		{"zero amount", &PaymentParams{
			Inputs: []*UTXO{testUTXO(t, payerKey, 0x01, 1000)}, To: recipientAddr, ChangeAddr: payerAddr,
		}, ErrInvalidAmount},
		{"bad recipient", &PaymentParams{
			Inputs: []*UTXO{testUTXO(t, payerKey, 0x01, 1000)}, To: "not-an-address", Amount: 10, ChangeAddr: payerAddr,
		}, ErrInvalidAddress},
		{"insufficient funds", &PaymentParams{
			Inputs: []*UTXO{testUTXO(t, payerKey, 0x01, 100)}, To: recipientAddr, Amount: 100, ChangeAddr: payerAddr,
		}, ErrInsufficientFunds},
		{"no inputs", &PaymentParams{
			To: recipientAddr, Amount: 100, ChangeAddr: payerAddr,
		}, ErrInsufficientFunds},
		{"nil input", &PaymentParams{
			Inputs: []*UTXO{nil}, To: recipientAddr, Amount: 100, ChangeAddr: payerAddr,
		}, ErrNilParam},
		{"missing key", &PaymentParams{
			Inputs: []*UTXO{{TxID: bytes.Repeat([]byte{0x01}, 32), Amount: 5000, ScriptPubKey: []byte{0x76}}},
			To:     recipientAddr, Amount: 100, ChangeAddr: payerAddr,
		}, ErrSigningFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPayment(tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildP2PKHScript(t *testing.T) {
	priv, _ := generateTestKeyPair(t)
	s, err := BuildP2PKHScript(priv.PubKey(), true)
	require.NoError(t, err)
	// OP_DUP OP_HASH160 OP_DATA_20 <hash> OP_EQUALVERIFY OP_CHECKSIG
	assert.Len(t, s, 25)

	_, err = BuildP2PKHScript(nil, true)
	assert.ErrorIs(t, err, ErrNilParam)
}
