package tx

const (
	// DustLimit is the smallest output value the network relays.
	DustLimit = uint64(1)

	// DefaultFeeRate is the fee rate in sat/KB used when none is given.
	DefaultFeeRate = uint64(1)

	// TxIDLen is the length of a transaction hash.
	TxIDLen = 32
)

// EstimateFee returns the fee in satoshis for a transaction of the given
// size at feeRate sat/KB, rounded up.
func EstimateFee(txSizeBytes int, feeRate uint64) uint64 {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	fee := uint64(txSizeBytes) * feeRate
	return (fee + 999) / 1000
}

// EstimateTxSize estimates the size of a P2PKH-only transaction.
//
//	base:   version(4) + locktime(4) + input count(1) + output count(1) = 10
//	input:  prevhash(32) + index(4) + scriptlen(1) + unlock(~107) + sequence(4) = 148
//	output: value(8) + scriptlen(1) + P2PKH script(25) = 34
func EstimateTxSize(numInputs, numOutputs int) int {
	return 10 + numInputs*148 + numOutputs*34
}
