package market

import (
	"math/big"

	"golang.org/x/crypto/sha3"
)

// RentMethodSignature is the contract method a rental invokes.
const RentMethodSignature = "rentProperty(uint256,uint256)"

// MethodSelector returns the first four bytes of keccak256(signature).
func MethodSelector(signature string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	var sel [4]byte
	copy(sel[:], h.Sum(nil))
	return sel
}

// EncodeRentCall returns the ABI call data of rentProperty(id, years):
// the method selector followed by both arguments as 32-byte big-endian words.
func EncodeRentCall(propertyID uint64, years int) []byte {
	sel := MethodSelector(RentMethodSignature)
	out := make([]byte, 4+32+32)
	copy(out, sel[:])
	new(big.Int).SetUint64(propertyID).FillBytes(out[4:36])
	if years > 0 {
		big.NewInt(int64(years)).FillBytes(out[36:68])
	}
	return out
}
