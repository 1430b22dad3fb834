// Package wallet derives the payer keys used to sign rent and dividend
// transfers. Keys follow m/44'/236'/0'/{chain}/{index}.
package wallet

import (
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/compat/bip39"
)

// entropyBits maps the supported mnemonic lengths to BIP39 entropy sizes.
var entropyBits = map[int]int{12: 128, 24: 256}

// NewMnemonic returns a fresh BIP39 mnemonic of 12 or 24 words.
func NewMnemonic(words int) (string, error) {
	bits, ok := entropyBits[words]
	if !ok {
		return "", fmt.Errorf("%w: %d words", ErrInvalidEntropy, words)
	}
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("wallet: entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// SeedFromMnemonic turns a mnemonic and optional passphrase into the
// 64-byte wallet seed. Surrounding and repeated whitespace is ignored,
// so a phrase pasted from a file or an env var still matches.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	phrase := strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("wallet: seed: %w", err)
	}
	return seed, nil
}
