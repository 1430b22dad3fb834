package wallet

import (
	"fmt"
	"sort"
	"sync"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Keyring maps payer addresses to their private keys.
type Keyring struct {
	mu   sync.RWMutex
	keys map[string]*ec.PrivateKey
}

// NewKeyring derives the first count payer keys of w.
func NewKeyring(w *Wallet, count uint32) (*Keyring, error) {
	kr := &Keyring{keys: make(map[string]*ec.PrivateKey, count)}
	for i := uint32(0); i < count; i++ {
		kp, err := w.DerivePayerKey(i)
		if err != nil {
			return nil, err
		}
		kr.keys[kp.Address] = kp.PrivateKey
	}
	return kr, nil
}

// Add registers a key pair.
func (k *Keyring) Add(kp *KeyPair) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys[kp.Address] = kp.PrivateKey
}

// PrivateKey returns the signing key for address.
func (k *Keyring) PrivateKey(address string) (*ec.PrivateKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok := k.keys[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAddress, address)
	}
	return key, nil
}

// Addresses returns the held addresses in sorted order.
func (k *Keyring) Addresses() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]string, 0, len(k.keys))
	for a := range k.keys {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
