package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	PurposeBIP44   = 44
	CoinType       = 236
	PaymentAccount = 0

	ExternalChain = 0 // payer addresses
	InternalChain = 1 // change addresses

	Hardened = 0x80000000
)

// Wallet is an HD wallet holding the tenant's or owner's payment keys.
type Wallet struct {
	masterKey *bip32.ExtendedKey
	network   *NetworkConfig
}

// KeyPair holds a derived key pair and its address.
type KeyPair struct {
	PrivateKey *ec.PrivateKey `json:"-"`
	PublicKey  *ec.PublicKey  `json:"public_key"`
	Address    string         `json:"address"`
	Path       string         `json:"path"`
}

// NewWallet creates a Wallet from a BIP39 seed. A nil network means mainnet.
func NewWallet(seed []byte, network *NetworkConfig) (*Wallet, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if network == nil {
		network = &MainNet
	}

	net := &chaincfg.TestNet
	if network.IsMainnet() {
		net = &chaincfg.MainNet
	}

	masterKey, err := bip32.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	return &Wallet{masterKey: masterKey, network: network}, nil
}

// Network returns the wallet's network configuration.
func (w *Wallet) Network() *NetworkConfig {
	return w.network
}

// DeriveKey derives m/44'/236'/0'/chain/index.
func (w *Wallet) DeriveKey(chain, index uint32) (*KeyPair, error) {
	key := w.masterKey
	for depth, idx := range []uint32{PurposeBIP44 + Hardened, CoinType + Hardened, PaymentAccount + Hardened, chain, index} {
		var err error
		key, err = key.Child(idx)
		if err != nil {
			return nil, fmt.Errorf("%w: depth %d: %w", ErrDerivationFailed, depth, err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract EC private key: %w", ErrDerivationFailed, err)
	}
	pubKey := privKey.PubKey()
	addr, err := script.NewAddressFromPublicKey(pubKey, w.network.IsMainnet())
	if err != nil {
		return nil, fmt.Errorf("%w: address: %w", ErrDerivationFailed, err)
	}

	return &KeyPair{
		PrivateKey: privKey,
		PublicKey:  pubKey,
		Address:    addr.AddressString,
		Path:       fmt.Sprintf("m/44'/236'/0'/%d/%d", chain, index),
	}, nil
}

// DerivePayerKey derives the index-th payer key on the external chain.
func (w *Wallet) DerivePayerKey(index uint32) (*KeyPair, error) {
	return w.DeriveKey(ExternalChain, index)
}
