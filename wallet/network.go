package wallet

import "fmt"

// NetworkConfig defines the parameters of a ledger network that matter to key handling.
type NetworkConfig struct {
	Name           string `json:"name"`
	AddressVersion byte   `json:"address_version"`
	RPCPort        uint16 `json:"rpc_port"`
}

// IsMainnet reports whether addresses use the mainnet version byte.
func (n *NetworkConfig) IsMainnet() bool {
	return n.Name == "mainnet"
}

// Predefined network configurations.
var (
	MainNet = NetworkConfig{Name: "mainnet", AddressVersion: 0x00, RPCPort: 8332}
	TestNet = NetworkConfig{Name: "testnet", AddressVersion: 0x6f, RPCPort: 18332}
	RegTest = NetworkConfig{Name: "regtest", AddressVersion: 0x6f, RPCPort: 18443}
)

var predefined = map[string]*NetworkConfig{
	"mainnet": &MainNet,
	"testnet": &TestNet,
	"regtest": &RegTest,
}

// GetNetwork returns a predefined network by name.
func GetNetwork(name string) (*NetworkConfig, error) {
	if net, ok := predefined[name]; ok {
		return net, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}
