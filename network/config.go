package network

import (
	"fmt"
	"net/url"
)

// Environment variables consulted by ResolveConfig.
const (
	EnvRPCURL  = "ESTATE_RPC_URL"
	EnvRPCUser = "ESTATE_RPC_USER"
	EnvRPCPass = "ESTATE_RPC_PASS"
)

// RPCConfig holds the connection parameters of a ledger gateway.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets are the local gateway defaults of the test networks.
// Mainnet has none and must always be configured.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18332", User: "estate", Password: "estate"},
	"testnet": {URL: "http://localhost:18333", User: "estate", Password: "estate"},
}

// overlay copies the non-empty connection fields of o onto c.
func (c *RPCConfig) overlay(o RPCConfig) {
	if o.URL != "" {
		c.URL = o.URL
	}
	if o.User != "" {
		c.User = o.User
	}
	if o.Password != "" {
		c.Password = o.Password
	}
}

// ResolveConfig layers the gateway settings for network: flags win over
// the ESTATE_RPC_* environment, which wins over NetworkPresets. Each field
// is resolved on its own, so a flag URL keeps the preset credentials.
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	cfg := NetworkPresets[network]
	cfg.overlay(RPCConfig{URL: env[EnvRPCURL], User: env[EnvRPCUser], Password: env[EnvRPCPass]})
	if flags != nil {
		cfg.overlay(*flags)
	}
	cfg.Network = network

	if cfg.URL == "" {
		return nil, fmt.Errorf("%w for %s (set --rpc-url, %s or rpc_url)", ErrNoEndpoint, network, EnvRPCURL)
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid gateway URL %q", ErrNoEndpoint, cfg.URL)
	}
	return &cfg, nil
}
