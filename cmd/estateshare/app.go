package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bitfsorg/estateshare-go/config"
	"github.com/bitfsorg/estateshare-go/disburse"
	"github.com/bitfsorg/estateshare-go/market"
	"github.com/bitfsorg/estateshare-go/metrics"
	"github.com/bitfsorg/estateshare-go/network"
	"github.com/bitfsorg/estateshare-go/rental"
	"github.com/bitfsorg/estateshare-go/wallet"
)

// defaultPayerKeys is how many payer keys are derived from ESTATE_MNEMONIC
// when ESTATE_PAYER_KEYS is unset.
const defaultPayerKeys = 5

// app is the wired object graph of one invocation.
type app struct {
	cfg      config.Config
	rpc      *network.RPCClient
	contract *network.ContractClient
	store    rental.Store
	metrics  *metrics.Metrics
	rentals  market.RentalCapability
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) session() market.Session {
	return market.Session{Account: flags.account, Contract: a.contract}
}

// estateEnv collects the ESTATE_* environment variables.
func estateEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, "ESTATE_") {
			env[k] = v
		}
	}
	return env
}

// newApp connects to the ledger gateway, opens the rental store and
// resolves the rental mode.
func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
		URL:      cfg.RPCURL,
		User:     cfg.RPCUser,
		Password: cfg.RPCPass,
	}, estateEnv(), cfg.Network)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, metrics: metrics.NewMetrics(nil)}
	a.rpc = network.NewRPCClient(*rpcCfg, network.WithRPCLogger(log.Named("rpc")))
	a.contract = network.NewContractClient(a.rpc)

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	a.store = rental.Instrument(store, cfg.Store, a.metrics)

	transferer, err := newTransferer(cfg, a.rpc, estateEnv())
	if err != nil {
		a.Close()
		return nil, err
	}

	d := disburse.New(transferer, disburse.WithLogger(log), disburse.WithMetrics(a.metrics))
	orch := market.NewOrchestrator(a.store, d,
		market.WithLogger(log),
		market.WithMetrics(a.metrics),
		market.WithOverwrite(cfg.AllowOverwrite),
		market.WithExclusiveWrites(cfg.ExclusiveRentals),
	)
	onchain := market.NewOnChainRental(a.rpc, log)

	mode, err := market.ParseMode(cfg.RentalMode)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.rentals, err = market.SelectCapability(ctx, mode, a.contract, onchain, orch)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Debug("rental mode selected",
		zap.String("configured", string(mode)),
		zap.String("selected", string(a.rentals.Mode())),
		zap.String("network", rpcCfg.Network))
	return a, nil
}

// openStore opens the configured rental store and returns its closer.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (rental.Store, func(), error) {
	switch cfg.Store {
	case "memory":
		return rental.NewMemoryStore(), func() {}, nil
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
		s, err := rental.OpenBoltStore(cfg.StorePath())
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "redis":
		s, err := rental.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := rental.OpenPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidStore, cfg.Store)
}

// newTransferer returns the gateway itself, or a local signer over the
// wallet in ESTATE_MNEMONIC when cfg.Transfer is "chain".
func newTransferer(cfg config.Config, rpc *network.RPCClient, env map[string]string) (network.Transferer, error) {
	if cfg.Transfer != "chain" {
		return rpc, nil
	}
	keys, err := loadKeyring(cfg.Network, env)
	if err != nil {
		return nil, err
	}
	return network.NewChainTransferer(rpc, keys, cfg.FeeRate), nil
}

func loadKeyring(networkName string, env map[string]string) (*wallet.Keyring, error) {
	mnemonic := env["ESTATE_MNEMONIC"]
	if mnemonic == "" {
		return nil, fmt.Errorf("chain transfers need ESTATE_MNEMONIC")
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, env["ESTATE_PASSPHRASE"])
	if err != nil {
		return nil, err
	}
	net, err := wallet.GetNetwork(networkName)
	if err != nil {
		return nil, err
	}
	w, err := wallet.NewWallet(seed, net)
	if err != nil {
		return nil, err
	}

	count := uint64(defaultPayerKeys)
	if v := env["ESTATE_PAYER_KEYS"]; v != "" {
		if count, err = strconv.ParseUint(v, 10, 32); err != nil || count == 0 {
			return nil, fmt.Errorf("invalid ESTATE_PAYER_KEYS %q", v)
		}
	}
	return wallet.NewKeyring(w, uint32(count))
}
