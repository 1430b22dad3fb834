// Command estateshare rents out fractionally owned properties: it prices
// rentals, pays the rent to the property's shareholders and keeps the
// rental records, from the command line or as an HTTP service.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bitfsorg/estateshare-go/config"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	account    string

	network string
	rpcURL  string
	rpcUser string
	rpcPass string
	store   string
	mode    string
}

var (
	flags  globalFlags
	logger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "estateshare",
		Short: "Rent properties and share the rent with their owners",
		Long: `estateshare rents fractionally owned properties.

Rent is paid straight to the property's shareholders in proportion to the
shares they hold, and the rental is recorded once every payout settled.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err = buildLogger(cfg, flags.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			current = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.ConfigPath(config.DefaultDataDir()), "config file (key = value, or .yaml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&flags.account, "account", os.Getenv("ESTATE_ACCOUNT"), "acting account address")
	pf.StringVar(&flags.network, "network", "", "mainnet, testnet or regtest")
	pf.StringVar(&flags.rpcURL, "rpc-url", "", "ledger gateway JSON-RPC URL")
	pf.StringVar(&flags.rpcUser, "rpc-user", "", "ledger gateway user")
	pf.StringVar(&flags.rpcPass, "rpc-pass", "", "ledger gateway password")
	pf.StringVar(&flags.store, "store", "", "rental store: memory, bolt, redis or postgres")
	pf.StringVar(&flags.mode, "mode", "", "rental mode: auto, onchain or simulated")

	root.AddCommand(
		newInitCmd(),
		newMnemonicCmd(),
		newQuoteCmd(),
		newRentCmd(),
		newRentalCmd(),
		newRentalsCmd(),
		newDividendsCmd(),
		newDashboardCmd(),
		newServeCmd(),
	)
	return root
}

// current is the resolved configuration of this invocation.
var current config.Config

// loadConfig reads the config file, applies flag overrides and validates
// the result. A missing file is fine unless --config was given explicitly
// to a command other than init.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	optional := !cmd.Flags().Changed("config") || cmd.Name() == "init"
	if errors.Is(err, config.ErrConfigNotFound) && optional {
		cfg, err = config.DefaultConfig(), nil
	}
	if err != nil {
		return cfg, err
	}

	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.Network, flags.network)
	override(&cfg.RPCURL, flags.rpcURL)
	override(&cfg.RPCUser, flags.rpcUser)
	override(&cfg.RPCPass, flags.rpcPass)
	override(&cfg.Store, flags.store)
	override(&cfg.RentalMode, flags.mode)

	if err := config.ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func buildLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	if cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
	}
	return zcfg.Build()
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
