// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var (
	validNetworks    = map[string]bool{"mainnet": true, "testnet": true, "regtest": true}
	validStores      = map[string]bool{"memory": true, "bolt": true, "redis": true, "postgres": true}
	validRentalModes = map[string]bool{"auto": true, "onchain": true, "simulated": true}
	validTransfers   = map[string]bool{"gateway": true, "chain": true}
)

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validNetworks[cfg.Network] {
		return ErrInvalidNetwork
	}

	if err := validateAddr(cfg.ListenAddr); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidListenAddr, err)
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if !validStores[cfg.Store] {
		return ErrInvalidStore
	}
	if cfg.Store == "redis" && cfg.RedisAddr == "" {
		return fmt.Errorf("%w: redis store requires redis_addr", ErrInvalidStore)
	}
	if cfg.Store == "postgres" && cfg.PostgresDSN == "" {
		return fmt.Errorf("%w: postgres store requires postgres_dsn", ErrInvalidStore)
	}

	if !validRentalModes[cfg.RentalMode] {
		return ErrInvalidRentalMode
	}
	if !validTransfers[cfg.Transfer] {
		return ErrInvalidTransfer
	}
	if cfg.Decimals < 0 || cfg.Decimals > 36 {
		return ErrInvalidDecimals
	}

	return nil
}

// validateAddr checks that addr is a valid host:port address.
func validateAddr(addr string) error {
	_, _, err := net.SplitHostPort(addr)
	return err
}
