// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = errors.New("config: invalid network (must be \"mainnet\", \"testnet\", or \"regtest\")")

	// ErrInvalidListenAddr indicates the listen address is malformed.
	ErrInvalidListenAddr = errors.New("config: invalid listen address")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")

	// ErrInvalidStore indicates an unknown store backend or missing backend settings.
	ErrInvalidStore = errors.New("config: invalid store (must be \"memory\", \"bolt\", \"redis\", or \"postgres\")")

	// ErrInvalidRentalMode indicates the rental mode is not recognized.
	ErrInvalidRentalMode = errors.New("config: invalid rental mode (must be \"auto\", \"onchain\", or \"simulated\")")

	// ErrInvalidTransfer indicates the transfer method is not recognized.
	ErrInvalidTransfer = errors.New("config: invalid transfer (must be \"gateway\" or \"chain\")")

	// ErrInvalidDecimals indicates an out-of-range display precision.
	ErrInvalidDecimals = errors.New("config: decimals must be between 0 and 36")
)
