// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and validates estateshare settings. Files are either
// flat "key = value" text or, when the name ends in .yaml or .yml, YAML.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of the estateshare binary.
type Config struct {
	DataDir    string `yaml:"datadir"`
	ListenAddr string `yaml:"listen"`
	Network    string `yaml:"network"`
	LogLevel   string `yaml:"loglevel"`
	LogFile    string `yaml:"logfile"`

	// Ledger gateway. Empty values fall back to ESTATE_RPC_* and network presets.
	RPCURL  string `yaml:"rpc_url"`
	RPCUser string `yaml:"rpc_user"`
	RPCPass string `yaml:"rpc_pass"`

	// Transfer is "gateway" (the gateway signs) or "chain" (sign locally).
	Transfer string `yaml:"transfer"`
	FeeRate  uint64 `yaml:"fee_rate"`

	// Store is one of "memory", "bolt", "redis" or "postgres".
	Store         string `yaml:"store"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	PostgresDSN   string `yaml:"postgres_dsn"`

	RentalMode       string `yaml:"rental_mode"`
	AllowOverwrite   bool   `yaml:"allow_overwrite"`
	ExclusiveRentals bool   `yaml:"exclusive_rentals"`

	// Decimals is the number of fractional digits shown for amounts.
	Decimals     int32  `yaml:"decimals"`
	StaticDir    string `yaml:"static_dir"`
	ContractsDir string `yaml:"contracts_dir"`
}

// DefaultDataDir returns ~/.estateshare, or .estateshare when the home
// directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".estateshare"
	}
	return filepath.Join(home, ".estateshare")
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		DataDir:      DefaultDataDir(),
		ListenAddr:   ":8080",
		Network:      "testnet",
		LogLevel:     "info",
		Transfer:     "gateway",
		Store:        "bolt",
		RentalMode:   "auto",
		Decimals:     18,
		StaticDir:    "public",
		ContractsDir: filepath.Join("build", "contracts"),
	}
}

// ConfigPath returns the default config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// StorePath returns the bbolt database path inside the data directory.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, "rentals.db")
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig reads path on top of DefaultConfig. Keys missing from the
// file keep their defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if isYAML(path) {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		return cfg, nil
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseKeyValue(line)
		if !ok {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	return cfg, scanner.Err()
}

// parseKeyValue splits "key = value" on the first '='.
func parseKeyValue(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case "datadir":
		c.DataDir = value
	case "listen":
		c.ListenAddr = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "rpc_url":
		c.RPCURL = value
	case "rpc_user":
		c.RPCUser = value
	case "rpc_pass":
		c.RPCPass = value
	case "transfer":
		c.Transfer = value
	case "fee_rate":
		c.FeeRate, err = strconv.ParseUint(value, 10, 64)
	case "store":
		c.Store = value
	case "redis_addr":
		c.RedisAddr = value
	case "redis_password":
		c.RedisPassword = value
	case "redis_db":
		c.RedisDB, err = strconv.Atoi(value)
	case "postgres_dsn":
		c.PostgresDSN = value
	case "rental_mode":
		c.RentalMode = value
	case "allow_overwrite":
		c.AllowOverwrite, err = strconv.ParseBool(value)
	case "exclusive_rentals":
		c.ExclusiveRentals, err = strconv.ParseBool(value)
	case "decimals":
		var n int64
		n, err = strconv.ParseInt(value, 10, 32)
		c.Decimals = int32(n)
	case "static_dir":
		c.StaticDir = value
	case "contracts_dir":
		c.ContractsDir = value
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories. The format
// follows the file extension as in LoadConfig.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var data []byte
	if isYAML(path) {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("config: encode yaml: %w", err)
		}
		data = out
	} else {
		var b strings.Builder
		b.WriteString("# EstateShare Configuration\n\n")
		for _, kv := range [][2]string{
			{"datadir", cfg.DataDir},
			{"listen", cfg.ListenAddr},
			{"network", cfg.Network},
			{"loglevel", cfg.LogLevel},
			{"logfile", cfg.LogFile},
			{"rpc_url", cfg.RPCURL},
			{"rpc_user", cfg.RPCUser},
			{"rpc_pass", cfg.RPCPass},
			{"transfer", cfg.Transfer},
			{"fee_rate", strconv.FormatUint(cfg.FeeRate, 10)},
			{"store", cfg.Store},
			{"redis_addr", cfg.RedisAddr},
			{"redis_password", cfg.RedisPassword},
			{"redis_db", strconv.Itoa(cfg.RedisDB)},
			{"postgres_dsn", cfg.PostgresDSN},
			{"rental_mode", cfg.RentalMode},
			{"allow_overwrite", strconv.FormatBool(cfg.AllowOverwrite)},
			{"exclusive_rentals", strconv.FormatBool(cfg.ExclusiveRentals)},
			{"decimals", strconv.FormatInt(int64(cfg.Decimals), 10)},
			{"static_dir", cfg.StaticDir},
			{"contracts_dir", cfg.ContractsDir},
		} {
			fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
		}
		data = []byte(b.String())
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
