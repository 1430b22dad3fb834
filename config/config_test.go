// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustLoad(t *testing.T, path string) Config {
	t.Helper()
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load %s: %v", filepath.Base(path), err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	checks := map[string][2]interface{}{
		"listen":          {cfg.ListenAddr, ":8080"},
		"network":         {cfg.Network, "testnet"},
		"loglevel":        {cfg.LogLevel, "info"},
		"store":           {cfg.Store, "bolt"},
		"rental_mode":     {cfg.RentalMode, "auto"},
		"transfer":        {cfg.Transfer, "gateway"},
		"decimals":        {cfg.Decimals, int32(18)},
		"allow_overwrite": {cfg.AllowOverwrite, false},
	}
	for key, c := range checks {
		if c[0] != c[1] {
			t.Errorf("default %s = %v, want %v", key, c[0], c[1])
		}
	}

	if filepath.Base(cfg.DataDir) != ".estateshare" {
		t.Errorf("data dir %q is not .estateshare", cfg.DataDir)
	}
	if want := filepath.Join(cfg.DataDir, "rentals.db"); cfg.StorePath() != want {
		t.Errorf("bolt file %q, want %q", cfg.StorePath(), want)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("defaults rejected: %v", err)
	}
}

// fullConfig sets every field to a non-default value.
func fullConfig() Config {
	return Config{
		DataDir:          "/var/lib/estateshare",
		ListenAddr:       "127.0.0.1:9000",
		Network:          "regtest",
		LogLevel:         "debug",
		LogFile:          "/var/log/estateshare.log",
		RPCURL:           "http://127.0.0.1:18332",
		RPCUser:          "landlord",
		RPCPass:          "hunter2",
		Transfer:         "chain",
		FeeRate:          250,
		Store:            "redis",
		RedisAddr:        "127.0.0.1:6379",
		RedisPassword:    "redispw",
		RedisDB:          3,
		PostgresDSN:      "postgres://estate@db/estate",
		RentalMode:       "simulated",
		AllowOverwrite:   true,
		ExclusiveRentals: true,
		Decimals:         8,
		StaticDir:        "/srv/www",
		ContractsDir:     "/srv/contracts",
	}
}

func TestSaveThenLoad(t *testing.T) {
	for _, name := range []string{"config", "estateshare.yaml", "estateshare.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := fullConfig()
			if err := SaveConfig(path, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			if got := mustLoad(t, path); got != want {
				t.Errorf("reloaded config differs:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestSavedKeyValueLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := SaveConfig(path, fullConfig()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)

	if !strings.HasPrefix(text, "# EstateShare Configuration\n") {
		t.Errorf("missing header line in:\n%s", text)
	}
	for _, line := range []string{"store = redis", "rental_mode = simulated", "exclusive_rentals = true", "decimals = 8", "redis_db = 3"} {
		if !strings.Contains(text, line+"\n") {
			t.Errorf("saved file lacks %q", line)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("config holding rpc_pass is readable by others: %v", info.Mode().Perm())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("got %v, want ErrConfigNotFound", err)
	}
}

func TestLoadRejectsBadLines(t *testing.T) {
	for name, content := range map[string]string{
		"no separator": "store memory\n",
		"blank key":    "  = bolt\n",
		"bool":         "exclusive_rentals = sometimes\n",
		"int":          "redis_db = three\n",
		"decimals":     "decimals = 1.5\n",
		"fee rate":     "fee_rate = -10\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "config", content))
			if !errors.Is(err, ErrInvalidConfigLine) {
				t.Errorf("got %v, want ErrInvalidConfigLine", err)
			}
		})
	}
}

func TestLoadKeyValueLenient(t *testing.T) {
	cfg := mustLoad(t, writeFile(t, "config", `# shared rental store
store = postgres
postgres_dsn=postgres://u:p@db/estate?sslmode=disable

	rpc_url =   http://gateway:8332	
some_future_option = on
network =
`))

	if cfg.Store != "postgres" {
		t.Errorf("store = %q", cfg.Store)
	}
	// The value keeps every '=' after the first.
	if cfg.PostgresDSN != "postgres://u:p@db/estate?sslmode=disable" {
		t.Errorf("postgres_dsn = %q", cfg.PostgresDSN)
	}
	if cfg.RPCURL != "http://gateway:8332" {
		t.Errorf("rpc_url = %q, want surrounding space trimmed", cfg.RPCURL)
	}
	if cfg.Network != "" {
		t.Errorf("explicit empty network = %q", cfg.Network)
	}
	if cfg.RentalMode != "auto" || cfg.Decimals != 18 {
		t.Errorf("untouched keys lost defaults: mode=%q decimals=%d", cfg.RentalMode, cfg.Decimals)
	}
}

func TestLoadYAML(t *testing.T) {
	cfg := mustLoad(t, writeFile(t, "estateshare.yml", "store: redis\nredis_addr: cache:6379\nallow_overwrite: true\ndecimals: 6\n"))
	if cfg.Store != "redis" || cfg.RedisAddr != "cache:6379" || !cfg.AllowOverwrite || cfg.Decimals != 6 {
		t.Errorf("yaml values not applied: %+v", cfg)
	}
	if cfg.Transfer != "gateway" {
		t.Errorf("transfer = %q, want default", cfg.Transfer)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("validate: %v", err)
	}

	_, err := LoadConfig(writeFile(t, "broken.yaml", "store: {redis\n"))
	if err == nil || errors.Is(err, ErrConfigNotFound) {
		t.Errorf("malformed yaml: got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"no data dir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"unknown network", func(c *Config) { c.Network = "stn" }, ErrInvalidNetwork},
		{"listen without port", func(c *Config) { c.ListenAddr = "localhost" }, ErrInvalidListenAddr},
		{"log level", func(c *Config) { c.LogLevel = "trace" }, ErrInvalidLogLevel},
		{"unknown store", func(c *Config) { c.Store = "etcd" }, ErrInvalidStore},
		{"redis needs address", func(c *Config) { c.Store = "redis" }, ErrInvalidStore},
		{"postgres needs dsn", func(c *Config) { c.Store = "postgres" }, ErrInvalidStore},
		{"rental mode", func(c *Config) { c.RentalMode = "escrow" }, ErrInvalidRentalMode},
		{"transfer", func(c *Config) { c.Transfer = "wire" }, ErrInvalidTransfer},
		{"decimals below zero", func(c *Config) { c.Decimals = -2 }, ErrInvalidDecimals},
		{"decimals too large", func(c *Config) { c.Decimals = 37 }, ErrInvalidDecimals},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.edit(&cfg)
			if err := ValidateConfig(cfg); !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	edits := map[string]func(*Config){
		"mainnet":        func(c *Config) { c.Network = "mainnet" },
		"upper warn":     func(c *Config) { c.LogLevel = "WARN" },
		"ipv6 listen":    func(c *Config) { c.ListenAddr = "[::]:8443" },
		"memory store":   func(c *Config) { c.Store = "memory" },
		"postgres store": func(c *Config) { c.Store, c.PostgresDSN = "postgres", "postgres://db/estate" },
		"onchain mode":   func(c *Config) { c.RentalMode = "onchain" },
		"chain transfer": func(c *Config) { c.Transfer = "chain" },
		"whole units":    func(c *Config) { c.Decimals = 0 },
		"max decimals":   func(c *Config) { c.Decimals = 36 },
	}
	for name, edit := range edits {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			edit(&cfg)
			if err := ValidateConfig(cfg); err != nil {
				t.Errorf("rejected: %v", err)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	if got, want := ConfigPath("/srv/estate/"), filepath.Join("/srv/estate", "config"); got != want {
		t.Errorf("ConfigPath = %q, want %q", got, want)
	}
}
