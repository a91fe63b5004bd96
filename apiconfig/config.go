// Package apiconfig loads the streampayd configuration: defaults, then an
// optional YAML file, then STREAMPAY_* environment variables, each layer
// overriding the previous one.
package apiconfig

import (
	"os"
	"strings"

	"cosmossdk.io/math"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/productscience/streampay/x/streampay/types"
)

const EnvPrefix = "STREAMPAY_"

type Config struct {
	Api    ApiConfig    `koanf:"api"`
	Nats   NatsConfig   `koanf:"nats"`
	Store  StoreConfig  `koanf:"store"`
	Oracle OracleConfig `koanf:"oracle"`
	Engine EngineConfig `koanf:"engine"`
	Bank   BankConfig   `koanf:"bank"`
}

type ApiConfig struct {
	Port     int    `koanf:"port"`
	LogLevel string `koanf:"log_level"`
}

type NatsConfig struct {
	// Embedded starts an in-process NATS server before connecting.
	Embedded bool   `koanf:"embedded"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	StoreDir string `koanf:"store_dir"`
}

type StoreConfig struct {
	SqlitePath string `koanf:"sqlite_path"`
}

type OracleConfig struct {
	// UpdateFee is the flat fee in the native fee denom charged per price
	// update blob.
	UpdateFee int64 `koanf:"update_fee"`
}

// EngineConfig overrides the engine parameter defaults. Zero values keep
// the defaults.
type EngineConfig struct {
	MaxPriceAgeSeconds     int64  `koanf:"max_price_age_seconds"`
	DefaultMaxDeviationBps uint64 `koanf:"default_max_deviation_bps"`
	MinInitialDeposit      int64  `koanf:"min_initial_deposit"`
	NativeFeeDenom         string `koanf:"native_fee_denom"`
}

// Params merges the overrides onto the engine defaults.
func (c EngineConfig) Params() types.Params {
	params := types.DefaultParams()
	if c.MaxPriceAgeSeconds > 0 {
		params.MaxPriceAgeSeconds = c.MaxPriceAgeSeconds
	}
	if c.DefaultMaxDeviationBps > 0 {
		params.DefaultMaxDeviationBps = c.DefaultMaxDeviationBps
	}
	if c.MinInitialDeposit > 0 {
		params.MinInitialDeposit = math.NewInt(c.MinInitialDeposit)
	}
	if c.NativeFeeDenom != "" {
		params.NativeFeeDenom = c.NativeFeeDenom
	}
	return params
}

type BankConfig struct {
	DoubleEntry bool   `koanf:"double_entry"`
	LogLevel    string `koanf:"log_level"`
	// Genesis pre-funds accounts on first start: account -> denom -> amount.
	Genesis map[string]map[string]int64 `koanf:"genesis"`
}

func DefaultConfig() Config {
	return Config{
		Api: ApiConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Nats: NatsConfig{
			Embedded: true,
			Host:     "0.0.0.0",
			Port:     4222,
			StoreDir: ".streampay/nats",
		},
		Store: StoreConfig{
			SqlitePath: ".streampay/streampay.db",
		},
		Oracle: OracleConfig{
			UpdateFee: 10,
		},
	}
}

// Load builds the effective configuration. A missing config file is fine;
// a present but malformed one is not.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, "failed to load config defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, errors.Wrapf(err, "failed to parse config file %s", path)
			}
		}
	}

	// Double underscore separates nesting levels so snake_case keys
	// survive: STREAMPAY_API__LOG_LEVEL -> api.log_level.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "failed to load config from environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return cfg, nil
}
