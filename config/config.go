// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config enables config file parsing.
package config

import (
	"bytes"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/staking"
	"github.com/vechain/stakeledger/thor"
)

// Config is the configuration of a ledger process.
type Config struct {
	Ledger  *LedgerConfig  `yaml:"ledger"`
	Storage *StorageConfig `yaml:"storage"`
	Log     *LogConfig     `yaml:"log"`
	Metrics *MetricsConfig `yaml:"metrics"`
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if cfg.Ledger == nil {
		return errors.New("ledger: section is required")
	}
	if err := cfg.Ledger.Validate(); err != nil {
		return errors.WithMessage(err, "ledger")
	}
	if cfg.Storage != nil {
		if err := cfg.Storage.Validate(); err != nil {
			return errors.WithMessage(err, "storage")
		}
	}
	if cfg.Log != nil {
		if err := cfg.Log.Validate(); err != nil {
			return errors.WithMessage(err, "log")
		}
	}
	return nil
}

// LedgerConfig describes the staking ledger and the tokens it moves.
type LedgerConfig struct {
	// Address holds the ledger storage and custody, defaults to thor.LedgerAddress.
	Address      *thor.Address `yaml:"address"`
	StakingToken thor.Address  `yaml:"staking_token"`
	RewardToken  thor.Address  `yaml:"reward_token"`
	Owner        thor.Address  `yaml:"owner"`
	// InitialRate is the reward in base units scaled by 1e18, per staked base
	// unit per second.
	InitialRate string `yaml:"initial_rate"`
	// Accrual is "checkpoint" (default) or "lazy".
	Accrual string `yaml:"accrual"`
	// RewardReserve is minted to the ledger when it is created, in base units.
	RewardReserve string `yaml:"reward_reserve"`
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// Validate validates the ledger configuration.
func (cfg *LedgerConfig) Validate() error {
	if cfg.Owner.IsZero() {
		return errors.New("owner is required")
	}
	if cfg.StakingToken.IsZero() || cfg.RewardToken.IsZero() {
		return errors.New("staking_token and reward_token are required")
	}
	if cfg.StakingToken == cfg.RewardToken {
		return errors.New("staking_token and reward_token must differ")
	}
	if cfg.Address != nil && cfg.Address.IsZero() {
		return errors.New("address must not be zero")
	}
	if _, err := parseAmount(cfg.InitialRate); err != nil {
		return errors.WithMessage(err, "initial_rate")
	}
	if _, err := parseAmount(cfg.RewardReserve); err != nil {
		return errors.WithMessage(err, "reward_reserve")
	}
	if _, err := staking.ParseAccrual(cfg.Accrual); err != nil {
		return err
	}
	return nil
}

// Params returns the construction parameters of the ledger.
func (cfg *LedgerConfig) Params() (staking.Params, error) {
	rate, err := parseAmount(cfg.InitialRate)
	if err != nil {
		return staking.Params{}, errors.WithMessage(err, "initial_rate")
	}
	return staking.Params{
		StakingToken: cfg.StakingToken,
		RewardToken:  cfg.RewardToken,
		Owner:        cfg.Owner,
		InitialRate:  rate,
	}, nil
}

// Options returns the ledger options the configuration selects.
func (cfg *LedgerConfig) Options() ([]staking.Option, error) {
	accrual, err := staking.ParseAccrual(cfg.Accrual)
	if err != nil {
		return nil, err
	}
	opts := []staking.Option{staking.WithAccrual(accrual)}
	if cfg.Address != nil {
		opts = append(opts, staking.WithAddress(*cfg.Address))
	}
	return opts, nil
}

// Reserve returns the amount minted to a newly created ledger.
func (cfg *LedgerConfig) Reserve() (*big.Int, error) {
	return parseAmount(cfg.RewardReserve)
}

// StorageConfig selects where state is kept. An empty DataDir keeps it in memory.
type StorageConfig struct {
	DataDir        string `yaml:"data_dir"`
	CacheSize      int    `yaml:"cache_size"`       // leveldb cache, MiB
	OpenFiles      int    `yaml:"open_files"`       // leveldb open files cache capacity
	StateCacheSize int    `yaml:"state_cache_size"` // committed storage entries kept in memory
}

// Validate validates the storage configuration.
func (cfg *StorageConfig) Validate() error {
	if cfg.CacheSize < 0 || cfg.OpenFiles < 0 || cfg.StateCacheSize < 0 {
		return errors.New("sizes must not be negative")
	}
	return nil
}

// LogConfig contains the logging configuration.
type LogConfig struct {
	Format string `yaml:"format"` // terminal, logfmt or json
	Level  string `yaml:"level"`
}

// Validate validates the logging configuration.
func (cfg *LogConfig) Validate() error {
	if _, err := log.ParseLevel(cfg.Level); err != nil {
		return err
	}
	switch cfg.Format {
	case "", "terminal", "logfmt", "json":
		return nil
	}
	return errors.Errorf("unknown format %q", cfg.Format)
}

// MetricsConfig contains the metrics configuration.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Parse decodes and validates a YAML configuration. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}
	return &cfg, nil
}

// Load reads the configuration from the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}
