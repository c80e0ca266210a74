// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package bootstrap opens a staking ledger as described by a configuration.
package bootstrap

import (
	"os"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/config"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/runtime"
	"github.com/vechain/stakeledger/staking"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "bootstrap")

// Node is an opened ledger together with the store backing it.
type Node struct {
	DB      *lvldb.LevelDB
	Runtime *runtime.Runtime
	Ledger  *staking.Ledger
}

// Open sets up logging and metrics, opens the store and the ledger. Extra
// options are applied after the configured ones.
func Open(cfg *config.Config, opts ...staking.Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Log != nil {
		if err := log.Init(os.Stderr, cfg.Log.Format, cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metrics.InitializePrometheusMetrics()
	}

	db, err := openDB(cfg.Storage)
	if err != nil {
		return nil, err
	}
	node, err := open(cfg, db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return node, nil
}

func openDB(cfg *config.StorageConfig) (*lvldb.LevelDB, error) {
	if cfg == nil || cfg.DataDir == "" {
		logger.Info("using in-memory storage")
		return lvldb.NewMem()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	logger.Info("opening storage", "dir", cfg.DataDir)
	return lvldb.New(cfg.DataDir, lvldb.Options{
		CacheSize:              cfg.CacheSize,
		OpenFilesCacheCapacity: cfg.OpenFiles,
	})
}

func open(cfg *config.Config, db *lvldb.LevelDB, extra []staking.Option) (*Node, error) {
	var stateCache int
	if cfg.Storage != nil {
		stateCache = cfg.Storage.StateCacheSize
	}
	rt, err := runtime.New(db, stateCache)
	if err != nil {
		return nil, err
	}

	params, err := cfg.Ledger.Params()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Ledger.Options()
	if err != nil {
		return nil, err
	}
	ledger, err := staking.New(rt, params, append(opts, extra...)...)
	if err != nil {
		return nil, errors.WithMessage(err, "open ledger")
	}

	reserve, err := cfg.Ledger.Reserve()
	if err != nil {
		return nil, err
	}
	if reserve.Sign() > 0 {
		err := rt.Exec(func(st *state.State) error {
			rwd := token.New(ledger.RewardToken(), st)
			supply, err := rwd.TotalSupply()
			if err != nil {
				return err
			}
			// only a fresh reward token is funded
			if supply.Sign() != 0 {
				return nil
			}
			logger.Info("funding reward reserve", "amount", reserve)
			return rwd.Mint(ledger.Address(), reserve)
		})
		if err != nil {
			return nil, errors.WithMessage(err, "fund reward reserve")
		}
	}
	return &Node{DB: db, Runtime: rt, Ledger: ledger}, nil
}

func (n *Node) Close() error {
	return n.DB.Close()
}
