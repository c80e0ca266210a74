// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes ledger operations one at a time against a shared
// state. Each operation either commits all of its writes or none of them.
package runtime

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/state"
)

var logger = log.WithContext("pkg", "runtime")

func SetLogger(l log.Logger) {
	logger = l
}

// Runtime serializes writers and lets readers share a consistent view.
type Runtime struct {
	mu sync.RWMutex
	st *state.State
}

// New creates a runtime over the given store.
func New(db kv.Store, cacheSize int) (*Runtime, error) {
	st, err := state.New(db, cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "open state")
	}
	return &Runtime{st: st}, nil
}

// Exec runs fn exclusively. When fn fails, or its changes cannot be
// persisted, every write made by fn is discarded and the error returned.
func (r *Runtime) Exec(fn func(st *state.State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	checkpoint := r.st.NewCheckpoint()
	if err := r.run(fn); err != nil {
		r.st.RevertTo(checkpoint)
		return err
	}
	if err := r.st.Commit(); err != nil {
		r.st.RevertTo(checkpoint)
		logger.Error("failed to commit state", "err", err)
		return errors.Wrap(err, "commit")
	}
	return nil
}

// View runs fn under the shared lock. fn must not write.
func (r *Runtime) View(fn func(st *state.State) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return fn(r.st)
}

func (r *Runtime) run(fn func(st *state.State) error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.Errorf("operation panicked: %v", e)
		}
	}()
	return fn(r.st)
}
