// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bootstrap

import (
	"fmt"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/config"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/staking"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/token"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Ledger: &config.LedgerConfig{
			StakingToken:  thor.BytesToAddress([]byte("STK")),
			RewardToken:   thor.BytesToAddress([]byte("RWD")),
			Owner:         thor.BytesToAddress([]byte("owner")),
			InitialRate:   "1000000000000000000",
			RewardReserve: "10000000000000000000000000",
		},
		Storage: &config.StorageConfig{DataDir: dataDir},
	}
}

func TestOpenPersistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	cfg := testConfig(dir)
	now := uint64(1000)
	clock := func() uint64 { return now }

	node, err := Open(cfg, staking.WithClock(clock))
	require.NoError(t, err)

	reserve, err := node.Ledger.RewardReserve()
	require.NoError(t, err)
	assert.Equal(t, thor.Units(10_000_000), reserve)

	alice := thor.BytesToAddress([]byte("alice"))
	require.NoError(t, node.Runtime.Exec(func(st *state.State) error {
		stk := token.New(node.Ledger.StakingToken(), st)
		if err := stk.Mint(alice, thor.Units(500)); err != nil {
			return err
		}
		return stk.Approve(alice, node.Ledger.Address(), thor.Units(500))
	}))
	require.NoError(t, node.Ledger.Stake(alice, thor.Units(500)))
	require.NoError(t, node.Close())

	// reopening neither re-funds the reserve nor loses the stake
	now += 3600
	node, err = Open(cfg, staking.WithClock(clock))
	require.NoError(t, err)
	defer node.Close()

	reserve, err = node.Ledger.RewardReserve()
	require.NoError(t, err)
	assert.Equal(t, thor.Units(10_000_000), reserve)

	pending, err := node.Ledger.CalculateReward(alice)
	require.NoError(t, err)
	assert.Equal(t, thor.Units(500*3600), pending)
}

func TestOpenInMemory(t *testing.T) {
	cfg := testConfig("")
	cfg.Ledger.RewardReserve = ""
	cfg.Ledger.Accrual = "lazy"

	node, err := Open(cfg)
	require.NoError(t, err)
	defer node.Close()

	assert.Equal(t, staking.AccrualLazy, node.Ledger.Accrual())
	reserve, err := node.Ledger.RewardReserve()
	require.NoError(t, err)
	assert.Equal(t, 0, reserve.Sign())
}

func TestOpenInvalid(t *testing.T) {
	cfg := testConfig("")
	cfg.Ledger.Owner = thor.Address{}
	_, err := Open(cfg)
	assert.Error(t, err)
}

func Example() {
	cfg, err := config.Parse([]byte(`
ledger:
  staking_token: "0x0000000000000000000000000000000000000a01"
  reward_token: "0x0000000000000000000000000000000000000a02"
  owner: "0x00000000000000000000000000000000000000ff"
  initial_rate: "1000000000000000000"
  reward_reserve: "10000000000000000000000000"
`))
	if err != nil {
		panic(err)
	}

	now := uint64(1_700_000_000)
	node, err := Open(cfg, staking.WithClock(func() uint64 { return now }))
	if err != nil {
		panic(err)
	}
	defer node.Close()

	alice := thor.BytesToAddress([]byte("alice"))
	_ = node.Runtime.Exec(func(st *state.State) error {
		stk := token.New(node.Ledger.StakingToken(), st)
		if err := stk.Mint(alice, thor.Units(500)); err != nil {
			return err
		}
		return stk.Approve(alice, node.Ledger.Address(), thor.Units(500))
	})

	if err := node.Ledger.Stake(alice, thor.Units(500)); err != nil {
		panic(err)
	}
	now += 3600

	paid, err := node.Ledger.Unstake(alice, thor.Units(500))
	if err != nil {
		panic(err)
	}
	fmt.Println(new(big.Int).Quo(paid, thor.UnitScale))
	// Output: 1800000
}
