// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

func newToken(t *testing.T) (*Token, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 0)
	require.NoError(t, err)
	return New(thor.BytesToAddress([]byte("STK")), st), st
}

func balance(t *testing.T, tok *Token, addr thor.Address) *big.Int {
	bal, err := tok.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func TestMintAndTransfer(t *testing.T) {
	tok, _ := newToken(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, tok.Mint(alice, thor.Units(1000)))
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, thor.Units(1000), supply)

	require.NoError(t, tok.Transfer(alice, bob, thor.Units(400)))
	assert.Equal(t, thor.Units(600), balance(t, tok, alice))
	assert.Equal(t, thor.Units(400), balance(t, tok, bob))

	// self transfer and zero transfer keep balances
	require.NoError(t, tok.Transfer(alice, alice, thor.Units(600)))
	require.NoError(t, tok.Transfer(bob, alice, big.NewInt(0)))
	assert.Equal(t, thor.Units(600), balance(t, tok, alice))

	err = tok.Transfer(bob, alice, thor.Units(401))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, reverts.IsRevertErr(err))
	assert.Equal(t, "ERC20: transfer amount exceeds balance", err.Error())
	assert.Equal(t, thor.Units(400), balance(t, tok, bob))

	assert.ErrorIs(t, tok.Transfer(alice, thor.Address{}, thor.Units(1)), ErrTransferFailed)
	assert.ErrorIs(t, tok.Transfer(alice, bob, big.NewInt(-1)), ErrTransferFailed)
	assert.ErrorIs(t, tok.Mint(thor.Address{}, thor.Units(1)), ErrTransferFailed)
	assert.ErrorIs(t, tok.Mint(alice, big.NewInt(-1)), ErrTransferFailed)
}

func TestTransferFrom(t *testing.T) {
	tok, _ := newToken(t)
	owner, spender, to := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, tok.Mint(owner, thor.Units(100)))

	err := tok.TransferFrom(spender, owner, to, thor.Units(1))
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.Equal(t, "ERC20: insufficient allowance", err.Error())

	require.NoError(t, tok.Approve(owner, spender, thor.Units(150)))
	allowance, err := tok.Allowance(owner, spender)
	require.NoError(t, err)
	assert.Equal(t, thor.Units(150), allowance)

	require.NoError(t, tok.TransferFrom(spender, owner, to, thor.Units(60)))
	assert.Equal(t, thor.Units(40), balance(t, tok, owner))
	assert.Equal(t, thor.Units(60), balance(t, tok, to))

	allowance, _ = tok.Allowance(owner, spender)
	assert.Equal(t, thor.Units(90), allowance)

	// allowance left but balance short: nothing moves, allowance kept
	err = tok.TransferFrom(spender, owner, to, thor.Units(50))
	assert.ErrorIs(t, err, ErrTransferFailed)
	allowance, _ = tok.Allowance(owner, spender)
	assert.Equal(t, thor.Units(90), allowance)
	assert.Equal(t, thor.Units(40), balance(t, tok, owner))

	assert.ErrorIs(t, tok.Approve(owner, thor.Address{}, thor.Units(1)), ErrTransferFailed)
	assert.ErrorIs(t, tok.Approve(owner, spender, big.NewInt(-5)), ErrTransferFailed)

	// allowances are directional
	reverse, err := tok.Allowance(spender, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, reverse.Sign())
	assert.NotEqual(t, allowanceKey(owner, spender), allowanceKey(spender, owner))
}

func TestTokenRevert(t *testing.T) {
	tok, st := newToken(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, tok.Mint(alice, thor.Units(10)))

	rev := st.NewCheckpoint()
	require.NoError(t, tok.Transfer(alice, bob, thor.Units(10)))
	st.RevertTo(rev)

	assert.Equal(t, thor.Units(10), balance(t, tok, alice))
	assert.Equal(t, 0, balance(t, tok, bob).Sign())
}

func TestTokensAreIsolated(t *testing.T) {
	stk, st := newToken(t)
	rwd := New(thor.BytesToAddress([]byte("RWD")), st)
	alice := datagen.RandAddress()

	require.NoError(t, stk.Mint(alice, thor.Units(5)))
	assert.Equal(t, 0, balance(t, rwd, alice).Sign())
	assert.Equal(t, thor.BytesToAddress([]byte("RWD")), rwd.Address())
}
