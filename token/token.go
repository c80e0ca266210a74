// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a fungible token whose balances live in contract
// storage, so token movements revert together with the operation moving them.
package token

import (
	"math/big"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

// ErrTransferFailed is the kind of every rejected token movement.
var ErrTransferFailed = reverts.New("token: transfer failed")

var (
	slotSupply     = thor.BytesToBytes32([]byte("token-supply"))
	slotBalances   = thor.BytesToBytes32([]byte("token-balances"))
	slotAllowances = thor.BytesToBytes32([]byte("token-allowances"))
)

// Asset is the token surface the staking ledger relies on.
type Asset interface {
	Address() thor.Address
	BalanceOf(addr thor.Address) (*big.Int, error)
	Transfer(from, to thor.Address, amount *big.Int) error
	TransferFrom(spender, from, to thor.Address, amount *big.Int) error
}

// Token is bound to its address and the state it reads and writes.
type Token struct {
	addr       thor.Address
	supply     *solidity.Uint256
	balances   *solidity.Mapping[thor.Address, *big.Int]
	allowances *solidity.Mapping[thor.Bytes32, *big.Int]
}

var _ Asset = (*Token)(nil)

func New(addr thor.Address, st *state.State) *Token {
	ctx := solidity.NewContext(addr, st)
	return &Token{
		addr:       addr,
		supply:     solidity.NewUint256(ctx, slotSupply),
		balances:   solidity.NewMapping[thor.Address, *big.Int](ctx, slotBalances),
		allowances: solidity.NewMapping[thor.Bytes32, *big.Int](ctx, slotAllowances),
	}
}

// allowanceKey flattens the owner => spender => amount mapping.
func allowanceKey(owner, spender thor.Address) thor.Bytes32 {
	return thor.Keccak256(owner.Bytes(), spender.Bytes())
}

func failed(reason string) error {
	return reverts.Kind(ErrTransferFailed, reason)
}

func (t *Token) Address() thor.Address {
	return t.addr
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey(owner, spender))
}

// Approve sets the amount spender may move out of owner's balance.
func (t *Token) Approve(owner, spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return failed("ERC20: negative allowance")
	}
	if spender.IsZero() {
		return failed("ERC20: approve to the zero address")
	}
	return t.allowances.Set(allowanceKey(owner, spender), new(big.Int).Set(amount))
}

// Mint creates amount tokens owned by to.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return failed("ERC20: negative amount")
	}
	if to.IsZero() {
		return failed("ERC20: mint to the zero address")
	}
	if err := t.supply.Add(amount); err != nil {
		return err
	}
	bal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	return t.balances.Set(to, bal.Add(bal, amount))
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return failed("ERC20: negative amount")
	}
	if to.IsZero() {
		return failed("ERC20: transfer to the zero address")
	}
	fromBal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return failed("ERC20: transfer amount exceeds balance")
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	if err := t.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	return t.balances.Set(to, toBal.Add(toBal, amount))
}

// TransferFrom moves amount out of from's balance on behalf of spender,
// consuming the allowance from granted to spender.
func (t *Token) TransferFrom(spender, from, to thor.Address, amount *big.Int) error {
	key := allowanceKey(from, spender)
	allowance, err := t.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return failed("ERC20: insufficient allowance")
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	return t.allowances.Set(key, allowance.Sub(allowance, amount))
}
