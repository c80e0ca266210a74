// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/stakeledger/thor"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	ctx *Context
	pos thor.Bytes32
}

func NewAddress(ctx *Context, pos thor.Bytes32) *Address {
	return &Address{ctx: ctx, pos: pos}
}

func (a *Address) Get() (thor.Address, error) {
	storage, err := a.ctx.state.GetStorage(a.ctx.address, a.pos)
	if err != nil {
		return thor.Address{}, err
	}
	return thor.BytesToAddress(storage.Bytes()), nil
}

// Set stores addr, a nil addr clears the slot.
func (a *Address) Set(addr *thor.Address) {
	var storage thor.Bytes32
	if addr != nil {
		storage = thor.BytesToBytes32(addr.Bytes())
	}
	a.ctx.state.SetStorage(a.ctx.address, a.pos, storage)
}
