// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"

	"github.com/vechain/stakeledger/thor"
)

// Uint64 stores an uint64 right aligned in a single slot.
type Uint64 struct {
	ctx *Context
	pos thor.Bytes32
}

func NewUint64(ctx *Context, slot thor.Bytes32) *Uint64 {
	return &Uint64{ctx: ctx, pos: slot}
}

func (u *Uint64) Get() (uint64, error) {
	storage, err := u.ctx.state.GetStorage(u.ctx.address, u.pos)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(storage[24:]), nil
}

func (u *Uint64) Set(value uint64) {
	var storage thor.Bytes32
	binary.BigEndian.PutUint64(storage[24:], value)
	u.ctx.state.SetStorage(u.ctx.address, u.pos, storage)
}
