// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward computes staking reward in 18 decimals fixed point.
//
// A rate is the reward, in base units scaled by 1e18, earned by one base unit
// of stake per second. Reward for amount staked over elapsed seconds is
//
//	amount * rate * elapsed / 1e18
//
// computed with a 512 bit intermediate product and truncated once.
package reward

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/reverts"
)

// ErrOverflow is the kind of every arithmetic overflow.
var ErrOverflow = reverts.New("reward: arithmetic overflow")

// Unit is the fixed point scale, 1e18.
var Unit = uint256.NewInt(1e18)

func overflow(what string) error {
	return reverts.Kind(ErrOverflow, "reward: "+what+" overflows 256 bits")
}

// Compute returns amount * rate * elapsed / 1e18.
func Compute(amount, rate *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	if amount.IsZero() || elapsed == 0 {
		return new(uint256.Int), nil
	}
	rateSeconds, err := RateSeconds(rate, elapsed)
	if err != nil {
		return nil, err
	}
	return Owed(amount, rateSeconds)
}

// RateSeconds returns rate * elapsed, the rate-seconds accumulated over
// elapsed seconds at a constant rate.
func RateSeconds(rate *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	z, over := new(uint256.Int).MulOverflow(rate, uint256.NewInt(elapsed))
	if over {
		return nil, overflow("rate * elapsed")
	}
	return z, nil
}

// Owed converts accumulated rate-seconds into reward for amount.
func Owed(amount, rateSeconds *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() || rateSeconds.IsZero() {
		return new(uint256.Int), nil
	}
	z, over := new(uint256.Int).MulDivOverflow(amount, rateSeconds, Unit)
	if over {
		return nil, overflow("reward")
	}
	return z, nil
}

// ToUint256 converts a non-negative big integer. Negative or too wide values
// are reported as overflow.
func ToUint256(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, reverts.Kind(ErrOverflow, "reward: negative value")
	}
	z, over := uint256.FromBig(v)
	if over {
		return nil, overflow("value")
	}
	return z, nil
}

// ComputeBig is Compute over big integers.
func ComputeBig(amount, rate *big.Int, elapsed uint64) (*big.Int, error) {
	a, err := ToUint256(amount)
	if err != nil {
		return nil, err
	}
	r, err := ToUint256(rate)
	if err != nil {
		return nil, err
	}
	z, err := Compute(a, r, elapsed)
	if err != nil {
		return nil, err
	}
	return z.ToBig(), nil
}
