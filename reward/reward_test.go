// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/reverts"
)

var (
	e18     = big.NewInt(1e18)
	maxU256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

func units(n int64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(uint64(n)), Unit)
}

// reference computes amount * rate * elapsed / 1e18 without width limits.
func reference(amount, rate *uint256.Int, elapsed uint64) *big.Int {
	z := new(big.Int).Mul(amount.ToBig(), rate.ToBig())
	z.Mul(z, new(big.Int).SetUint64(elapsed))
	return z.Quo(z, e18)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		amount  *uint256.Int
		rate    *uint256.Int
		elapsed uint64
		want    *uint256.Int
	}{
		{"zero elapsed", units(500), units(1), 0, uint256.NewInt(0)},
		{"zero amount", uint256.NewInt(0), units(1), 3600, uint256.NewInt(0)},
		{"zero rate", units(500), uint256.NewInt(0), 3600, uint256.NewInt(0)},
		{"one hour at one unit", units(500), units(1), 3600, units(500 * 3600)},
		{"fractional rate", units(500), uint256.NewInt(uint64(1e18) / 3600), 3600, uint256.MustFromDecimal("499999999999998600000")},
		{"truncation", uint256.NewInt(1), uint256.NewInt(1), 1, uint256.NewInt(0)},
		{"exact boundary", uint256.NewInt(1e9), uint256.NewInt(1e9), 1, uint256.NewInt(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.amount, tt.rate, tt.elapsed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeOverflow(t *testing.T) {
	max := new(uint256.Int).SetAllOne()

	_, err := Compute(units(1), max, 2)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.True(t, reverts.IsRevertErr(err))

	_, err = Compute(max, max, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	// the 512 bit intermediate keeps results that fit after scaling
	got, err := Compute(max, Unit, 1)
	require.NoError(t, err)
	assert.Equal(t, max, got)

	// nothing staked never overflows
	got, err = Compute(uint256.NewInt(0), max, ^uint64(0))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestComputeMatchesReference(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 2000 {
		var amount, rate [4]uint64
		var elapsed uint64
		var shift [2]uint8
		f.Fuzz(&amount)
		f.Fuzz(&rate)
		f.Fuzz(&elapsed)
		f.Fuzz(&shift)

		a := new(uint256.Int).Rsh((*uint256.Int)(&amount), uint(shift[0]))
		r := new(uint256.Int).Rsh((*uint256.Int)(&rate), uint(shift[1]))

		want := reference(a, r, elapsed)
		rateSeconds := new(big.Int).Mul(r.ToBig(), new(big.Int).SetUint64(elapsed))

		got, err := Compute(a, r, elapsed)
		switch {
		case a.IsZero() || elapsed == 0:
			require.NoError(t, err)
			assert.True(t, got.IsZero())
		case rateSeconds.Cmp(maxU256) > 0 || want.Cmp(maxU256) > 0:
			assert.ErrorIs(t, err, ErrOverflow, "a=%v r=%v e=%v", a, r, elapsed)
		default:
			require.NoError(t, err, "a=%v r=%v e=%v", a, r, elapsed)
			assert.Equal(t, 0, want.Cmp(got.ToBig()), "a=%v r=%v e=%v want=%v got=%v", a, r, elapsed, want, got)
		}
	}
}

func TestComputeSplitNeverOverpays(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 1000 {
		var a, r uint64
		var e1, e2 uint32
		f.Fuzz(&a)
		f.Fuzz(&r)
		f.Fuzz(&e1)
		f.Fuzz(&e2)

		amount, rate := uint256.NewInt(a), uint256.NewInt(r)
		p1, err := Compute(amount, rate, uint64(e1))
		require.NoError(t, err)
		p2, err := Compute(amount, rate, uint64(e2))
		require.NoError(t, err)
		whole, err := Compute(amount, rate, uint64(e1)+uint64(e2))
		require.NoError(t, err)

		split := new(uint256.Int).Add(p1, p2)
		assert.False(t, split.Gt(whole))
		// truncating twice loses at most one base unit
		assert.False(t, new(uint256.Int).Sub(whole, split).Gt(uint256.NewInt(1)))
	}
}

func TestComputeBig(t *testing.T) {
	got, err := ComputeBig(new(big.Int).Mul(big.NewInt(500), e18), e18, 3600)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(500*3600), e18), got)

	_, err = ComputeBig(big.NewInt(-1), e18, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = ComputeBig(big.NewInt(1), new(big.Int).Lsh(big.NewInt(1), 256), 1)
	assert.ErrorIs(t, err, ErrOverflow)

	got, err = ComputeBig(nil, e18, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sign())
}
