// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"
)

// StakeRecord is the per participant accounting entry. It is created on first
// stake and kept after a full unstake.
type StakeRecord struct {
	Amount         *big.Int // staked principal
	LastSettlement uint64   // unix seconds of the last settlement
	Accrued        *big.Int // settled reward not paid out yet
}

func (s *StakeRecord) normalize() *StakeRecord {
	if s.Amount == nil {
		s.Amount = new(big.Int)
	}
	if s.Accrued == nil {
		s.Accrued = new(big.Int)
	}
	return s
}

// IsEmpty returns true when nothing is staked and nothing is owed.
func (s *StakeRecord) IsEmpty() bool {
	return (s.Amount == nil || s.Amount.Sign() == 0) && (s.Accrued == nil || s.Accrued.Sign() == 0)
}

func (s *StakeRecord) clone() *StakeRecord {
	c := &StakeRecord{LastSettlement: s.LastSettlement}
	if s.Amount != nil {
		c.Amount = new(big.Int).Set(s.Amount)
	}
	if s.Accrued != nil {
		c.Accrued = new(big.Int).Set(s.Accrued)
	}
	return c.normalize()
}

// rateCheckpoint is the stored form of reward.Checkpoint.
type rateCheckpoint struct {
	Rate *big.Int
	Time uint64
}

// Accrual selects how a rate change affects unsettled reward.
type Accrual uint8

const (
	// AccrualCheckpoint applies every rate only to the seconds it was in effect.
	AccrualCheckpoint Accrual = iota
	// AccrualLazy prices the whole unsettled interval at the rate current at
	// settlement.
	AccrualLazy
)

func (a Accrual) String() string {
	switch a {
	case AccrualCheckpoint:
		return "checkpoint"
	case AccrualLazy:
		return "lazy"
	}
	return "unknown"
}

// ParseAccrual parses an accrual mode name, an empty name is the default.
func ParseAccrual(s string) (Accrual, error) {
	switch s {
	case "", "checkpoint":
		return AccrualCheckpoint, nil
	case "lazy":
		return AccrualLazy, nil
	}
	return 0, errors.Errorf("unknown accrual mode %q", s)
}
