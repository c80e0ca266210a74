// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/holiman/uint256"
)

// Checkpoint records the rate in effect from Time on.
type Checkpoint struct {
	Rate *uint256.Int
	Time uint64
}

// Schedule is a sequence of checkpoints ordered by time. Before the first
// checkpoint the rate is zero.
type Schedule []Checkpoint

// RateAt returns the rate in effect at t.
func (s Schedule) RateAt(t uint64) *uint256.Int {
	rate := new(uint256.Int)
	for _, c := range s {
		if c.Time > t {
			break
		}
		rate = c.Rate
	}
	return rate
}

// Integrate returns the rate-seconds accumulated over [from, to), each rate
// applied only to the seconds it was in effect.
func (s Schedule) Integrate(from, to uint64) (*uint256.Int, error) {
	total := new(uint256.Int)
	if to <= from {
		return total, nil
	}
	for i, c := range s {
		start := max(c.Time, from)
		end := to
		if i+1 < len(s) {
			end = min(s[i+1].Time, to)
		}
		if end <= start {
			continue
		}
		part, err := RateSeconds(c.Rate, end-start)
		if err != nil {
			return nil, err
		}
		if _, over := total.AddOverflow(total, part); over {
			return nil, overflow("integral")
		}
	}
	return total, nil
}
