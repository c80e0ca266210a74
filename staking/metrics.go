// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"
	"math/big"
	"time"

	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/thor"
)

var (
	metricOperations  = metrics.LazyLoadCounterVec("operations_count", []string{"op", "result"})
	metricOpDuration  = metrics.LazyLoadHistogram("operation_duration_ms", metrics.BucketOpMillis)
	metricTotalStaked = metrics.LazyLoadGauge("total_staked")
)

func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if reverts.IsRevertErr(err) {
			result = "revert"
		}
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op, "result": result})
	metricOpDuration().Observe(time.Since(start).Milliseconds())
}

// wholeUnits converts base units into whole units, saturating at MaxInt64.
func wholeUnits(v *big.Int) int64 {
	units := new(big.Int).Quo(v, thor.UnitScale)
	if !units.IsInt64() {
		return math.MaxInt64
	}
	return units.Int64()
}
