// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "math/big"

// Decimals of all fixed-point quantities (amounts and reward rates).
const Decimals = 18

var (
	// UnitScale is 10^Decimals, the fixed-point one.
	UnitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

	// LedgerAddress is the default custody address of the staking ledger.
	LedgerAddress = BytesToAddress([]byte("StakingLedger"))
)

// Units converts a whole number of units into its fixed-point representation.
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), UnitScale)
}
