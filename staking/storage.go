// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/builtin/solidity"
	"github.com/vechain/stakeledger/reward"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
)

var (
	slotStakingToken = nameToSlot("staking-token")
	slotRewardToken  = nameToSlot("reward-token")
	slotOwner        = nameToSlot("owner")
	slotTotalStaked  = nameToSlot("total-staked")
	slotStakes       = nameToSlot("stakes")
	// global rate
	slotRewardRate    = nameToSlot("reward-rate")
	slotRateUpdatedAt = nameToSlot("rate-updated-at")
	// rate checkpoints, position -> checkpoint
	slotCheckpoints     = nameToSlot("rate-checkpoints")
	slotCheckpointCount = nameToSlot("rate-checkpoints-count")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

func positionKey(i uint64) thor.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return thor.BytesToBytes32(b[:])
}

// storage represents the root storage of the ledger account.
type storage struct {
	context         *solidity.Context
	stakingToken    *solidity.Address
	rewardToken     *solidity.Address
	owner           *solidity.Address
	totalStaked     *solidity.Uint256
	rate            *solidity.Uint256
	rateUpdatedAt   *solidity.Uint64
	checkpointCount *solidity.Uint64
	checkpoints     *solidity.Mapping[thor.Bytes32, *rateCheckpoint]
	stakes          *solidity.Mapping[thor.Address, *StakeRecord]
}

func newStorage(addr thor.Address, st *state.State) *storage {
	context := solidity.NewContext(addr, st)
	return &storage{
		context:         context,
		stakingToken:    solidity.NewAddress(context, slotStakingToken),
		rewardToken:     solidity.NewAddress(context, slotRewardToken),
		owner:           solidity.NewAddress(context, slotOwner),
		totalStaked:     solidity.NewUint256(context, slotTotalStaked),
		rate:            solidity.NewUint256(context, slotRewardRate),
		rateUpdatedAt:   solidity.NewUint64(context, slotRateUpdatedAt),
		checkpointCount: solidity.NewUint64(context, slotCheckpointCount),
		checkpoints:     solidity.NewMapping[thor.Bytes32, *rateCheckpoint](context, slotCheckpoints),
		stakes:          solidity.NewMapping[thor.Address, *StakeRecord](context, slotStakes),
	}
}

func (s *storage) getStake(addr thor.Address) (*StakeRecord, error) {
	rec, err := s.stakes.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake")
	}
	return rec.normalize(), nil
}

func (s *storage) setStake(addr thor.Address, rec *StakeRecord) error {
	if err := s.stakes.Set(addr, rec); err != nil {
		return errors.Wrap(err, "failed to set stake")
	}
	return nil
}

func (s *storage) getRate() (*uint256.Int, error) {
	rate, err := s.rate.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward rate")
	}
	return reward.ToUint256(rate)
}

// appendCheckpoint records rate as effective from t. A checkpoint not later
// than the last one replaces it, keeping the schedule ordered. It returns the
// time the rate takes effect.
func (s *storage) appendCheckpoint(rate *big.Int, t uint64) (uint64, error) {
	count, err := s.checkpointCount.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get checkpoint count")
	}
	pos := count
	if count > 0 {
		last, err := s.checkpoint(count - 1)
		if err != nil {
			return 0, err
		}
		if last.Time >= t {
			pos = count - 1
			t = last.Time
		}
	}
	if err := s.checkpoints.Set(positionKey(pos), &rateCheckpoint{Rate: rate, Time: t}); err != nil {
		return 0, errors.Wrap(err, "failed to set checkpoint")
	}
	s.checkpointCount.Set(pos + 1)
	return t, nil
}

func (s *storage) checkpoint(pos uint64) (reward.Checkpoint, error) {
	c, err := s.checkpoints.Get(positionKey(pos))
	if err != nil {
		return reward.Checkpoint{}, errors.Wrap(err, "failed to get checkpoint")
	}
	rate, err := reward.ToUint256(c.Rate)
	if err != nil {
		return reward.Checkpoint{}, err
	}
	return reward.Checkpoint{Rate: rate, Time: c.Time}, nil
}

// checkpointAt returns the position of the checkpoint in effect at t, or 0
// when t precedes every checkpoint.
func (s *storage) checkpointAt(count, t uint64) (uint64, error) {
	lo, hi := uint64(0), count
	for lo < hi {
		mid := lo + (hi-lo)/2
		c, err := s.checkpoint(mid)
		if err != nil {
			return 0, err
		}
		if c.Time > t {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo > 0 {
		lo--
	}
	return lo, nil
}

// integrate returns the rate-seconds accumulated over [from, to), reading
// only the checkpoints that overlap the interval.
func (s *storage) integrate(from, to uint64) (*uint256.Int, error) {
	if to <= from {
		return new(uint256.Int), nil
	}
	count, err := s.checkpointCount.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint count")
	}
	first, err := s.checkpointAt(count, from)
	if err != nil {
		return nil, err
	}
	var overlapping reward.Schedule
	for pos := first; pos < count; pos++ {
		c, err := s.checkpoint(pos)
		if err != nil {
			return nil, err
		}
		if c.Time >= to {
			break
		}
		overlapping = append(overlapping, c)
	}
	return overlapping.Integrate(from, to)
}

func (s *storage) schedule() (reward.Schedule, error) {
	count, err := s.checkpointCount.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint count")
	}
	schedule := make(reward.Schedule, 0, count)
	for pos := range count {
		c, err := s.checkpoint(pos)
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, c)
	}
	return schedule, nil
}
