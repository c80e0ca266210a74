// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the staking ledger: participants lock a staking
// token and accrue a reward token at an owner adjustable per second rate.
//
// Every operation settles the participant's accrued reward before it mutates
// the stake, and runs as a single all or nothing step of the runtime.
package staking

import (
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/reverts"
	"github.com/vechain/stakeledger/reward"
	"github.com/vechain/stakeledger/runtime"
	"github.com/vechain/stakeledger/state"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/token"
)

var logger = log.WithContext("pkg", "staking")

func SetLogger(l log.Logger) {
	logger = l
}

var (
	ErrInvalidAmount     = reverts.New("staking: invalid amount")
	ErrInsufficientStake = reverts.New("staking: insufficient stake")
	ErrNotOwner          = reverts.New("staking: caller is not the owner")
	ErrTransferFailed    = token.ErrTransferFailed
	ErrOverflow          = reward.ErrOverflow
)

// Params are fixed when the ledger is created. InitialRate only seeds a new
// ledger, a reopened ledger keeps its stored rate.
type Params struct {
	StakingToken thor.Address
	RewardToken  thor.Address
	Owner        thor.Address
	InitialRate  *big.Int
}

// AssetBinder binds a token address to the state of the running operation.
type AssetBinder func(addr thor.Address, st *state.State) token.Asset

type Option func(*Ledger)

// WithClock sets the source of the current time, in unix seconds.
func WithClock(clock func() uint64) Option {
	return func(l *Ledger) { l.clock = clock }
}

func WithAccrual(mode Accrual) Option {
	return func(l *Ledger) { l.accrual = mode }
}

// WithAddress sets the account that holds the ledger storage and custody.
func WithAddress(addr thor.Address) Option {
	return func(l *Ledger) { l.addr = addr }
}

func WithAssetBinder(bind AssetBinder) Option {
	return func(l *Ledger) { l.bindAsset = bind }
}

func unixNow() uint64 {
	return uint64(time.Now().Unix())
}

func bindToken(addr thor.Address, st *state.State) token.Asset {
	return token.New(addr, st)
}

// Ledger implements the staking operations.
type Ledger struct {
	addr         thor.Address
	rt           *runtime.Runtime
	stakingToken thor.Address
	rewardToken  thor.Address
	accrual      Accrual
	clock        func() uint64
	bindAsset    AssetBinder
}

// New opens the ledger, initializing its storage on first use.
func New(rt *runtime.Runtime, params Params, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		addr:         thor.LedgerAddress,
		rt:           rt,
		stakingToken: params.StakingToken,
		rewardToken:  params.RewardToken,
		accrual:      AccrualCheckpoint,
		clock:        unixNow,
		bindAsset:    bindToken,
	}
	for _, opt := range opts {
		opt(l)
	}

	if params.Owner.IsZero() {
		return nil, errors.New("owner is required")
	}
	if params.StakingToken.IsZero() || params.RewardToken.IsZero() {
		return nil, errors.New("staking and reward tokens are required")
	}
	if params.StakingToken == params.RewardToken {
		return nil, errors.New("staking and reward tokens must differ")
	}
	rate := params.InitialRate
	if rate == nil {
		rate = new(big.Int)
	}
	if rate.Sign() < 0 {
		return nil, reverts.Kind(ErrInvalidAmount, "Reward rate should not be negative")
	}
	if _, err := reward.ToUint256(rate); err != nil {
		return nil, err
	}

	err := rt.Exec(func(st *state.State) error {
		s := newStorage(l.addr, st)
		owner, err := s.owner.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get owner")
		}
		if !owner.IsZero() {
			stakingToken, err := s.stakingToken.Get()
			if err != nil {
				return errors.Wrap(err, "failed to get staking token")
			}
			rewardToken, err := s.rewardToken.Get()
			if err != nil {
				return errors.Wrap(err, "failed to get reward token")
			}
			if stakingToken != l.stakingToken || rewardToken != l.rewardToken {
				return errors.Errorf("ledger %v is bound to tokens %v/%v", l.addr, stakingToken, rewardToken)
			}
			return nil
		}

		now := l.clock()
		s.owner.Set(&params.Owner)
		s.stakingToken.Set(&l.stakingToken)
		s.rewardToken.Set(&l.rewardToken)
		if err := s.rate.Set(rate); err != nil {
			return errors.Wrap(err, "failed to set reward rate")
		}
		s.rateUpdatedAt.Set(now)
		if _, err := s.appendCheckpoint(new(big.Int).Set(rate), now); err != nil {
			return err
		}
		logger.Info("ledger initialized", "addr", l.addr, "owner", params.Owner, "rate", rate, "accrual", l.accrual)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Address() thor.Address      { return l.addr }
func (l *Ledger) StakingToken() thor.Address { return l.stakingToken }
func (l *Ledger) RewardToken() thor.Address  { return l.rewardToken }
func (l *Ledger) Accrual() Accrual           { return l.accrual }

// exec runs op as one atomic step. The clock is read under the lock, so
// operations observe non decreasing times in the order they run.
func (l *Ledger) exec(op string, fn func(s *storage, st *state.State, now uint64) error) error {
	start := time.Now()
	err := l.rt.Exec(func(st *state.State) error {
		return fn(newStorage(l.addr, st), st, l.clock())
	})
	observe(op, start, err)
	if err != nil {
		logger.Debug("operation reverted", "op", op, "err", err)
	}
	return err
}

func (l *Ledger) view(fn func(s *storage, st *state.State, now uint64) error) error {
	return l.rt.View(func(st *state.State) error {
		return fn(newStorage(l.addr, st), st, l.clock())
	})
}

// pending returns the reward rec accrued since its last settlement.
func (l *Ledger) pending(s *storage, rec *StakeRecord, now uint64) (*big.Int, error) {
	amount, err := reward.ToUint256(rec.Amount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() || now <= rec.LastSettlement {
		return new(big.Int), nil
	}

	if l.accrual == AccrualLazy {
		rate, err := s.getRate()
		if err != nil {
			return nil, err
		}
		owed, err := reward.Compute(amount, rate, now-rec.LastSettlement)
		if err != nil {
			return nil, err
		}
		return owed.ToBig(), nil
	}

	rateSeconds, err := s.integrate(rec.LastSettlement, now)
	if err != nil {
		return nil, err
	}
	owed, err := reward.Owed(amount, rateSeconds)
	if err != nil {
		return nil, err
	}
	return owed.ToBig(), nil
}

// settle credits the reward accrued by rec up to now to rec.Accrued and moves
// its settlement point to now. The caller stores rec.
func (l *Ledger) settle(s *storage, rec *StakeRecord, now uint64) (*big.Int, error) {
	realized, err := l.pending(s, rec, now)
	if err != nil {
		return nil, err
	}
	rec.Accrued.Add(rec.Accrued, realized)
	if now > rec.LastSettlement {
		rec.LastSettlement = now
	}
	return realized, nil
}

// payout transfers all accrued reward of rec to participant.
func (l *Ledger) payout(st *state.State, participant thor.Address, rec *StakeRecord) (*big.Int, error) {
	paid := rec.Accrued
	rec.Accrued = new(big.Int)
	if paid.Sign() == 0 {
		return paid, nil
	}
	if err := l.bindAsset(l.rewardToken, st).Transfer(l.addr, participant, paid); err != nil {
		return nil, err
	}
	return paid, nil
}

// publishTotalStaked sets the total staked gauge from committed state. The
// gauge is set under the runtime lock, so it follows commit order.
func (l *Ledger) publishTotalStaked() {
	err := l.view(func(s *storage, _ *state.State, _ uint64) error {
		total, err := s.totalStaked.Get()
		if err != nil {
			return err
		}
		metricTotalStaked().Set(wholeUnits(total))
		return nil
	})
	if err != nil {
		logger.Warn("failed to publish total staked", "err", err)
	}
}

func checkOwner(s *storage, caller thor.Address) error {
	owner, err := s.owner.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get owner")
	}
	if caller != owner {
		return reverts.Kind(ErrNotOwner, "Ownable: caller is not the owner")
	}
	return nil
}

// Stake moves amount of the staking token from participant into the ledger.
// The participant must have approved the ledger to spend it.
func (l *Ledger) Stake(participant thor.Address, amount *big.Int) error {
	err := l.exec("stake", func(s *storage, st *state.State, now uint64) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.Kind(ErrInvalidAmount, "Staking amount should be greater than 0")
		}
		rec, err := s.getStake(participant)
		if err != nil {
			return err
		}
		if _, err := l.settle(s, rec, now); err != nil {
			return err
		}
		if err := l.bindAsset(l.stakingToken, st).TransferFrom(l.addr, participant, l.addr, amount); err != nil {
			return err
		}
		rec.Amount.Add(rec.Amount, amount)
		if _, err := reward.ToUint256(rec.Amount); err != nil {
			return err
		}
		if err := s.setStake(participant, rec); err != nil {
			return err
		}
		if err := s.totalStaked.Add(amount); err != nil {
			return errors.Wrap(err, "failed to update total staked")
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.publishTotalStaked()
	logger.Debug("staked", "participant", participant, "amount", amount)
	return nil
}

// Unstake returns amount of principal to participant and pays out all of its
// accrued reward. It returns the reward paid.
func (l *Ledger) Unstake(participant thor.Address, amount *big.Int) (*big.Int, error) {
	var paid *big.Int
	err := l.exec("unstake", func(s *storage, st *state.State, now uint64) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.Kind(ErrInvalidAmount, "Unstaking amount should be greater than 0")
		}
		rec, err := s.getStake(participant)
		if err != nil {
			return err
		}
		if amount.Cmp(rec.Amount) > 0 {
			return reverts.Kind(ErrInsufficientStake, "Insufficient staked balance")
		}
		if _, err := l.settle(s, rec, now); err != nil {
			return err
		}
		rec.Amount.Sub(rec.Amount, amount)
		if err := l.bindAsset(l.stakingToken, st).Transfer(l.addr, participant, amount); err != nil {
			return err
		}
		if paid, err = l.payout(st, participant, rec); err != nil {
			return err
		}
		if err := s.setStake(participant, rec); err != nil {
			return err
		}
		if err := s.totalStaked.Sub(amount); err != nil {
			return errors.Wrap(err, "failed to update total staked")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.publishTotalStaked()
	logger.Debug("unstaked", "participant", participant, "amount", amount, "reward", paid)
	return paid, nil
}

// Claim pays out the accrued reward of participant and keeps the stake.
func (l *Ledger) Claim(participant thor.Address) (*big.Int, error) {
	var paid *big.Int
	err := l.exec("claim", func(s *storage, st *state.State, now uint64) error {
		rec, err := s.getStake(participant)
		if err != nil {
			return err
		}
		if rec.IsEmpty() && rec.LastSettlement == 0 {
			// never staked
			paid = new(big.Int)
			return nil
		}
		if _, err := l.settle(s, rec, now); err != nil {
			return err
		}
		if paid, err = l.payout(st, participant, rec); err != nil {
			return err
		}
		return s.setStake(participant, rec)
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("claimed", "participant", participant, "reward", paid)
	return paid, nil
}

// UpdateRewardRate changes the global rate. Reward accrued so far is kept at
// the old rate in checkpoint accrual.
func (l *Ledger) UpdateRewardRate(caller thor.Address, newRate *big.Int) error {
	err := l.exec("update_rate", func(s *storage, _ *state.State, now uint64) error {
		if err := checkOwner(s, caller); err != nil {
			return err
		}
		if newRate == nil || newRate.Sign() < 0 {
			return reverts.Kind(ErrInvalidAmount, "Reward rate should not be negative")
		}
		if _, err := reward.ToUint256(newRate); err != nil {
			return err
		}
		rate := new(big.Int).Set(newRate)
		if err := s.rate.Set(rate); err != nil {
			return errors.Wrap(err, "failed to set reward rate")
		}
		effective, err := s.appendCheckpoint(rate, now)
		if err != nil {
			return err
		}
		s.rateUpdatedAt.Set(effective)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("reward rate updated", "rate", newRate)
	return nil
}

// TransferOwnership hands the owner capability to newOwner.
func (l *Ledger) TransferOwnership(caller, newOwner thor.Address) error {
	err := l.exec("transfer_ownership", func(s *storage, _ *state.State, _ uint64) error {
		if err := checkOwner(s, caller); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return reverts.Kind(ErrInvalidAmount, "Ownable: new owner is the zero address")
		}
		s.owner.Set(&newOwner)
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("ownership transferred", "from", caller, "to", newOwner)
	return nil
}

// CalculateReward returns the reward participant accrued since its last
// settlement. Reward already settled is not included, see Claimable.
func (l *Ledger) CalculateReward(participant thor.Address) (pending *big.Int, err error) {
	err = l.view(func(s *storage, _ *state.State, now uint64) error {
		rec, err := s.getStake(participant)
		if err != nil {
			return err
		}
		pending, err = l.pending(s, rec, now)
		return err
	})
	return
}

// Claimable returns the reward participant would receive if it claimed now.
func (l *Ledger) Claimable(participant thor.Address) (claimable *big.Int, err error) {
	err = l.view(func(s *storage, _ *state.State, now uint64) error {
		rec, err := s.getStake(participant)
		if err != nil {
			return err
		}
		pending, err := l.pending(s, rec, now)
		if err != nil {
			return err
		}
		claimable = pending.Add(pending, rec.Accrued)
		return nil
	})
	return
}

// GetStake returns a copy of the stake record of participant.
func (l *Ledger) GetStake(participant thor.Address) (rec *StakeRecord, err error) {
	err = l.view(func(s *storage, _ *state.State, _ uint64) error {
		r, err := s.getStake(participant)
		if err != nil {
			return err
		}
		rec = r.clone()
		return nil
	})
	return
}

func (l *Ledger) Owner() (owner thor.Address, err error) {
	err = l.view(func(s *storage, _ *state.State, _ uint64) error {
		owner, err = s.owner.Get()
		return err
	})
	return
}

func (l *Ledger) RewardRate() (rate *big.Int, err error) {
	err = l.view(func(s *storage, _ *state.State, _ uint64) error {
		rate, err = s.rate.Get()
		return err
	})
	return
}

// RateUpdatedAt returns the time the current rate took effect.
func (l *Ledger) RateUpdatedAt() (at uint64, err error) {
	err = l.view(func(s *storage, _ *state.State, _ uint64) error {
		at, err = s.rateUpdatedAt.Get()
		return err
	})
	return
}

func (l *Ledger) TotalStaked() (total *big.Int, err error) {
	err = l.view(func(s *storage, _ *state.State, _ uint64) error {
		total, err = s.totalStaked.Get()
		return err
	})
	return
}

// RateHistory returns every rate the ledger has used, oldest first.
func (l *Ledger) RateHistory() (schedule reward.Schedule, err error) {
	err = l.view(func(s *storage, _ *state.State, _ uint64) error {
		schedule, err = s.schedule()
		return err
	})
	return
}

// RewardReserve returns the reward token balance held by the ledger.
func (l *Ledger) RewardReserve() (reserve *big.Int, err error) {
	err = l.view(func(_ *storage, st *state.State, _ uint64) error {
		reserve, err = l.bindAsset(l.rewardToken, st).BalanceOf(l.addr)
		return err
	})
	return
}
