// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"math/big"
	"sync"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/feerouter/contract"
)

// Ledger is the singleton auto-compounding staking ledger for one reward
// token. Every mutating operation runs as one atomic unit behind the locked
// flag: a call arriving while another unit is in flight (including a token
// callback re-entering the ledger) fails with ErrReentrant. State is only
// mutated after the external transfer has succeeded, inside a single
// critical section, so readers observe either the pre- or the post-state.
type Ledger struct {
	mu     sync.RWMutex
	locked bool

	// addr holds the staked reward tokens.
	addr  common.Address
	token contract.Token

	owner       common.Address
	distributor common.Address

	// lockDuration is the stake lock window in seconds.
	lockDuration uint64

	totalPrincipal *big.Int
	// accRewardPerShare is monotonically non-decreasing, scaled by
	// RewardPrecision.
	accRewardPerShare *big.Int

	accounts map[common.Address]*Account

	paused bool
	log    log.Logger
}

// NewLedger creates the staking ledger. owner gates pause and distributor
// assignment; the distributor is the only caller allowed to inject rewards.
func NewLedger(addr, owner common.Address, token contract.Token, lockDuration uint64, logger log.Logger) (*Ledger, error) {
	if addr == (common.Address{}) || owner == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Ledger{
		addr:              addr,
		token:             token,
		owner:             owner,
		lockDuration:      lockDuration,
		totalPrincipal:    new(big.Int),
		accRewardPerShare: new(big.Int),
		accounts:          make(map[common.Address]*Account),
		log:               logger,
	}, nil
}

// enter acquires the single-writer gate for one atomic unit of work.
func (l *Ledger) enter() error {
	l.mu.Lock()
	if l.locked {
		l.mu.Unlock()
		return ErrReentrant
	}
	l.locked = true
	l.mu.Unlock()
	return nil
}

func (l *Ledger) exit() {
	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
}

// Address returns the ledger's token-holding address.
func (l *Ledger) Address() common.Address { return l.addr }

// SetDistributor assigns the only address permitted to call AddRewards.
func (l *Ledger) SetDistributor(caller, distributor common.Address) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if caller != l.owner {
		return ErrUnauthorized
	}
	if distributor == (common.Address{}) {
		return ErrZeroAddress
	}
	l.mu.Lock()
	l.distributor = distributor
	l.mu.Unlock()
	return nil
}

// Pause halts Stake. Unstake and AddRewards stay callable so a paused system
// neither traps principal nor strands in-flight settlements.
func (l *Ledger) Pause(caller common.Address) error {
	return l.setPaused(caller, true)
}

// Unpause re-enables Stake.
func (l *Ledger) Unpause(caller common.Address) error {
	return l.setPaused(caller, false)
}

func (l *Ledger) setPaused(caller common.Address, paused bool) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if caller != l.owner {
		return ErrUnauthorized
	}
	l.mu.Lock()
	l.paused = paused
	l.mu.Unlock()
	return nil
}

// Stake adds amount to the staker's compounding position. The token transfer
// is executed first; only after it succeeds is the existing position lazily
// compounded and the new amount folded into principal and totalPrincipal.
// The lock window restarts on every top-up.
func (l *Ledger) Stake(db contract.StateDB, staker common.Address, amount *big.Int) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if l.paused {
		return ErrPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	if err := l.token.TransferFrom(db, l.addr, staker, l.addr, amount); err != nil {
		return err
	}

	unlock := db.GetBlockTime() + l.lockDuration

	l.mu.Lock()
	acct, ok := l.accounts[staker]
	if !ok {
		acct = newAccount()
		l.accounts[staker] = acct
	}
	l.compound(acct)
	acct.Principal.Add(acct.Principal, amount)
	l.totalPrincipal.Add(l.totalPrincipal, amount)
	acct.UnlockTime = unlock
	l.mu.Unlock()

	l.log.Debug("staked", "staker", staker, "amount", amount, "principal", acct.Principal, "unlock", unlock)
	return nil
}

// Unstake compounds and returns the staker's entire position, zeroing the
// record. It fails with ErrLocked strictly before the unlock time; at the
// unlock time it succeeds.
func (l *Ledger) Unstake(db contract.StateDB, staker common.Address) (*big.Int, error) {
	if err := l.enter(); err != nil {
		return nil, err
	}
	defer l.exit()

	acct, ok := l.accounts[staker]
	if !ok || acct.Principal.Sign() == 0 {
		return nil, ErrNoStake
	}
	if db.GetBlockTime() < acct.UnlockTime {
		return nil, ErrLocked
	}

	pending := pendingReward(acct, l.accRewardPerShare)
	payout := new(big.Int).Add(acct.Principal, pending)

	if err := l.token.Transfer(db, l.addr, staker, payout); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.totalPrincipal.Add(l.totalPrincipal, pending)
	l.totalPrincipal.Sub(l.totalPrincipal, payout)
	acct.Principal.SetInt64(0)
	acct.RewardDebt.Set(l.accRewardPerShare)
	acct.UnlockTime = 0
	l.mu.Unlock()

	l.log.Debug("unstaked", "staker", staker, "payout", payout)
	return payout, nil
}

// AddRewards credits amount to all stakers proportionally. Restricted to the
// distributor, which must have transferred the tokens to the ledger address
// before calling. Rewards with nobody staked have no recipient and are
// rejected rather than silently lost. Callable while paused.
func (l *Ledger) AddRewards(db contract.StateDB, caller common.Address, amount *big.Int) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.exit()

	if caller != l.distributor || caller == (common.Address{}) {
		return ErrUnauthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if l.totalPrincipal.Sign() == 0 {
		return ErrNoStakers
	}

	delta := new(big.Int).Mul(amount, RewardPrecision)
	delta.Div(delta, l.totalPrincipal)

	l.mu.Lock()
	l.accRewardPerShare.Add(l.accRewardPerShare, delta)
	l.mu.Unlock()

	l.log.Debug("rewards added", "amount", amount, "accRewardPerShare", l.accRewardPerShare)
	return nil
}

// UpdateAccount runs the lazy compounding pass for staker and returns the
// amount folded in. Calling it twice with no intervening reward injection is
// a no-op the second time.
func (l *Ledger) UpdateAccount(staker common.Address) (*big.Int, error) {
	if err := l.enter(); err != nil {
		return nil, err
	}
	defer l.exit()

	acct, ok := l.accounts[staker]
	if !ok {
		return new(big.Int), nil
	}
	l.mu.Lock()
	pending := l.compound(acct)
	l.mu.Unlock()
	return pending, nil
}

// compound folds pending rewards into the account's principal and advances
// its debt snapshot. Caller holds both the writer gate and the mutex.
func (l *Ledger) compound(acct *Account) *big.Int {
	pending := pendingReward(acct, l.accRewardPerShare)
	if pending.Sign() > 0 {
		acct.Principal.Add(acct.Principal, pending)
		l.totalPrincipal.Add(l.totalPrincipal, pending)
	}
	acct.RewardDebt.Set(l.accRewardPerShare)
	return pending
}

// pendingReward computes the not-yet-compounded reward for an account.
func pendingReward(acct *Account, acc *big.Int) *big.Int {
	if acct.Principal.Sign() == 0 {
		return new(big.Int)
	}
	diff := new(big.Int).Sub(acc, acct.RewardDebt)
	if diff.Sign() <= 0 {
		return new(big.Int)
	}
	pending := new(big.Int).Mul(acct.Principal, diff)
	pending.Div(pending, RewardPrecision)
	return pending
}

// Earned returns the pending, not-yet-compounded reward for staker without
// mutating state.
func (l *Ledger) Earned(staker common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acct, ok := l.accounts[staker]
	if !ok {
		return new(big.Int)
	}
	return pendingReward(acct, l.accRewardPerShare)
}

// TotalStaked returns the sum of all compounding balances.
func (l *Ledger) TotalStaked() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalPrincipal)
}

// RewardPerShare returns the current accumulator value.
func (l *Ledger) RewardPerShare() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.accRewardPerShare)
}

// GetAccount returns the read-only view of one staker's record.
func (l *Ledger) GetAccount(staker common.Address) AccountInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	info := AccountInfo{
		Staker:     staker,
		Principal:  new(big.Int),
		RewardDebt: new(big.Int),
	}
	if acct, ok := l.accounts[staker]; ok {
		info.Principal.Set(acct.Principal)
		info.RewardDebt.Set(acct.RewardDebt)
		info.UnlockTime = acct.UnlockTime
	}
	return info
}

// Paused reports whether Stake is halted.
func (l *Ledger) Paused() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.paused
}
