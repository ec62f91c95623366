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

// Distributor splits a reward-token amount in half, burns one half to the
// dead address and injects the other half into the staking ledger. It holds
// reward tokens at its own address between conversion and distribution but
// never holds any staking principal.
type Distributor struct {
	mu     sync.Mutex
	locked bool

	addr   common.Address
	token  contract.Token
	ledger *Ledger
	log    log.Logger
}

// NewDistributor creates the burn-and-stake distributor.
func NewDistributor(addr common.Address, token contract.Token, ledger *Ledger, logger log.Logger) (*Distributor, error) {
	if addr == (common.Address{}) {
		return nil, ErrZeroAddress
	}
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Distributor{
		addr:   addr,
		token:  token,
		ledger: ledger,
		log:    logger,
	}, nil
}

// Address returns the distributor's token-holding address.
func (d *Distributor) Address() common.Address { return d.addr }

// SplitAmount computes the burn/stake halves. The burn half absorbs the odd
// unit, so burn >= stake by at most one.
func SplitAmount(amount *big.Int) (stakeHalf, burnHalf *big.Int) {
	stakeHalf = new(big.Int).Rsh(amount, 1)
	burnHalf = new(big.Int).Sub(amount, stakeHalf)
	return stakeHalf, burnHalf
}

// BurnAndStake distributes amount: half burned, half staked as rewards.
// A zero amount is a defined no-op. The no-stakers case is rejected before
// any transfer so a failed distribution never leaves a partial burn.
func (d *Distributor) BurnAndStake(db contract.StateDB, amount *big.Int) (*DistributionReceipt, error) {
	d.mu.Lock()
	if d.locked {
		d.mu.Unlock()
		return nil, ErrReentrant
	}
	d.locked = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.locked = false
		d.mu.Unlock()
	}()

	if amount == nil || amount.Sign() < 0 {
		return nil, ErrZeroAmount
	}
	if amount.Sign() == 0 {
		return &DistributionReceipt{
			Burned: new(big.Int),
			Staked: new(big.Int),
			Total:  new(big.Int),
		}, nil
	}

	stakeHalf, burnHalf := SplitAmount(amount)

	if stakeHalf.Sign() > 0 && d.ledger.TotalStaked().Sign() == 0 {
		return nil, ErrNoStakers
	}

	if err := d.token.Transfer(db, d.addr, contract.DeadAddress, burnHalf); err != nil {
		return nil, err
	}
	d.log.Debug("burned", "amount", burnHalf)

	if stakeHalf.Sign() > 0 {
		if err := d.token.Transfer(db, d.addr, d.ledger.Address(), stakeHalf); err != nil {
			return nil, err
		}
		if err := d.ledger.AddRewards(db, d.addr, stakeHalf); err != nil {
			return nil, err
		}
		d.log.Debug("staked rewards", "amount", stakeHalf)
	}

	receipt := &DistributionReceipt{
		Burned: burnHalf,
		Staked: stakeHalf,
		Total:  new(big.Int).Set(amount),
	}
	d.log.Info("distributed", "burned", burnHalf, "staked", stakeHalf, "total", amount)
	return receipt, nil
}
