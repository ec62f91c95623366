// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package staking implements the auto-compounding staking ledger and the
// burn-and-stake reward distributor. Rewards are never paid out as a separate
// claimable balance: the ledger keeps a scaled reward-per-share accumulator
// and folds accrued rewards back into each staker's principal on their next
// interaction.
package staking

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
)

// RewardPrecision is the fixed-point scale for the reward-per-share
// accumulator. All divisions floor.
var RewardPrecision = big.NewInt(1_000_000_000_000) // 1e12

// Account is one staker's position. A record is created on first stake and
// zeroed (not deleted) on full unstake.
type Account struct {
	// Principal is the current compounding stake, including every reward
	// already folded in by a lazy-update pass.
	Principal *big.Int

	// RewardDebt snapshots the accumulator at the account's last update.
	// Newly accrued reward = Principal * (acc - RewardDebt) / RewardPrecision.
	RewardDebt *big.Int

	// UnlockTime is the earliest block time at which unstake succeeds.
	// Reset to now + lock duration on every stake and top-up.
	UnlockTime uint64
}

func newAccount() *Account {
	return &Account{
		Principal:  new(big.Int),
		RewardDebt: new(big.Int),
	}
}

// AccountInfo is the read-only view returned to callers.
type AccountInfo struct {
	Staker     common.Address
	Principal  *big.Int
	RewardDebt *big.Int
	UnlockTime uint64
}

// DistributionReceipt reports one burn-and-stake pass.
type DistributionReceipt struct {
	Burned *big.Int
	Staked *big.Int
	Total  *big.Int
}

// Errors
var (
	ErrZeroAmount   = errors.New("amount must be positive")
	ErrPaused       = errors.New("staking is paused")
	ErrLocked       = errors.New("stake is still locked")
	ErrNoStake      = errors.New("no stake to unstake")
	ErrNoStakers    = errors.New("no stakers to receive rewards")
	ErrUnauthorized = errors.New("unauthorized caller")
	ErrReentrant    = errors.New("reentrancy detected")
	ErrZeroAddress  = errors.New("address cannot be zero")
)
