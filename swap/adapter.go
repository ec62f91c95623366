// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package swap

import (
	"math/big"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/feerouter/contract"
)

// Adapter routes one asset into the reward token on a fixed venue fee tier.
// It holds no balances itself; the venue debits the recipient's input asset
// and credits the output.
type Adapter struct {
	venue         Venue
	rewardToken   common.Address
	wrappedNative common.Address
	feeTier       uint32
	log           log.Logger
}

// NewAdapter creates the swap adapter. wrappedNative may be zero on venues
// with no two-hop fallback; rewardToken must be set.
func NewAdapter(venue Venue, rewardToken, wrappedNative common.Address, feeTier uint32, logger log.Logger) (*Adapter, error) {
	if venue == nil || rewardToken == (common.Address{}) {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Adapter{
		venue:         venue,
		rewardToken:   rewardToken,
		wrappedNative: wrappedNative,
		feeTier:       feeTier,
		log:           logger,
	}, nil
}

// RewardToken returns the conversion target.
func (a *Adapter) RewardToken() common.Address { return a.rewardToken }

// ConvertToRewardToken swaps amountIn of asset into the reward token,
// delivering the output to recipient. The direct pool is tried first, then a
// two-hop route through wrapped native. ErrNoRoute is terminal for the asset
// until liquidity appears; output below minOut fails the whole call so the
// enclosing receive-side unit can abort without a partial burn or stake.
func (a *Adapter) ConvertToRewardToken(db contract.StateDB, recipient, asset common.Address, amountIn, minOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if asset == a.rewardToken {
		return amountIn, nil
	}
	if minOut == nil {
		minOut = new(big.Int)
	}

	var path []common.Address
	switch {
	case a.venue.PoolExists(asset, a.rewardToken, a.feeTier):
		path = []common.Address{asset, a.rewardToken}
	case a.wrappedNative != (common.Address{}) &&
		a.venue.PoolExists(asset, a.wrappedNative, a.feeTier) &&
		a.venue.PoolExists(a.wrappedNative, a.rewardToken, a.feeTier):
		path = []common.Address{asset, a.wrappedNative, a.rewardToken}
	default:
		return nil, ErrNoRoute
	}

	out, err := a.venue.SwapExactIn(db, recipient, path, a.feeTier, amountIn, minOut)
	if err != nil {
		return nil, err
	}
	if out == nil || out.Cmp(minOut) < 0 {
		return nil, ErrInsufficientOutput
	}

	a.log.Debug("converted to reward token", "asset", asset, "hops", len(path)-1, "amountIn", amountIn, "amountOut", out)
	return out, nil
}
