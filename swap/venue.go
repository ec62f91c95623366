// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swap converts arbitrary received assets into the reward token
// through an external swap venue, probing a direct pool first and a two-hop
// route through the wrapped-native asset as fallback.
package swap

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/feerouter/contract"
)

// Pool fee tiers (basis points of a pip, venue convention).
const (
	Fee001 uint32 = 100   // 0.01% - stablecoins
	Fee005 uint32 = 500   // 0.05% - stable pairs
	Fee030 uint32 = 3000  // 0.30% - standard
	Fee100 uint32 = 10000 // 1.00% - exotic pairs
)

// Venue is the swap-venue collaborator: pool existence keyed by
// (assetA, assetB, feeTier), plus exact-input swaps. A path of two assets is
// a single-hop swap, three assets a two-hop swap. The venue must deliver at
// least minOut to recipient or fail without effect.
type Venue interface {
	PoolExists(assetA, assetB common.Address, feeTier uint32) bool
	SwapExactIn(db contract.StateDB, recipient common.Address, path []common.Address, feeTier uint32, amountIn, minOut *big.Int) (*big.Int, error)
}

// Errors
var (
	ErrNoRoute            = errors.New("no swap route for asset")
	ErrInsufficientOutput = errors.New("swap output below minimum")
	ErrZeroAmount         = errors.New("amount must be positive")
	ErrInvalidConfig      = errors.New("invalid swap configuration")
)
