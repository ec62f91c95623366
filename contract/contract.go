// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the collaborator interfaces shared by the fee
// router, swap adapter and staking ledger: chain state access, ERC-20 style
// token operations, and the common protocol constants.
package contract

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// StateDB is the minimal chain-state surface the router core operates on.
// Native balances are tracked here; block time is observed through it so
// every operation inside one state transition sees the same clock.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)
	GetBalance(addr common.Address) *uint256.Int
	AddBalance(addr common.Address, amount *uint256.Int)
	SubBalance(addr common.Address, amount *uint256.Int)
	Exist(addr common.Address) bool
	CreateAccount(addr common.Address)
	GetBlockTime() uint64
}

// Token is the tracked-token collaborator. Implementations bridge to the
// actual token ledger; any non-nil error is fatal to the enclosing operation
// and must leave the token ledger unchanged.
type Token interface {
	Address() common.Address
	BalanceOf(db StateDB, holder common.Address) *big.Int
	Transfer(db StateDB, from, to common.Address, amount *big.Int) error
	TransferFrom(db StateDB, spender, from, to common.Address, amount *big.Int) error
	Approve(db StateDB, owner, spender common.Address, amount *big.Int) error
}

// BasisPoints is the denominator for all fee ratios.
const BasisPoints uint64 = 10000

var (
	// NativeAsset marks the chain-native asset in payloads and receipts
	// (address(0) convention for native value).
	NativeAsset = common.Address{}

	// DeadAddress is the unrecoverable burn sink.
	DeadAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")
)

// IsNative reports whether asset denotes the chain-native asset.
func IsNative(asset common.Address) bool {
	return asset == NativeAsset
}
