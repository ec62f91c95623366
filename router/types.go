// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package router implements the fee-slicing and cross-chain settlement core:
// incoming launch fees are split into a protocol share and a treasury
// remainder, the accumulated share is periodically shipped across the
// message transport to the paired router, and inbound settlement messages
// are validated against a trusted-remote registry before any value moves.
package router

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/feerouter/contract"
)

// Transport is the cross-chain message collaborator. Send ships a framed
// payload (plus native value, when carrying a native settlement) to the
// destination channel; delivery and per-channel ordering are the transport's
// responsibility.
type Transport interface {
	Send(dstChain uint32, payload []byte, minRemoteGas uint64, value *big.Int) error
}

// FeeSource is an upstream fee-holding contract the router can drain.
// Collect moves the source's accrued native fees to recipient and reports
// the amount moved.
type FeeSource interface {
	Address() common.Address
	Collect(db contract.StateDB, recipient common.Address) (*big.Int, error)
}

// Config is the router's immutable construction-time configuration.
type Config struct {
	// Owner gates treasury changes, remote registration, pause and
	// settlement triggers.
	Owner common.Address

	// Treasury receives the non-protocol remainder of every sliced fee.
	Treasury common.Address

	// Endpoint is the transport's authenticated local identity; OnMessage
	// rejects every other caller.
	Endpoint common.Address

	// RouterAddr holds the accumulated protocol share.
	RouterAddr common.Address

	// RemoteChain is the settlement destination channel.
	RemoteChain uint32

	// FeeRatioBps is the protocol share in basis points (150 = 1.5%).
	FeeRatioBps uint64

	// DustFloor is the minimum balance worth settling; below it settlement
	// is a defined no-op.
	DustFloor *big.Int
}

// Default slicing parameters.
const DefaultFeeRatioBps uint64 = 150 // 1.5%

// DefaultDustFloor is the default minimum settleable balance.
var DefaultDustFloor = big.NewInt(1_000_000)

// DefaultConfig returns a config with the default slicing parameters filled
// in. The identity fields must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		FeeRatioBps: DefaultFeeRatioBps,
		DustFloor:   new(big.Int).Set(DefaultDustFloor),
	}
}

// Validate checks the configuration. DustFloor may be nil (treated as zero);
// the identity fields must all be set.
func (c *Config) Validate() error {
	zero := common.Address{}
	if c.Owner == zero || c.Treasury == zero || c.Endpoint == zero || c.RouterAddr == zero {
		return ErrZeroAddress
	}
	if c.FeeRatioBps > contract.BasisPoints {
		return ErrInvalidConfig
	}
	return nil
}

// SliceReceipt reports one fee-slicing pass.
type SliceReceipt struct {
	Asset         common.Address
	ProtocolShare *big.Int
	Remainder     *big.Int
}

// CollectResult is one entry of a multi-source collection batch. A source's
// failure is recorded here and never aborts the rest of the batch.
type CollectResult struct {
	Source  common.Address
	Receipt *SliceReceipt
	Err     error
}

// SettlementReceipt reports one outbound settlement batch.
type SettlementReceipt struct {
	BatchID  [32]byte
	DstChain uint32
	Sequence uint64
	Asset    common.Address
	Amount   *big.Int
}

// Errors
var (
	ErrZeroAmount      = errors.New("amount must be positive")
	ErrZeroAddress     = errors.New("address cannot be zero")
	ErrInvalidConfig   = errors.New("invalid router configuration")
	ErrUnauthorized    = errors.New("unauthorized: caller is not owner")
	ErrNotEndpoint     = errors.New("caller is not the transport endpoint")
	ErrUntrustedRemote = errors.New("untrusted remote channel/sender")
	ErrUnknownAsset    = errors.New("asset has no registered token")
	ErrPaused          = errors.New("router is paused")
	ErrReentrant       = errors.New("reentrancy detected")
)
