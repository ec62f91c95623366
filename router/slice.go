// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/feerouter/contract"
)

// SliceNative splits an incoming native amount that has just been credited
// to the router's address: the treasury remainder leaves immediately, the
// protocol share stays resident on the router balance.
func (r *Router) SliceNative(db contract.StateDB, amount *big.Int) (*SliceReceipt, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.exit()
	return r.sliceNative(db, amount)
}

// sliceNative is the unguarded slicing pass, shared with batch collection.
func (r *Router) sliceNative(db contract.StateDB, amount *big.Int) (*SliceReceipt, error) {
	if r.paused {
		return nil, ErrPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	protocolShare, remainder := splitFee(amount, r.cfg.FeeRatioBps)

	if remainder.Sign() > 0 {
		value, _ := uint256.FromBig(remainder)
		db.SubBalance(r.cfg.RouterAddr, value)
		db.AddBalance(r.treasury, value)
	}

	receipt := &SliceReceipt{
		Asset:         contract.NativeAsset,
		ProtocolShare: protocolShare,
		Remainder:     remainder,
	}
	r.log.Debug("sliced", "asset", contract.NativeAsset, "protocolShare", protocolShare, "remainder", remainder)
	return receipt, nil
}

// SliceToken splits an incoming amount of a tracked token already held by
// the router. A failed treasury transfer aborts the whole operation.
func (r *Router) SliceToken(db contract.StateDB, asset common.Address, amount *big.Int) (*SliceReceipt, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.exit()

	if r.paused {
		return nil, ErrPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	tok, err := r.token(asset)
	if err != nil {
		return nil, err
	}

	protocolShare, remainder := splitFee(amount, r.cfg.FeeRatioBps)

	if remainder.Sign() > 0 {
		if err := tok.Transfer(db, r.cfg.RouterAddr, r.treasury, remainder); err != nil {
			return nil, err
		}
	}

	receipt := &SliceReceipt{
		Asset:         asset,
		ProtocolShare: protocolShare,
		Remainder:     remainder,
	}
	r.log.Debug("sliced", "asset", asset, "protocolShare", protocolShare, "remainder", remainder)
	return receipt, nil
}

// CollectAndSlice drains a batch of upstream fee sources into the router and
// slices each collected amount. One source's failure never aborts the batch;
// each attempt's outcome is reported in order.
func (r *Router) CollectAndSlice(db contract.StateDB, sources []FeeSource) []CollectResult {
	results := make([]CollectResult, 0, len(sources))
	for _, src := range sources {
		receipt, err := r.CollectAndSliceOne(db, src)
		results = append(results, CollectResult{
			Source:  src.Address(),
			Receipt: receipt,
			Err:     err,
		})
		if err != nil {
			r.log.Warn("fee source collection failed", "source", src.Address(), "err", err)
		}
	}
	return results
}

// CollectAndSliceOne drains a single fee source, then slices on success.
// The source's failure surfaces to the caller.
func (r *Router) CollectAndSliceOne(db contract.StateDB, src FeeSource) (*SliceReceipt, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.exit()

	if r.paused {
		return nil, ErrPaused
	}
	amount, err := src.Collect(db, r.cfg.RouterAddr)
	if err != nil {
		return nil, err
	}
	return r.sliceNative(db, amount)
}

// splitFee floors the protocol share at feeRatioBps and returns both halves.
// protocolShare + remainder == amount always holds.
func splitFee(amount *big.Int, feeRatioBps uint64) (protocolShare, remainder *big.Int) {
	protocolShare = new(big.Int).Mul(amount, new(big.Int).SetUint64(feeRatioBps))
	protocolShare.Div(protocolShare, new(big.Int).SetUint64(contract.BasisPoints))
	remainder = new(big.Int).Sub(amount, protocolShare)
	return protocolShare, remainder
}
