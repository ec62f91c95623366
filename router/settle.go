// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/feerouter/contract"
)

// SettleNative ships the router's entire native balance to the paired router
// on the remote chain. Below the dust floor it is a defined no-op returning
// a nil receipt. Owner only. The sequence counter advances exactly once per
// successful send.
func (r *Router) SettleNative(db contract.StateDB, caller common.Address, transport Transport, minRemoteGas uint64, minOut *big.Int) (*SettlementReceipt, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.exit()

	if caller != r.cfg.Owner {
		return nil, ErrUnauthorized
	}
	if r.paused {
		return nil, ErrPaused
	}

	balance := db.GetBalance(r.cfg.RouterAddr).ToBig()
	if r.belowDustFloor(balance) {
		return nil, nil
	}

	payload := EncodePayload(contract.NativeAsset, minOut)
	if err := transport.Send(r.cfg.RemoteChain, payload, minRemoteGas, balance); err != nil {
		return nil, err
	}

	value, _ := uint256.FromBig(balance)
	db.SubBalance(r.cfg.RouterAddr, value)

	return r.finishSettlement(db, contract.NativeAsset, balance, minOut)
}

// SettleToken ships the router's entire balance of a tracked token, granting
// the endpoint a one-time allowance of exactly that balance. Owner only.
func (r *Router) SettleToken(db contract.StateDB, caller common.Address, transport Transport, asset common.Address, minRemoteGas uint64, minOut *big.Int) (*SettlementReceipt, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.exit()

	if caller != r.cfg.Owner {
		return nil, ErrUnauthorized
	}
	if r.paused {
		return nil, ErrPaused
	}
	tok, err := r.token(asset)
	if err != nil {
		return nil, err
	}

	balance := tok.BalanceOf(db, r.cfg.RouterAddr)
	if r.belowDustFloor(balance) {
		return nil, nil
	}

	if err := tok.Approve(db, r.cfg.RouterAddr, r.cfg.Endpoint, balance); err != nil {
		return nil, err
	}

	payload := EncodePayload(asset, minOut)
	if err := transport.Send(r.cfg.RemoteChain, payload, minRemoteGas, nil); err != nil {
		return nil, err
	}

	return r.finishSettlement(db, asset, balance, minOut)
}

// belowDustFloor reports whether balance is not worth settling.
func (r *Router) belowDustFloor(balance *big.Int) bool {
	if balance == nil || balance.Sign() == 0 {
		return true
	}
	return r.cfg.DustFloor != nil && balance.Cmp(r.cfg.DustFloor) < 0
}

// finishSettlement advances the sequence, journals the batch and emits the
// receipt. The caller has already completed the external send.
func (r *Router) finishSettlement(db contract.StateDB, asset common.Address, amount, minOut *big.Int) (*SettlementReceipt, error) {
	dst := r.cfg.RemoteChain

	r.mu.Lock()
	r.sequences[dst]++
	seq := r.sequences[dst]
	r.mu.Unlock()

	id := BatchID(dst, seq, asset, amount)

	if r.journal != nil {
		if err := r.journal.PutSequence(dst, seq); err != nil {
			r.log.Error("journal sequence write failed", "dst", dst, "seq", seq, "err", err)
		}
		rec := &SettlementRecord{
			DstChain: dst,
			Sequence: seq,
			Asset:    asset,
			Amount:   amount,
			MinOut:   minOut,
			Time:     db.GetBlockTime(),
		}
		if err := r.journal.RecordSettlement(id, rec); err != nil {
			r.log.Error("journal settlement write failed", "batch", id, "err", err)
		}
	}

	receipt := &SettlementReceipt{
		BatchID:  id,
		DstChain: dst,
		Sequence: seq,
		Asset:    asset,
		Amount:   amount,
	}
	r.log.Info("settled", "asset", asset, "amount", amount, "seq", seq, "dst", dst)
	return receipt, nil
}
