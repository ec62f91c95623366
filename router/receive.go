// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"fmt"
	"math/big"

	luxcrypto "github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/feerouter/contract"
)

// OnMessage handles one inbound settlement message. Only the transport
// endpoint may deliver it, and only from a channel/sender pair the owner has
// registered; no value is ever swapped or distributed otherwise. A zero
// balance of the named asset is a defined no-op. Swap and distribution are
// all-or-nothing: any failure aborts the unit with no partial burn or stake.
func (r *Router) OnMessage(db contract.StateDB, caller common.Address, srcChain uint32, claimedSender common.Address, payload []byte) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	if caller != r.cfg.Endpoint {
		return ErrNotEndpoint
	}

	trusted := r.trustedRemotes[srcChain]
	if trusted == (common.Address{}) || trusted != claimedSender {
		return ErrUntrustedRemote
	}

	asset, minOut, err := DecodePayload(payload)
	if err != nil {
		return err
	}

	if r.adapter == nil || r.distributor == nil {
		return fmt.Errorf("%w: no swap/stake capability on this chain", ErrInvalidConfig)
	}

	amount, err := r.assetBalance(db, asset)
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		r.log.Debug("settlement message with nothing to process", "srcChain", srcChain, "asset", asset)
		return nil
	}

	out, err := r.adapter.ConvertToRewardToken(db, r.cfg.RouterAddr, asset, amount, minOut)
	if err != nil {
		return err
	}

	receipt, err := r.distributor.BurnAndStake(db, out)
	if err != nil {
		return err
	}

	r.log.Info("settlement processed",
		"srcChain", srcChain,
		"asset", asset,
		"amountIn", amount,
		"rewardOut", out,
		"burned", receipt.Burned,
		"staked", receipt.Staked,
		"payloadHash", common.BytesToHash(luxcrypto.Keccak256(payload)))
	return nil
}

// assetBalance reads the router's balance of the named asset.
func (r *Router) assetBalance(db contract.StateDB, asset common.Address) (*big.Int, error) {
	if contract.IsNative(asset) {
		return db.GetBalance(r.cfg.RouterAddr).ToBig(), nil
	}
	tok, err := r.token(asset)
	if err != nil {
		return nil, err
	}
	return tok.BalanceOf(db, r.cfg.RouterAddr), nil
}
