// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/feerouter/contract"
)

func TestSettleNativeRequiresOwner(t *testing.T) {
	r := newTestRouter(t)
	db := NewMockStateDB()
	db.SetNativeBalance(routerAddr, big.NewInt(10_000))
	tr := &mockTransport{}

	_, err := r.SettleNative(db, strangerAddr, tr, 200_000, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Empty(t, tr.sends)
	require.EqualValues(t, 10_000, db.GetBalance(routerAddr).Uint64())
}

func TestSettleNativeDustFloorNoOp(t *testing.T) {
	r := newTestRouter(t)
	db := NewMockStateDB()
	tr := &mockTransport{}

	// Zero balance.
	receipt, err := r.SettleNative(db, ownerAddr, tr, 200_000, nil)
	require.NoError(t, err)
	require.Nil(t, receipt)

	// Positive but below the configured floor of 1000.
	db.SetNativeBalance(routerAddr, big.NewInt(500))
	receipt, err = r.SettleNative(db, ownerAddr, tr, 200_000, nil)
	require.NoError(t, err)
	require.Nil(t, receipt)

	require.Empty(t, tr.sends)
	require.EqualValues(t, 500, db.GetBalance(routerAddr).Uint64())
	require.Zero(t, r.Sequence(remoteChain))
}

func TestSettleNative(t *testing.T) {
	r := newTestRouter(t)
	db := NewMockStateDB()
	db.SetNativeBalance(routerAddr, big.NewInt(10_000))
	tr := &mockTransport{}
	minOut := big.NewInt(9_500)

	receipt, err := r.SettleNative(db, ownerAddr, tr, 200_000, minOut)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.Equal(t, remoteChain, receipt.DstChain)
	require.EqualValues(t, 1, receipt.Sequence)
	require.Equal(t, contract.NativeAsset, receipt.Asset)
	require.EqualValues(t, 10_000, receipt.Amount.Int64())

	// The full balance left with the message, carried as native value.
	require.Zero(t, db.GetBalance(routerAddr).Sign())
	require.Len(t, tr.sends, 1)
	sent := tr.sends[0]
	require.Equal(t, remoteChain, sent.dst)
	require.EqualValues(t, 200_000, sent.gas)
	require.EqualValues(t, 10_000, sent.value.Int64())

	asset, gotMinOut, err := DecodePayload(sent.payload)
	require.NoError(t, err)
	require.Equal(t, contract.NativeAsset, asset)
	require.Zero(t, gotMinOut.Cmp(minOut))

	require.EqualValues(t, 1, r.Sequence(remoteChain))
}

func TestSettleNativeTransportFailureLeavesState(t *testing.T) {
	r := newTestRouter(t)
	db := NewMockStateDB()
	db.SetNativeBalance(routerAddr, big.NewInt(10_000))
	tr := &mockTransport{err: errors.New("channel congested")}

	_, err := r.SettleNative(db, ownerAddr, tr, 200_000, nil)
	require.Error(t, err)
	require.EqualValues(t, 10_000, db.GetBalance(routerAddr).Uint64())
	require.Zero(t, r.Sequence(remoteChain))
}

func TestSettleToken(t *testing.T) {
	r := newTestRouter(t)
	db := NewMockStateDB()
	token := NewMockToken(feeTokenAddr)
	token.Mint(routerAddr, big.NewInt(5_000))
	require.NoError(t, r.RegisterToken(ownerAddr, token))
	tr := &mockTransport{}

	receipt, err := r.SettleToken(db, ownerAddr, tr, feeTokenAddr, 200_000, big.NewInt(4_900))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.Equal(t, feeTokenAddr, receipt.Asset)
	require.EqualValues(t, 5_000, receipt.Amount.Int64())
	require.EqualValues(t, 1, receipt.Sequence)

	// The endpoint got a one-time allowance of exactly the settled balance.
	require.Len(t, token.approvals, 1)
	granted := token.approvals[0]
	require.Equal(t, routerAddr, granted.owner)
	require.Equal(t, endpointAddr, granted.spender)
	require.EqualValues(t, 5_000, granted.amount.Int64())

	require.Len(t, tr.sends, 1)
	require.Nil(t, tr.sends[0].value)

	asset, gotMinOut, err := DecodePayload(tr.sends[0].payload)
	require.NoError(t, err)
	require.Equal(t, feeTokenAddr, asset)
	require.EqualValues(t, 4_900, gotMinOut.Int64())
}

func TestSettleTokenUnknownAsset(t *testing.T) {
	r := newTestRouter(t)
	db := NewMockStateDB()
	tr := &mockTransport{}

	_, err := r.SettleToken(db, ownerAddr, tr, feeTokenAddr, 200_000, nil)
	require.ErrorIs(t, err, ErrUnknownAsset)
}

func TestSettlementJournalPersistsAcrossRestart(t *testing.T) {
	backing := memdb.New()
	journal := NewJournal(backing)

	r, err := NewRouter(testConfig(), journal, nil, nil, nil)
	require.NoError(t, err)

	db := NewMockStateDB()
	db.SetBlockTime(1_700_000)
	tr := &mockTransport{}

	db.SetNativeBalance(routerAddr, big.NewInt(10_000))
	first, err := r.SettleNative(db, ownerAddr, tr, 200_000, nil)
	require.NoError(t, err)

	db.SetNativeBalance(routerAddr, big.NewInt(20_000))
	second, err := r.SettleNative(db, ownerAddr, tr, 200_000, nil)
	require.NoError(t, err)
	require.EqualValues(t, 2, second.Sequence)
	require.NotEqual(t, first.BatchID, second.BatchID)

	// Rebuilding over the same journal restores the counter, so sequences
	// keep advancing instead of restarting at one.
	r2, err := NewRouter(testConfig(), journal, nil, nil, nil)
	require.NoError(t, err)
	require.EqualValues(t, 2, r2.Sequence(remoteChain))

	db.SetNativeBalance(routerAddr, big.NewInt(30_000))
	third, err := r2.SettleNative(db, ownerAddr, tr, 200_000, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, third.Sequence)

	rec, err := journal.GetSettlement(second.BatchID)
	require.NoError(t, err)
	require.Equal(t, remoteChain, rec.DstChain)
	require.EqualValues(t, 2, rec.Sequence)
	require.Equal(t, contract.NativeAsset, rec.Asset)
	require.EqualValues(t, 20_000, rec.Amount.Int64())
	require.EqualValues(t, 1_700_000, rec.Time)
}

func TestBatchIDDeterministic(t *testing.T) {
	a := BatchID(remoteChain, 1, contract.NativeAsset, big.NewInt(100))
	b := BatchID(remoteChain, 1, contract.NativeAsset, big.NewInt(100))
	require.Equal(t, a, b)

	c := BatchID(remoteChain, 2, contract.NativeAsset, big.NewInt(100))
	require.NotEqual(t, a, c)
	d := BatchID(remoteChain, 1, contract.NativeAsset, big.NewInt(101))
	require.NotEqual(t, a, d)
}
