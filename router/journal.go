// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// Journal persists the outbound sequence counters and per-batch settlement
// records. It is a local audit trail only: settlement correctness never
// depends on it, and a journal write failure after a successful send is
// logged, not fatal.
type Journal struct {
	db database.Database
}

var (
	journalSeqPrefix    = []byte("seq/")
	journalSettlePrefix = []byte("settle/")
)

// SettlementRecord is the persisted form of one outbound batch.
type SettlementRecord struct {
	DstChain uint32         `json:"dst_chain"`
	Sequence uint64         `json:"sequence"`
	Asset    common.Address `json:"asset"`
	Amount   *big.Int       `json:"amount"`
	MinOut   *big.Int       `json:"min_out"`
	Time     uint64         `json:"time"`
}

// NewJournal wraps db as a settlement journal.
func NewJournal(db database.Database) *Journal {
	return &Journal{db: db}
}

// BatchID derives the stable identifier for one settlement batch.
func BatchID(dstChain uint32, seq uint64, asset common.Address, amount *big.Int) [32]byte {
	h := blake3.New()
	var buf [12]byte
	binary.BigEndian.PutUint32(buf[:4], dstChain)
	binary.BigEndian.PutUint64(buf[4:], seq)
	h.Write(buf[:])
	h.Write(asset.Bytes())
	if amount != nil {
		h.Write(amount.Bytes())
	}
	var id [32]byte
	h.Digest().Read(id[:])
	return id
}

func seqKey(dstChain uint32) []byte {
	key := make([]byte, len(journalSeqPrefix)+4)
	copy(key, journalSeqPrefix)
	binary.BigEndian.PutUint32(key[len(journalSeqPrefix):], dstChain)
	return key
}

func settleKey(id [32]byte) []byte {
	return append(append([]byte{}, journalSettlePrefix...), id[:]...)
}

// Sequence returns the last recorded sequence for a destination, zero when
// none has been recorded yet.
func (j *Journal) Sequence(dstChain uint32) (uint64, error) {
	raw, err := j.db.Get(seqKey(dstChain))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 8 {
		return 0, errors.New("journal: corrupt sequence entry")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// PutSequence records the sequence counter for a destination.
func (j *Journal) PutSequence(dstChain uint32, seq uint64) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], seq)
	return j.db.Put(seqKey(dstChain), raw[:])
}

// RecordSettlement persists one batch record under its batch id.
func (j *Journal) RecordSettlement(id [32]byte, rec *SettlementRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return j.db.Put(settleKey(id), raw)
}

// GetSettlement loads one batch record.
func (j *Journal) GetSettlement(id [32]byte) (*SettlementRecord, error) {
	raw, err := j.db.Get(settleKey(id))
	if err != nil {
		return nil, err
	}
	var rec SettlementRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
