// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"
)

// Settlement payload wire format. This is the entire cross-chain contract
// surface and must stay stable across both ends of a channel:
//
//	body    = 20-byte asset marker || 32-byte big-endian min-out
//	payload = body || EndByte, zero-padded to a 32-byte boundary
//
// The asset marker is address(0) for native settlements.
const (
	payloadBodyLen = common.AddressLength + 32

	// EndByte delimits the payload body from the zero padding.
	EndByte = byte(0xff)
)

var (
	ErrPayloadAllZero   = errors.New("payload is all zero bytes")
	ErrPayloadPadding   = errors.New("payload has invalid padding")
	ErrPayloadDelimiter = errors.New("payload has invalid end delimiter")
	ErrPayloadLength    = errors.New("payload body has invalid length")
)

// EncodePayload builds the framed settlement payload for asset and minOut.
// A nil minOut encodes as zero.
func EncodePayload(asset common.Address, minOut *big.Int) []byte {
	body := make([]byte, payloadBodyLen)
	copy(body, asset.Bytes())
	if minOut != nil && minOut.Sign() > 0 {
		minOut.FillBytes(body[common.AddressLength:])
	}
	return packPayload(body)
}

// DecodePayload parses a framed settlement payload.
func DecodePayload(payload []byte) (asset common.Address, minOut *big.Int, err error) {
	body, err := unpackPayload(payload)
	if err != nil {
		return common.Address{}, nil, err
	}
	if len(body) != payloadBodyLen {
		return common.Address{}, nil, fmt.Errorf("%w: got %d, expected %d", ErrPayloadLength, len(body), payloadBodyLen)
	}
	asset = common.BytesToAddress(body[:common.AddressLength])
	minOut = new(big.Int).SetBytes(body[common.AddressLength:])
	return asset, minOut, nil
}

// packPayload appends the end delimiter and pads to a 32-byte boundary.
func packPayload(body []byte) []byte {
	withDelimiter := append(body, EndByte)
	paddedLength := (len(withDelimiter) + 31) / 32 * 32
	padded := make([]byte, paddedLength)
	copy(padded, withDelimiter)
	return padded
}

// unpackPayload strips right-padded zeros and the end delimiter, validating
// that the padding is exactly what packPayload produced.
func unpackPayload(padded []byte) ([]byte, error) {
	trimmed := common.TrimRightZeroes(padded)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: 0x%x", ErrPayloadAllZero, padded)
	}
	if expected := (len(trimmed) + 31) / 32 * 32; expected != len(padded) {
		return nil, fmt.Errorf("%w: got length (%d), expected length (%d)", ErrPayloadPadding, len(padded), expected)
	}
	if trimmed[len(trimmed)-1] != EndByte {
		return nil, ErrPayloadDelimiter
	}
	return trimmed[:len(trimmed)-1], nil
}
