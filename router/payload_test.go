// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/feerouter/contract"
)

func TestPayloadRoundTrip(t *testing.T) {
	maxMinOut := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	cases := []struct {
		name   string
		asset  common.Address
		minOut *big.Int
	}{
		{"native zero minOut", contract.NativeAsset, big.NewInt(0)},
		{"native nil minOut", contract.NativeAsset, nil},
		{"token small minOut", feeTokenAddr, big.NewInt(1)},
		{"token large minOut", feeTokenAddr, big.NewInt(123_456_789)},
		{"token max minOut", feeTokenAddr, maxMinOut},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := EncodePayload(tc.asset, tc.minOut)
			if len(payload)%32 != 0 {
				t.Fatalf("payload length %d is not a 32-byte multiple", len(payload))
			}

			asset, minOut, err := DecodePayload(payload)
			if err != nil {
				t.Fatalf("DecodePayload failed: %v", err)
			}
			if asset != tc.asset {
				t.Errorf("asset = %v, want %v", asset, tc.asset)
			}
			want := tc.minOut
			if want == nil {
				want = big.NewInt(0)
			}
			if minOut.Cmp(want) != 0 {
				t.Errorf("minOut = %v, want %v", minOut, want)
			}
		})
	}
}

func TestPayloadFraming(t *testing.T) {
	payload := EncodePayload(feeTokenAddr, big.NewInt(7))

	// body (52) + delimiter (1) pads to the next 32-byte boundary.
	if len(payload) != 64 {
		t.Fatalf("payload length = %d, want 64", len(payload))
	}
	if payload[payloadBodyLen] != EndByte {
		t.Errorf("delimiter byte = 0x%02x, want 0x%02x", payload[payloadBodyLen], EndByte)
	}
	padding := payload[payloadBodyLen+1:]
	if !bytes.Equal(padding, make([]byte, len(padding))) {
		t.Errorf("padding is not all zeroes: 0x%x", padding)
	}
}

func TestDecodePayloadRejectsTampering(t *testing.T) {
	valid := EncodePayload(feeTokenAddr, big.NewInt(7))

	t.Run("all zero", func(t *testing.T) {
		_, _, err := DecodePayload(make([]byte, 64))
		if !errors.Is(err, ErrPayloadAllZero) {
			t.Errorf("expected ErrPayloadAllZero, got %v", err)
		}
	})

	t.Run("excess padding", func(t *testing.T) {
		tampered := append(bytes.Clone(valid), make([]byte, 32)...)
		_, _, err := DecodePayload(tampered)
		if !errors.Is(err, ErrPayloadPadding) {
			t.Errorf("expected ErrPayloadPadding, got %v", err)
		}
	})

	t.Run("wrong delimiter", func(t *testing.T) {
		tampered := bytes.Clone(valid)
		tampered[payloadBodyLen] = 0xaa
		_, _, err := DecodePayload(tampered)
		if !errors.Is(err, ErrPayloadDelimiter) {
			t.Errorf("expected ErrPayloadDelimiter, got %v", err)
		}
	})

	t.Run("truncated body", func(t *testing.T) {
		short := packPayload([]byte{0x01, 0x02, 0x03})
		_, _, err := DecodePayload(short)
		if !errors.Is(err, ErrPayloadLength) {
			t.Errorf("expected ErrPayloadLength, got %v", err)
		}
	})
}
