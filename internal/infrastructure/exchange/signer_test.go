package exchange

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestNewSigner(t *testing.T) {
	signer, err := NewSigner(testKey, true)
	require.NoError(t, err)

	addr := signer.Address()
	assert.True(t, strings.HasPrefix(addr, "0x"))
	assert.Len(t, addr, 42)

	// 0x prefix on the key is accepted and yields the same address.
	prefixed, err := NewSigner("0x"+testKey, true)
	require.NoError(t, err)
	assert.Equal(t, addr, prefixed.Address())

	_, err = NewSigner("not-a-key", true)
	assert.Error(t, err)
}

func TestActionHash_Deterministic(t *testing.T) {
	action := &orderAction{
		Type: "order",
		Orders: []wireOrder{{
			Asset: 0,
			IsBuy: true,
			Price: "52500",
			Size:  "0.04",
			Type:  wireOrderType{Limit: &wireLimit{Tif: "Ioc"}},
		}},
		Grouping: "na",
	}

	h1, err := actionHash(action, 1700000000000)
	require.NoError(t, err)
	h2, err := actionHash(action, 1700000000000)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 32)

	// The nonce is part of the hash.
	h3, err := actionHash(action, 1700000000001)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestSignAction(t *testing.T) {
	signer, err := NewSigner(testKey, true)
	require.NoError(t, err)

	action := &orderAction{Type: "order", Grouping: "na"}
	sig, err := signer.SignAction(action, 1700000000000)
	require.NoError(t, err)

	assert.Len(t, sig.R, 66) // 0x + 32 bytes
	assert.Len(t, sig.S, 66)
	assert.Contains(t, []uint8{27, 28}, sig.V)

	// Mainnet and testnet sources sign different phantom agents.
	testnetSigner, err := NewSigner(testKey, false)
	require.NoError(t, err)
	testnetSig, err := testnetSigner.SignAction(action, 1700000000000)
	require.NoError(t, err)
	assert.NotEqual(t, sig.R, testnetSig.R)
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.001", formatFloat(0.001))
	assert.Equal(t, "50000", formatFloat(50000))
	assert.Equal(t, "0.04", formatFloat(0.04))
}

func TestFormatPrice(t *testing.T) {
	// Prices carry at most 5 significant figures.
	assert.Equal(t, "52500", formatPrice(52500.123))
	assert.Equal(t, "0.012346", formatPrice(0.0123456))
	assert.Equal(t, "1234.6", formatPrice(1234.5678))
	assert.Equal(t, "0", formatPrice(0))
}
