package exchange

import (
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	agentSourceMainnet = "a"
	agentSourceTestnet = "b"
)

// Signer produces Hyperliquid L1 action signatures. An action is msgpack
// serialized together with its nonce into a "connection id", which is then
// signed as EIP-712 phantom-agent typed data.
type Signer struct {
	key    *ecdsa.PrivateKey
	source string
}

func NewSigner(privateKeyHex string, mainnet bool) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	source := agentSourceMainnet
	if !mainnet {
		source = agentSourceTestnet
	}
	return &Signer{key: key, source: source}, nil
}

// Address returns the 0x-prefixed address of the signing key.
func (s *Signer) Address() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

// Signature is the r/s/v form the exchange endpoint expects.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

// SignAction signs one exchange action with its nonce.
func (s *Signer) SignAction(action interface{}, nonce int64) (*Signature, error) {
	connectionID, err := actionHash(action, nonce)
	if err != nil {
		return nil, err
	}

	types := apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		"Agent": {
			{Name: "source", Type: "string"},
			{Name: "connectionId", Type: "bytes32"},
		},
	}

	typedData := apitypes.TypedData{
		Types:       types,
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(1337),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		Message: map[string]interface{}{
			"source":       s.source,
			"connectionId": hexutil.Encode(connectionID),
		},
	}

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}
	typedDataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to hash message: %w", err)
	}

	rawData := []byte("\x19\x01")
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, typedDataHash...)
	hash := crypto.Keccak256(rawData)

	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign action: %w", err)
	}

	return &Signature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: sig[64] + 27,
	}, nil
}

// actionHash is keccak256(msgpack(action) || nonce_be64 || 0x00), the 0x00
// marking the absence of a vault address.
func actionHash(action interface{}, nonce int64) ([]byte, error) {
	data, err := msgpack.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize action: %w", err)
	}

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], uint64(nonce))
	data = append(data, nonceBytes[:]...)
	data = append(data, 0x00)

	return crypto.Keccak256(data), nil
}
