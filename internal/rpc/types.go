package rpc

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/mr-tron/base58"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ResponseContext is the slot an account read was served at
type ResponseContext struct {
	Slot uint64 `json:"slot"`
}

// Account data encodings understood by AccountInfo.Bytes
const (
	EncodingBase64     = "base64"
	EncodingBase64Zstd = "base64+zstd"
	EncodingBase58     = "base58"
)

// zstdDecoder builds the shared decoder on first use. DecodeAll is safe for
// concurrent callers.
var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

// AccountInfo is a raw account as returned by getAccountInfo
type AccountInfo struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"` // [payload, encoding]
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
	Space      uint64   `json:"space"`
}

// Bytes decodes the account data
func (a *AccountInfo) Bytes() ([]byte, error) {
	if len(a.Data) == 0 {
		return nil, nil
	}
	encoding := EncodingBase64
	if len(a.Data) > 1 {
		encoding = a.Data[1]
	}

	switch encoding {
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(a.Data[0])
		if err != nil {
			return nil, fmt.Errorf("failed to decode account data: %w", err)
		}
		return raw, nil
	case EncodingBase64Zstd:
		compressed, err := base64.StdEncoding.DecodeString(a.Data[0])
		if err != nil {
			return nil, fmt.Errorf("failed to decode account data: %w", err)
		}
		dec, err := zstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		raw, err := dec.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress account data: %w", err)
		}
		return raw, nil
	case EncodingBase58:
		raw, err := base58.Decode(a.Data[0])
		if err != nil {
			return nil, fmt.Errorf("failed to decode account data: %w", err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported account encoding %q", encoding)
	}
}

// AccountInfoResponse is the response from getAccountInfo
type AccountInfoResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   *AccountInfo    `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// MultipleAccountsResponse is the response from getMultipleAccounts
type MultipleAccountsResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   []*AccountInfo  `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}
