package pumpswap

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/pumpswap-quoter/internal/rpc"
)

// fakeChain serves getAccountInfo and getMultipleAccounts from memory
type fakeChain struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	requests [][]string
}

func newFakeChain() *fakeChain {
	return &fakeChain{accounts: map[solana.PublicKey][]byte{}}
}

func (f *fakeChain) set(addr solana.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[addr] = data
}

func (f *fakeChain) remove(addr solana.PublicKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.accounts, addr)
}

func (f *fakeChain) account(key string) interface{} {
	data, ok := f.accounts[solana.MustPublicKeyFromBase58(key)]
	if !ok {
		return nil
	}
	return map[string]interface{}{
		"lamports":   2039280,
		"owner":      solana.TokenProgramID.String(),
		"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
		"executable": false,
		"rentEpoch":  0,
		"space":      len(data),
	}
}

func (f *fakeChain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ctx := map[string]interface{}{"slot": 1}
	var value interface{}
	switch req.Method {
	case "getAccountInfo":
		var key string
		_ = json.Unmarshal(req.Params[0], &key)
		f.requests = append(f.requests, []string{key})
		value = f.account(key)
	case "getMultipleAccounts":
		var keys []string
		_ = json.Unmarshal(req.Params[0], &keys)
		f.requests = append(f.requests, keys)
		values := make([]interface{}, len(keys))
		for i, k := range keys {
			values[i] = f.account(k)
		}
		value = values
	default:
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": 1,
			"error": map[string]interface{}{"code": -32601, "message": "method not found"},
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  map[string]interface{}{"context": ctx, "value": value},
	})
}

func (f *fakeChain) requestLog() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.requests...)
}

func newTestClient(t *testing.T, chain *fakeChain) *Client {
	srv := httptest.NewServer(chain)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	return NewClient(ClientConfig{
		RPC:    rpc.NewClient(rpc.ClientConfig{BaseURL: srv.URL, Logger: logger}),
		Logger: logger,
	})
}

func poolBytes(baseMint, quoteMint, baseVault, quoteVault, coinCreator solana.PublicKey, legacy bool) []byte {
	b := append([]byte{}, poolDiscriminator[:]...)
	b = append(b, 254)                 // bump
	b = append(b, 0, 0)                // index
	b = append(b, make([]byte, 32)...) // creator
	b = append(b, baseMint.Bytes()...)
	b = append(b, quoteMint.Bytes()...)
	b = append(b, make([]byte, 32)...) // lp mint
	b = append(b, baseVault.Bytes()...)
	b = append(b, quoteVault.Bytes()...)
	b = binary.LittleEndian.AppendUint64(b, 1_000)
	if !legacy {
		b = append(b, coinCreator.Bytes()...)
	}
	return b
}

func globalConfigBytes(lp, protocol, creator uint64, recipients ...solana.PublicKey) []byte {
	b := append([]byte{}, globalConfigDiscriminator[:]...)
	b = append(b, make([]byte, 32)...) // admin
	b = binary.LittleEndian.AppendUint64(b, lp)
	b = binary.LittleEndian.AppendUint64(b, protocol)
	b = append(b, 0) // disable flags
	for i := 0; i < 8; i++ {
		if i < len(recipients) {
			b = append(b, recipients[i].Bytes()...)
		} else {
			b = append(b, make([]byte, 32)...)
		}
	}
	b = binary.LittleEndian.AppendUint64(b, creator)
	// trailing fields of newer program versions
	return append(b, make([]byte, 64)...)
}

// tokenAccountBytes is a 165-byte SPL token account holding amount
func tokenAccountBytes(mint, owner solana.PublicKey, amount uint64) []byte {
	b := make([]byte, 165)
	copy(b[0:32], mint.Bytes())
	copy(b[32:64], owner.Bytes())
	binary.LittleEndian.PutUint64(b[64:72], amount)
	b[108] = 1 // initialized
	return b
}

// mintBytes is an 82-byte SPL mint
func mintBytes(supply uint64, decimals uint8) []byte {
	b := make([]byte, 82)
	binary.LittleEndian.PutUint64(b[36:44], supply)
	b[44] = decimals
	b[45] = 1
	return b
}
