package constants

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestSymbol(t *testing.T) {
	assert.Equal(t, "SOL", Symbol(WrappedSOLMint))
	assert.Equal(t, "2fWk..pump", Symbol(solana.MustPublicKeyFromBase58("2fWkVf417bfxEgUemymkYNagXVitnmNxvq7dhUwnpump")))
}
