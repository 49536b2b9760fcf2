package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureChain(t *testing.T) {
	db := setupTestDB(t)
	service := NewChainService(db)

	chain, err := service.EnsureChain("mainnet", "https://api.hiro.so")
	require.NoError(t, err)
	assert.Equal(t, "stacks-mainnet", chain.Name)
	assert.True(t, chain.IsMainnet())

	again, err := service.EnsureChain("mainnet", "https://stacks-node.example")
	require.NoError(t, err)
	assert.Equal(t, chain.ID, again.ID)
	assert.Equal(t, "https://stacks-node.example", again.APIURL)

	stored, err := service.GetChain(chain.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://stacks-node.example", stored.APIURL)

	_, err = service.EnsureChain("testnet", "https://api.testnet.hiro.so")
	require.NoError(t, err)

	chains, err := service.ListChains()
	require.NoError(t, err)
	assert.Len(t, chains, 2)
}
