package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwapCommand(t *testing.T) {
	req, err := ParseSwapCommand("swap 10 USDC to ETH")
	require.NoError(t, err)
	assert.Equal(t, "10", req.Amount)
	assert.Equal(t, "USDC", req.SourceAsset)
	assert.Equal(t, "ETH", req.DestAsset)

	req, err = ParseSwapCommand("1.5 eth to usdt")
	require.NoError(t, err)
	assert.Equal(t, "1.5", req.Amount)
	assert.Equal(t, "ETH", req.SourceAsset)
	assert.Equal(t, "USDT", req.DestAsset)

	_, err = ParseSwapCommand("swap USDC to ETH")
	assert.Error(t, err)

	_, err = ParseSwapCommand("")
	assert.Error(t, err)
}

func TestValidateSwapRequest(t *testing.T) {
	req, err := ParseSwapCommand("swap 10 USDC to ETH")
	require.NoError(t, err)
	assert.NoError(t, ValidateSwapRequest(req))

	req.DestAsset = req.SourceAsset
	assert.Error(t, ValidateSwapRequest(req))
}

func TestNormalizeAssetSymbol(t *testing.T) {
	assert.Equal(t, "ETH", NormalizeAssetSymbol("weth"))
	assert.Equal(t, "BTC", NormalizeAssetSymbol(" WBTC "))
	assert.Equal(t, "USDC", NormalizeAssetSymbol("usdc"))
}
