package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func offlineConfig() *Config {
	c := NewConfig()
	c.Prefix = "dead"
	c.Key = testKey
	c.To = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	c.Nonce = 0
	c.ChainID = 1
	c.Gas = 21000
	return c
}

func TestNewConfigDefaults(t *testing.T) {
	c := NewConfig()
	assert.Positive(t, c.Workers)
	assert.Equal(t, DefaultGasThreshold, c.GasThreshold)
	assert.Equal(t, uint64(DefaultMargin), c.Margin)
	assert.Equal(t, DefaultMaxRounds, c.MaxRounds)
	assert.Equal(t, int64(-1), c.Nonce)

	mode, err := c.IterationMode()
	require.NoError(t, err)
	assert.Equal(t, types.ModeAuto, mode)
}

func TestValidate(t *testing.T) {
	t.Setenv(KeyEnv, "")
	require.NoError(t, offlineConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"no prefix", func(c *Config) { c.Prefix = "" }, ErrNoPrefixSpecified},
		{"bad prefix", func(c *Config) { c.Prefix = "0xdead" }, types.ErrInvalidPrefix},
		{"no key", func(c *Config) { c.Key = "" }, ErrNoKeySpecified},
		{"no to", func(c *Config) { c.To = "" }, ErrNoToSpecified},
		{"send offline", func(c *Config) { c.Send = true }, ErrSendWithoutRPC},
		{"offline without nonce", func(c *Config) { c.Nonce = -1 }, ErrOfflineDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := offlineConfig()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}

	c := offlineConfig()
	c.Mode = "nonce"
	assert.Error(t, c.Validate())

	c = offlineConfig()
	c.Nonce = -1
	c.RPC = "http://localhost:8545"
	assert.NoError(t, c.Validate())
}

func TestIdentityFromEnv(t *testing.T) {
	t.Setenv(KeyEnv, testKey)
	c := offlineConfig()
	c.Key = ""
	require.NoError(t, c.Validate())

	id, err := c.Identity()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), id.Address())
}

func TestDraft(t *testing.T) {
	c := offlineConfig()
	c.Value = "0x10"
	c.MaxFee = "100"
	c.PriorityFee = "2"
	c.Data = "0xa9059cbb"

	d, err := c.Draft(common.Address{1})
	require.NoError(t, err)
	assert.Equal(t, common.Address{1}, d.From)
	assert.Equal(t, common.HexToAddress(c.To), *d.To)
	assert.Equal(t, uint64(16), d.Value.Uint64())
	assert.Equal(t, uint64(21000), d.Gas)
	assert.Equal(t, uint64(0), *d.Nonce)
	assert.Equal(t, int64(1), d.ChainID.Int64())
	assert.Equal(t, int64(100), d.GasFeeCap.Int64())
	assert.Equal(t, int64(2), d.GasTipCap.Int64())
	assert.Nil(t, d.GasPrice)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, d.Data)

	c.Value = "-1"
	_, err = c.Draft(common.Address{})
	assert.Error(t, err)
}

func TestDraftDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calldata.hex")
	require.NoError(t, os.WriteFile(path, []byte("0x0102\n"), 0o600))

	c := offlineConfig()
	c.DataFile = path
	d, err := c.Draft(common.Address{})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, d.Data)
}
