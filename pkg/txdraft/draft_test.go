package txdraft

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

// Well-known development key (first anvil/hardhat account).
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testDraft() *Draft {
	to := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	d := &Draft{
		From:      to,
		To:        &to,
		Value:     uint256.NewInt(0),
		Gas:       210000,
		ChainID:   big.NewInt(1),
		GasFeeCap: big.NewInt(120),
		GasTipCap: big.NewInt(1),
	}
	d.SetNonce(123)
	return d
}

func TestKeySignerFromHex(t *testing.T) {
	s, err := KeySignerFromHex("0x" + testKey)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), s.Address())

	_, err = KeySignerFromHex("zz")
	assert.Error(t, err)
}

func TestDraftClone(t *testing.T) {
	d := testDraft()
	d.Data = []byte{1, 2, 3}
	d.AccessList = ethtypes.AccessList{{Address: common.Address{1}, StorageKeys: []common.Hash{{2}}}}

	c := d.Clone()
	c.Value.SetUint64(99)
	c.Gas = 1
	*c.Nonce = 7
	c.ChainID.SetInt64(5)
	c.Data[0] = 9
	c.AccessList[0].StorageKeys[0] = common.Hash{3}

	assert.Equal(t, uint64(0), d.Value.Uint64())
	assert.Equal(t, uint64(210000), d.Gas)
	assert.Equal(t, uint64(123), *d.Nonce)
	assert.Equal(t, int64(1), d.ChainID.Int64())
	assert.Equal(t, byte(1), d.Data[0])
	assert.Equal(t, common.Hash{2}, d.AccessList[0].StorageKeys[0])
}

func TestDraftFieldAccess(t *testing.T) {
	d := testDraft()
	d.Value = nil

	v, err := d.Field(types.ValueField)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	require.NoError(t, d.SetField(types.ValueField, uint256.NewInt(42)))
	assert.Equal(t, uint64(42), d.Value.Uint64())

	require.NoError(t, d.Apply(types.GasFill(21777)))
	g, err := d.Field(types.GasField)
	require.NoError(t, err)
	assert.Equal(t, uint64(21777), g.Uint64())

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	assert.Error(t, d.SetField(types.GasField, huge))
	assert.Error(t, d.SetField(types.ModeAuto, huge))
	_, err = d.Field(types.ModeAuto)
	assert.Error(t, err)
}

func TestDraftToTx(t *testing.T) {
	d := testDraft()
	tx, err := d.ToTx()
	require.NoError(t, err)
	assert.Equal(t, uint8(ethtypes.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(123), tx.Nonce())
	assert.Equal(t, uint64(210000), tx.Gas())

	d.GasFeeCap = nil
	d.GasPrice = big.NewInt(10)
	d.AccessList = ethtypes.AccessList{}
	tx, err = d.ToTx()
	require.NoError(t, err)
	assert.Equal(t, uint8(ethtypes.AccessListTxType), tx.Type())

	d.AccessList = nil
	tx, err = d.ToTx()
	require.NoError(t, err)
	assert.Equal(t, uint8(ethtypes.LegacyTxType), tx.Type())

	d.Nonce = nil
	_, err = d.ToTx()
	assert.ErrorIs(t, err, types.ErrIncompleteDraft)

	d = testDraft()
	d.ChainID = nil
	_, err = d.ToTx()
	assert.ErrorIs(t, err, types.ErrIncompleteDraft)
}

func TestKeccakOracleMatchesTxHash(t *testing.T) {
	s, err := KeySignerFromHex(testKey)
	require.NoError(t, err)
	oracle := NewKeccakOracle()

	for _, d := range []*Draft{testDraft(), func() *Draft {
		d := testDraft()
		d.GasFeeCap = nil
		d.GasPrice = big.NewInt(7)
		return d
	}()} {
		digest, err := oracle.Digest(d, s)
		require.NoError(t, err)

		signed, err := d.Sign(s)
		require.NoError(t, err)
		assert.Equal(t, signed.Hash(), digest)

		again, err := oracle.Digest(d, s)
		require.NoError(t, err)
		assert.Equal(t, digest, again, "digest must be deterministic")
	}
}

func TestKeccakOracleIncompleteDraft(t *testing.T) {
	s, err := KeySignerFromHex(testKey)
	require.NoError(t, err)
	d := testDraft()
	d.Nonce = nil
	_, err = NewKeccakOracle().Digest(d, s)
	assert.ErrorIs(t, err, types.ErrIncompleteDraft)
}
