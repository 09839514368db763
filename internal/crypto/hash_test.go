package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

func TestDecodePrefix(t *testing.T) {
	lower, nibbles, err := DecodePrefix("DeAd")
	require.NoError(t, err)
	assert.Equal(t, "dead", lower)
	assert.Equal(t, []byte{0xd, 0xe, 0xa, 0xd}, nibbles)
}

func TestDecodePrefixInvalid(t *testing.T) {
	long := make([]byte, MaxPrefixLen+1)
	for i := range long {
		long[i] = 'a'
	}
	for _, p := range []string{"", "g", "0x", "0xde", "de ad", "dé", string(long)} {
		t.Run(p, func(t *testing.T) {
			_, _, err := DecodePrefix(p)
			assert.ErrorIs(t, err, types.ErrInvalidPrefix)
		})
	}
}

func TestHasHexPrefix(t *testing.T) {
	digest, _ := hex.DecodeString("deadbeef00112233")
	tests := []struct {
		prefix string
		want   bool
	}{
		{"d", true},
		{"de", true},
		{"dea", true},
		{"deadbeef", true},
		{"deadbeef0", true},
		{"e", false},
		{"deadbeee", false},
		{"deadbeef00112233", true},
		{"deadbeef001122330", false},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			_, nibbles, err := DecodePrefix(tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, HasHexPrefix(digest, nibbles))
		})
	}
}

func TestKeccakInto(t *testing.T) {
	var out [DigestLen]byte
	h := NewKeccak()
	KeccakInto(h, []byte("abc"), out[:])
	assert.Equal(t, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45", hex.EncodeToString(out[:]))

	// empty input, hasher reused
	KeccakInto(h, nil, out[:])
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", hex.EncodeToString(out[:]))
}

func TestHexBytes(t *testing.T) {
	b, err := HexBytes(" 0x0a0B ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b}, b)

	b, err = HexBytes("0x")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = HexBytes("abc")
	assert.Error(t, err)
}
