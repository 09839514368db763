package crypto

import (
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

const (
	// DigestLen is the keccak-256 output size in bytes.
	DigestLen = 32

	// MaxPrefixLen is the longest prefix a digest can carry, in hex characters.
	MaxPrefixLen = DigestLen * 2
)

const hextable = "0123456789abcdef"

// NewKeccak returns a legacy keccak-256 hasher (the Ethereum variant).
func NewKeccak() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// KeccakInto hashes data with the provided hasher and writes the 32-byte
// digest into out. Reuses the hasher to avoid allocations; out must be at
// least DigestLen bytes.
func KeccakInto(hasher hash.Hash, data, out []byte) {
	hasher.Reset()
	hasher.Write(data)
	hasher.Sum(out[:0])
}

// DecodePrefix validates a hex prefix and returns it in lower case together
// with one byte per nibble, ready for HasHexPrefix. A leading "0x" is not
// stripped: it is rejected like any other non-hex character.
func DecodePrefix(prefix string) (string, []byte, error) {
	if prefix == "" || len(prefix) > MaxPrefixLen {
		return "", nil, fmt.Errorf("%w: %q", types.ErrInvalidPrefix, prefix)
	}
	lower := strings.ToLower(prefix)
	nibbles := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		n := strings.IndexByte(hextable, lower[i])
		if n < 0 {
			return "", nil, fmt.Errorf("%w: %q has non-hex character %q", types.ErrInvalidPrefix, prefix, prefix[i])
		}
		nibbles[i] = byte(n)
	}
	return lower, nibbles, nil
}

// HasHexPrefix reports whether the lower-case hex rendering of digest
// starts with the given nibbles. It compares nibbles in place and never
// allocates.
func HasHexPrefix(digest, nibbles []byte) bool {
	if len(nibbles) > len(digest)*2 {
		return false
	}
	for i, want := range nibbles {
		b := digest[i/2]
		if i%2 == 0 {
			b >>= 4
		} else {
			b &= 0x0f
		}
		if b != want {
			return false
		}
	}
	return true
}

// HexBytes decodes a hex string (with or without 0x). An empty string
// decodes to nil.
func HexBytes(hexStr string) ([]byte, error) {
	h := strings.TrimSpace(hexStr)
	if len(h) >= 2 && (h[0:2] == "0x" || h[0:2] == "0X") {
		h = h[2:]
	}
	if h == "" {
		return nil, nil
	}
	if len(h)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	return hex.DecodeString(h)
}
