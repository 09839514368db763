package txdraft

import (
	"fmt"
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/screa/vanity-tx-miner/internal/crypto"
)

// Oracle computes the digest of a draft once signed by id. It must be
// deterministic and must match the hash of the transaction as eventually
// submitted.
type Oracle interface {
	Digest(d *Draft, id Identity) (common.Hash, error)
}

// KeccakOracle hashes the EIP-2718 binary encoding of the signed draft,
// which is the Ethereum transaction hash. Safe for concurrent use; keccak
// states are pooled across calls.
type KeccakOracle struct {
	hashers sync.Pool
}

// NewKeccakOracle creates a keccak digest oracle.
func NewKeccakOracle() *KeccakOracle {
	return &KeccakOracle{
		hashers: sync.Pool{New: func() any { return crypto.NewKeccak() }},
	}
}

// Digest signs and hashes the draft.
func (o *KeccakOracle) Digest(d *Draft, id Identity) (common.Hash, error) {
	var out common.Hash
	signed, err := d.Sign(id)
	if err != nil {
		return out, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return out, fmt.Errorf("encode transaction: %w", err)
	}
	h := o.hashers.Get().(hash.Hash)
	crypto.KeccakInto(h, raw, out[:])
	o.hashers.Put(h)
	return out, nil
}
