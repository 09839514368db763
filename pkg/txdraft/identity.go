package txdraft

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Identity signs transactions. Implementations must be safe for concurrent
// use and must sign deterministically, otherwise a mined hash will not be
// the hash of the submitted transaction.
type Identity interface {
	Address() common.Address
	SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error)
}

// KeySigner signs with an in-memory secp256k1 key (RFC 6979 nonces).
type KeySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeySigner wraps a private key.
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// KeySignerFromHex parses a hex private key (with or without 0x).
func KeySignerFromHex(hexKey string) (*KeySigner, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	key, err := crypto.HexToECDSA(h)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewKeySigner(key), nil
}

// Address returns the signer's address.
func (s *KeySigner) Address() common.Address {
	return s.addr
}

// SignTx signs tx with the latest signer for its chain id.
func (s *KeySigner) SignTx(tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
	return ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(tx.ChainId()), s.key)
}
