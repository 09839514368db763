// Package txdraft holds the unsigned transaction record a search mutates,
// the identity that signs it, and the digest oracle that hashes the signed
// encoding.
package txdraft

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/screa/vanity-tx-miner/pkg/types"
)

// Draft is an unsigned transaction. Nil pointer fields are unset; Gas 0 is
// unset. The kind of transaction built by ToTx follows from which fee
// fields are present.
type Draft struct {
	From       common.Address
	To         *common.Address
	Value      *uint256.Int
	Gas        uint64
	Nonce      *uint64
	ChainID    *big.Int
	GasPrice   *big.Int // legacy and access-list transactions
	GasFeeCap  *big.Int // EIP-1559 max fee per gas
	GasTipCap  *big.Int // EIP-1559 max priority fee per gas
	Data       []byte
	AccessList ethtypes.AccessList
}

// Clone returns a deep copy of the draft.
func (d *Draft) Clone() *Draft {
	c := *d
	if d.To != nil {
		to := *d.To
		c.To = &to
	}
	if d.Value != nil {
		c.Value = d.Value.Clone()
	}
	if d.Nonce != nil {
		n := *d.Nonce
		c.Nonce = &n
	}
	c.ChainID = cloneBig(d.ChainID)
	c.GasPrice = cloneBig(d.GasPrice)
	c.GasFeeCap = cloneBig(d.GasFeeCap)
	c.GasTipCap = cloneBig(d.GasTipCap)
	if d.Data != nil {
		c.Data = common.CopyBytes(d.Data)
	}
	if d.AccessList != nil {
		c.AccessList = make(ethtypes.AccessList, len(d.AccessList))
		for i, tuple := range d.AccessList {
			c.AccessList[i] = ethtypes.AccessTuple{
				Address:     tuple.Address,
				StorageKeys: append([]common.Hash(nil), tuple.StorageKeys...),
			}
		}
	}
	return &c
}

// SetNonce sets the nonce.
func (d *Draft) SetNonce(n uint64) {
	d.Nonce = &n
}

// Field returns the current value of the field a mode varies. An unset
// value reads as zero.
func (d *Draft) Field(mode types.Mode) (*uint256.Int, error) {
	switch mode {
	case types.ValueField:
		if d.Value == nil {
			return new(uint256.Int), nil
		}
		return d.Value.Clone(), nil
	case types.GasField:
		return uint256.NewInt(d.Gas), nil
	default:
		return nil, fmt.Errorf("no draft field for mode %s", mode)
	}
}

// SetField writes v into the field a mode varies. Gas candidates must fit
// in 64 bits.
func (d *Draft) SetField(mode types.Mode, v *uint256.Int) error {
	switch mode {
	case types.ValueField:
		if d.Value == nil {
			d.Value = new(uint256.Int)
		}
		d.Value.Set(v)
	case types.GasField:
		if !v.IsUint64() {
			return fmt.Errorf("gas candidate %s overflows uint64", v.Dec())
		}
		d.Gas = v.Uint64()
	default:
		return fmt.Errorf("no draft field for mode %s", mode)
	}
	return nil
}

// Apply writes a search outcome into the draft.
func (d *Draft) Apply(f types.Fillable) error {
	return d.SetField(f.Mode, &f.Candidate)
}

// ToTx builds the go-ethereum transaction for the draft: dynamic-fee when
// a fee cap is set, access-list when only an access list is set, legacy
// otherwise.
func (d *Draft) ToTx() (*ethtypes.Transaction, error) {
	if d.Nonce == nil {
		return nil, fmt.Errorf("%w: nonce not set", types.ErrIncompleteDraft)
	}
	if d.ChainID == nil {
		return nil, fmt.Errorf("%w: chain id not set", types.ErrIncompleteDraft)
	}
	value := new(big.Int)
	if d.Value != nil {
		value = d.Value.ToBig()
	}

	switch {
	case d.GasFeeCap != nil:
		tip := d.GasTipCap
		if tip == nil {
			tip = new(big.Int)
		}
		return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:    d.ChainID,
			Nonce:      *d.Nonce,
			GasTipCap:  tip,
			GasFeeCap:  d.GasFeeCap,
			Gas:        d.Gas,
			To:         d.To,
			Value:      value,
			Data:       d.Data,
			AccessList: d.AccessList,
		}), nil
	case d.AccessList != nil:
		return ethtypes.NewTx(&ethtypes.AccessListTx{
			ChainID:    d.ChainID,
			Nonce:      *d.Nonce,
			GasPrice:   bigOrZero(d.GasPrice),
			Gas:        d.Gas,
			To:         d.To,
			Value:      value,
			Data:       d.Data,
			AccessList: d.AccessList,
		}), nil
	default:
		return ethtypes.NewTx(&ethtypes.LegacyTx{
			Nonce:    *d.Nonce,
			GasPrice: bigOrZero(d.GasPrice),
			Gas:      d.Gas,
			To:       d.To,
			Value:    value,
			Data:     d.Data,
		}), nil
	}
}

// Sign builds and signs the draft.
func (d *Draft) Sign(id Identity) (*ethtypes.Transaction, error) {
	tx, err := d.ToTx()
	if err != nil {
		return nil, err
	}
	return id.SignTx(tx)
}

func cloneBig(b *big.Int) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).Set(b)
}

func bigOrZero(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return b
}
