package filler

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/screa/vanity-tx-miner/pkg/txdraft"
)

// ChainReader is the node access the chain stages need. *ethclient.Client
// satisfies it.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// ChainIDStage fills the chain id.
type ChainIDStage struct{ Chain ChainReader }

func (ChainIDStage) Name() string                { return "chain-id" }
func (ChainIDStage) Needs(d *txdraft.Draft) bool { return d.ChainID == nil }

func (s ChainIDStage) Prepare(ctx context.Context, _ *txdraft.Draft) (Pending, error) {
	id, err := s.Chain.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return PendingFunc(func(d *txdraft.Draft) (*txdraft.Draft, error) {
		out := d.Clone()
		out.ChainID = new(big.Int).Set(id)
		return out, nil
	}), nil
}

// NonceStage fills the sender's pending nonce.
type NonceStage struct{ Chain ChainReader }

func (NonceStage) Name() string                { return "nonce" }
func (NonceStage) Needs(d *txdraft.Draft) bool { return d.Nonce == nil }

func (s NonceStage) Prepare(ctx context.Context, d *txdraft.Draft) (Pending, error) {
	nonce, err := s.Chain.PendingNonceAt(ctx, d.From)
	if err != nil {
		return nil, err
	}
	return PendingFunc(func(d *txdraft.Draft) (*txdraft.Draft, error) {
		out := d.Clone()
		out.SetNonce(nonce)
		return out, nil
	}), nil
}

// FeeStage fills EIP-1559 fees (tip plus twice the base fee as the cap),
// or a legacy gas price on chains without a base fee.
type FeeStage struct{ Chain ChainReader }

func (FeeStage) Name() string { return "fees" }

func (FeeStage) Needs(d *txdraft.Draft) bool {
	return d.GasFeeCap == nil && d.GasPrice == nil
}

func (s FeeStage) Prepare(ctx context.Context, _ *txdraft.Draft) (Pending, error) {
	head, err := s.Chain.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}
	if head.BaseFee == nil {
		price, err := s.Chain.SuggestGasPrice(ctx)
		if err != nil {
			return nil, err
		}
		return PendingFunc(func(d *txdraft.Draft) (*txdraft.Draft, error) {
			out := d.Clone()
			out.GasPrice = new(big.Int).Set(price)
			return out, nil
		}), nil
	}

	tip, err := s.Chain.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}
	baseFee := new(big.Int).Set(head.BaseFee)
	return PendingFunc(func(d *txdraft.Draft) (*txdraft.Draft, error) {
		out := d.Clone()
		if out.GasTipCap == nil {
			out.GasTipCap = new(big.Int).Set(tip)
		}
		// the cap is built on the tip the draft carries, so tip <= cap holds
		out.GasFeeCap = new(big.Int).Add(out.GasTipCap, new(big.Int).Mul(baseFee, big.NewInt(2)))
		return out, nil
	}), nil
}

// GasLimitStage fills the gas limit from an estimate.
type GasLimitStage struct{ Chain ChainReader }

func (GasLimitStage) Name() string                { return "gas-limit" }
func (GasLimitStage) Needs(d *txdraft.Draft) bool { return d.Gas == 0 }

func (s GasLimitStage) Prepare(ctx context.Context, d *txdraft.Draft) (Pending, error) {
	msg := ethereum.CallMsg{
		From:       d.From,
		To:         d.To,
		GasPrice:   d.GasPrice,
		GasFeeCap:  d.GasFeeCap,
		GasTipCap:  d.GasTipCap,
		Data:       d.Data,
		AccessList: d.AccessList,
	}
	if d.Value != nil {
		msg.Value = d.Value.ToBig()
	}
	gas, err := s.Chain.EstimateGas(ctx, msg)
	if err != nil {
		return nil, err
	}
	return PendingFunc(func(d *txdraft.Draft) (*txdraft.Draft, error) {
		out := d.Clone()
		out.Gas = gas
		return out, nil
	}), nil
}

// NewChainPipeline fills chain id, nonce, fees and gas limit from chain,
// then runs the vanity search last so the mined hash covers every field.
func NewChainPipeline(chain ChainReader, vanity *VanityFiller) *Pipeline {
	return NewPipeline(
		ChainIDStage{Chain: chain},
		NonceStage{Chain: chain},
		FeeStage{Chain: chain},
		GasLimitStage{Chain: chain},
		vanity,
	)
}
