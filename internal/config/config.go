package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/screa/vanity-tx-miner/internal/crypto"
	"github.com/screa/vanity-tx-miner/pkg/txdraft"
	"github.com/screa/vanity-tx-miner/pkg/types"
)

// Defaults
const (
	DefaultGasThreshold = 4 // prefixes up to this many hex chars vary the gas limit
	DefaultMargin       = 2 // multiplier on the estimated budget
	DefaultMaxRounds    = 1 // no widening: report exhaustion after the first domain
	DefaultLogInterval  = 5 // seconds

	// KeyEnv is read when --key is not given.
	KeyEnv = "PRIVATE_KEY"
)

// Errors
var (
	ErrNoPrefixSpecified = errors.New("must specify --prefix")
	ErrNoKeySpecified    = errors.New("must specify --key or set " + KeyEnv)
	ErrNoToSpecified     = errors.New("must specify --to")
	ErrSendWithoutRPC    = errors.New("--send requires --rpc")
	ErrOfflineDraft      = errors.New("without --rpc, --nonce, --chain-id and --gas are required")
)

// Config holds the application configuration
type Config struct {
	// Search
	Workers      int
	Prefix       string
	Mode         string // auto, value or gas
	GasThreshold int
	Margin       uint64
	MaxRounds    int

	// Logging
	Verbose     bool
	LogFile     string
	LogInterval int // Logging interval in seconds

	// Transaction
	Key         string
	To          string
	Value       string // wei, decimal or 0x-hex
	Gas         uint64
	Nonce       int64 // -1 = unset
	ChainID     int64 // 0 = unset
	GasPrice    string
	MaxFee      string
	PriorityFee string
	Data        string
	DataFile    string

	// Chain access
	RPC  string
	Send bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		Mode:         "auto",
		GasThreshold: DefaultGasThreshold,
		Margin:       DefaultMargin,
		MaxRounds:    DefaultMaxRounds,
		LogInterval:  DefaultLogInterval,
		Nonce:        -1,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return ErrNoPrefixSpecified
	}
	if _, _, err := crypto.DecodePrefix(c.Prefix); err != nil {
		return err
	}
	if _, err := c.IterationMode(); err != nil {
		return err
	}
	if c.Key == "" && os.Getenv(KeyEnv) == "" {
		return ErrNoKeySpecified
	}
	if c.To == "" {
		return ErrNoToSpecified
	}
	if !common.IsHexAddress(c.To) {
		return fmt.Errorf("invalid --to address %q", c.To)
	}
	if c.Send && c.RPC == "" {
		return ErrSendWithoutRPC
	}
	if c.RPC == "" && (c.Nonce < 0 || c.ChainID <= 0 || c.Gas == 0) {
		return ErrOfflineDraft
	}
	if c.Margin == 0 {
		return errors.New("--margin must be at least 1")
	}
	if c.MaxRounds < 1 {
		return errors.New("--rounds must be at least 1")
	}
	return nil
}

// IterationMode returns the parsed --mode flag. ModeAuto means no override.
func (c *Config) IterationMode() (types.Mode, error) {
	return types.ParseMode(c.Mode)
}

// GetTargetDescription returns a human-readable description of the target
func (c *Config) GetTargetDescription() string {
	return "tx hash prefix: 0x" + strings.ToLower(c.Prefix)
}

// Identity returns the signer for --key, falling back to $PRIVATE_KEY.
func (c *Config) Identity() (*txdraft.KeySigner, error) {
	key := c.Key
	if key == "" {
		key = os.Getenv(KeyEnv)
	}
	if key == "" {
		return nil, ErrNoKeySpecified
	}
	return txdraft.KeySignerFromHex(key)
}

// GetData returns the calldata to use for the transaction
func (c *Config) GetData() ([]byte, error) {
	if c.DataFile != "" {
		return readDataFromFile(c.DataFile)
	}
	return crypto.HexBytes(c.Data)
}

// Draft builds the transaction draft described by the flags. Fields left
// unset are expected to be filled from --rpc.
func (c *Config) Draft(from common.Address) (*txdraft.Draft, error) {
	to := common.HexToAddress(c.To)
	d := &txdraft.Draft{
		From: from,
		To:   &to,
		Gas:  c.Gas,
	}

	value, err := parseAmount("value", c.Value)
	if err != nil {
		return nil, err
	}
	if value != nil {
		v, overflow := uint256.FromBig(value)
		if overflow {
			return nil, fmt.Errorf("--value %s overflows 256 bits", c.Value)
		}
		d.Value = v
	}

	if c.Nonce >= 0 {
		d.SetNonce(uint64(c.Nonce))
	}
	if c.ChainID > 0 {
		d.ChainID = big.NewInt(c.ChainID)
	}
	if d.GasPrice, err = parseAmount("gas-price", c.GasPrice); err != nil {
		return nil, err
	}
	if d.GasFeeCap, err = parseAmount("max-fee", c.MaxFee); err != nil {
		return nil, err
	}
	if d.GasTipCap, err = parseAmount("priority-fee", c.PriorityFee); err != nil {
		return nil, err
	}
	if d.Data, err = c.GetData(); err != nil {
		return nil, fmt.Errorf("invalid calldata: %w", err)
	}
	return d, nil
}

// parseAmount parses a decimal or 0x-hex integer. Empty means unset.
func parseAmount(name, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid --%s %q", name, s)
	}
	return v, nil
}

// readDataFromFile reads hex calldata from a file
func readDataFromFile(filename string) ([]byte, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return crypto.HexBytes(string(content))
}
