package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"

	"github.com/screa/vanity-tx-miner/internal/config"
	logpkg "github.com/screa/vanity-tx-miner/internal/logger"
	"github.com/screa/vanity-tx-miner/pkg/filler"
	minerpkg "github.com/screa/vanity-tx-miner/pkg/miner"
	"github.com/screa/vanity-tx-miner/pkg/txdraft"
)

var (
	cfg    = config.NewConfig()
	logger *logpkg.Logger
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "vanity-tx-miner",
		Short: "Mine Ethereum transactions whose hash starts with a hex prefix",
		Long: `A command line utility for mining vanity transaction hashes.
It varies the gas limit (short prefixes) or the value (long prefixes) of a
signed transaction until its keccak256 hash starts with the given prefix.`,
		Run: runMiner,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.Prefix, "prefix", "p", "", "Transaction hash prefix to match (hex, without 0x) (required)")
	flags.IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of worker goroutines")
	flags.StringVarP(&cfg.Mode, "mode", "m", cfg.Mode, "Field to vary: auto, value or gas")
	flags.IntVar(&cfg.GasThreshold, "gas-threshold", cfg.GasThreshold, "Longest prefix that varies gas in auto mode")
	flags.Uint64Var(&cfg.Margin, "margin", cfg.Margin, "Multiplier on the estimated iteration budget")
	flags.IntVar(&cfg.MaxRounds, "rounds", cfg.MaxRounds, "Search rounds; each extra round doubles the range")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	flags.StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")
	flags.IntVarP(&cfg.LogInterval, "log-interval", "i", cfg.LogInterval, "Logging interval in seconds")

	flags.StringVarP(&cfg.Key, "key", "k", "", "Private key (hex); defaults to $"+config.KeyEnv)
	flags.StringVarP(&cfg.To, "to", "t", "", "Recipient address (required)")
	flags.StringVar(&cfg.Value, "value", "", "Value in wei")
	flags.Uint64Var(&cfg.Gas, "gas", 0, "Gas limit")
	flags.Int64Var(&cfg.Nonce, "nonce", -1, "Nonce")
	flags.Int64Var(&cfg.ChainID, "chain-id", 0, "Chain id")
	flags.StringVar(&cfg.GasPrice, "gas-price", "", "Legacy gas price in wei")
	flags.StringVar(&cfg.MaxFee, "max-fee", "", "EIP-1559 max fee per gas in wei")
	flags.StringVar(&cfg.PriorityFee, "priority-fee", "", "EIP-1559 max priority fee per gas in wei")
	flags.StringVarP(&cfg.Data, "data", "d", "", "Calldata (hex)")
	flags.StringVarP(&cfg.DataFile, "data-file", "F", "", "File containing calldata (hex)")

	flags.StringVar(&cfg.RPC, "rpc", "", "Node RPC URL used to fill chain id, nonce, fees and gas")
	flags.BoolVar(&cfg.Send, "send", false, "Submit the mined transaction through --rpc")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMiner(cmd *cobra.Command, args []string) {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	setupLogging()

	// Stop on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mine(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Println("Mining stopped by user.")
			return
		}
		logger.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func mine(ctx context.Context) error {
	id, err := cfg.Identity()
	if err != nil {
		return err
	}
	draft, err := cfg.Draft(id.Address())
	if err != nil {
		return err
	}

	logger.Printf("Starting vanity tx miner with %d workers...", cfg.Workers)
	logger.Printf("Target: %s", cfg.GetTargetDescription())
	logger.Printf("Sender: %s", id.Address().Hex())

	miner := minerpkg.NewMiner(cfg, txdraft.NewKeccakOracle(), logger.Sink())
	vanity, err := filler.NewVanityFiller(miner, id, cfg.Prefix)
	if err != nil {
		return err
	}

	var client *ethclient.Client
	var pipeline *filler.Pipeline
	if cfg.RPC != "" {
		client, err = ethclient.DialContext(ctx, cfg.RPC)
		if err != nil {
			return fmt.Errorf("dial %s: %w", cfg.RPC, err)
		}
		defer client.Close()
		pipeline = filler.NewChainPipeline(client, vanity)
	} else {
		pipeline = filler.NewPipeline(vanity)
	}

	mined, err := pipeline.Fill(ctx, draft)
	if err != nil {
		return err
	}
	tx, err := mined.Sign(id)
	if err != nil {
		return err
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return err
	}

	logger.Printf("🎉 Found match!")
	logger.Printf("Tx hash: %s", tx.Hash().Hex())
	logger.Printf("Value: %s wei", tx.Value())
	logger.Printf("Gas: %d", tx.Gas())
	logger.Printf("Raw tx: %s", hexutil.Encode(raw))

	if cfg.Send {
		if err := client.SendTransaction(ctx, tx); err != nil {
			return fmt.Errorf("send transaction: %w", err)
		}
		logger.Printf("Sent transaction: %s", tx.Hash().Hex())
	}
	return nil
}

func setupLogging() {
	if cfg.LogFile != "" {
		// Log to file
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		logger = logpkg.NewWriter(file)
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		// Log to stdout
		logger = logpkg.New()
		logger.SetFlags(log.LstdFlags)
	}
}
