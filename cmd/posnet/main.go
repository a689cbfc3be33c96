package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"posnet/core"
	"posnet/internal/gossip"
	"posnet/internal/node"
	"posnet/pkg/config"
)

func main() {
	rootCmd := runCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		envFlag        string
		listenAddr     string
		bootstrapPeers []string
		walletHex      string
	)

	cmd := &cobra.Command{
		Use:   "posnet",
		Short: "run a posnet proof-of-stake node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFlag, listenAddr, bootstrapPeers, walletHex)
		},
	}

	cmd.Flags().StringVar(&envFlag, "env", "", "environment config overlay, e.g. \"dev\"")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "libp2p listen multiaddr override")
	cmd.Flags().StringSliceVar(&bootstrapPeers, "peer", nil, "bootstrap peer multiaddr, repeatable")
	cmd.Flags().StringVar(&walletHex, "wallet", "", "128-char hex keypair to load instead of generating one")

	return cmd
}

func run(env, listenAddr string, bootstrapPeers []string, walletHex string) error {
	cfg, err := config.Load(env)
	if err != nil {
		log.Warnf("main: config load failed, falling back to defaults: %v", err)
		def := config.Default()
		cfg = &def
	}
	if listenAddr != "" {
		cfg.Network.ListenAddr = listenAddr
	}
	if len(bootstrapPeers) > 0 {
		cfg.Network.BootstrapPeers = bootstrapPeers
	}
	if walletHex != "" {
		cfg.Wallet.KeypairHex = walletHex
	}

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	wallet, err := loadOrCreateWallet(cfg.Wallet.KeypairHex)
	if err != nil {
		return fmt.Errorf("main: wallet: %w", err)
	}
	log.Infof("main: node public key %s", wallet.PublicKey())

	bc := core.NewBlockchainWithParams(wallet, consensusParamsFromConfig(cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	transport, err := gossip.New(ctx, cfg.Network.ListenAddr, cfg.Network.DiscoveryTag, cfg.Network.BootstrapPeers)
	if err != nil {
		return fmt.Errorf("main: gossip transport: %w", err)
	}
	defer transport.Close()
	log.Infof("main: listening as peer %s on %s", transport.PeerID(), cfg.Network.ListenAddr)

	n := node.New(bc, transport, os.Stdin, os.Stdout)
	return n.Run(ctx)
}

func loadOrCreateWallet(keypairHex string) (*core.Wallet, error) {
	if keypairHex != "" {
		return core.FromKeypairHex(keypairHex)
	}
	return core.NewWallet()
}

// consensusParamsFromConfig maps the loaded config's Consensus section onto
// core.ConsensusParams, falling back to the protocol defaults for any field
// left at its zero value (e.g. a config file that omits the section).
func consensusParamsFromConfig(cfg *config.Config) core.ConsensusParams {
	params := core.DefaultConsensusParams()
	if cfg.Consensus.BlockIntervalSeconds != 0 {
		params.BlockIntervalSeconds = int64(cfg.Consensus.BlockIntervalSeconds)
	}
	if cfg.Consensus.RetargetIntervalBlocks != 0 {
		params.RetargetIntervalBlocks = uint64(cfg.Consensus.RetargetIntervalBlocks)
	}
	if cfg.Consensus.MempoolMineThreshold != 0 {
		params.MempoolMineThreshold = cfg.Consensus.MempoolMineThreshold
	}
	return params
}
