// Package config provides a reusable loader for the node's configuration
// file and environment variable overrides.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"posnet/pkg/utils"
)

// Config is the unified configuration for a posnet node. It mirrors the
// structure of the YAML files under cmd/posnet/config.
type Config struct {
	Network struct {
		ListenAddr     string   `mapstructure:"listen_addr" json:"listen_addr"`
		DiscoveryTag   string   `mapstructure:"discovery_tag" json:"discovery_tag"`
		BootstrapPeers []string `mapstructure:"bootstrap_peers" json:"bootstrap_peers"`
	} `mapstructure:"network" json:"network"`

	Consensus struct {
		BlockIntervalSeconds    int `mapstructure:"block_interval_seconds" json:"block_interval_seconds"`
		RetargetIntervalBlocks  int `mapstructure:"retarget_interval_blocks" json:"retarget_interval_blocks"`
		MempoolMineThreshold    int `mapstructure:"mempool_mine_threshold" json:"mempool_mine_threshold"`
	} `mapstructure:"consensus" json:"consensus"`

	Wallet struct {
		KeypairHex string `mapstructure:"keypair_hex" json:"keypair_hex"`
	} `mapstructure:"wallet" json:"wallet"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads the default configuration file plus an optional environment
// specific override, merges any matching environment variables, and stores
// the result in AppConfig.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/posnet/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the POSNET_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("POSNET_ENV", ""))
}

// Default returns hard-coded defaults used when no config file is present,
// e.g. in tests or single-binary demos.
func Default() Config {
	var c Config
	c.Network.ListenAddr = "/ip4/0.0.0.0/tcp/0"
	c.Network.DiscoveryTag = "posnet-mdns"
	c.Consensus.BlockIntervalSeconds = 30
	c.Consensus.RetargetIntervalBlocks = 2
	c.Consensus.MempoolMineThreshold = 2
	c.Logging.Level = "info"
	return c
}
