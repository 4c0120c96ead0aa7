package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Default returns the configuration used when the file leaves a field empty.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Challenge: ChallengeConfigs{
			RewardAmount: "2",
			TokenSymbol:  "$S",
			Threshold:    7,
			SnapshotDir:  "challenges",
			WinnerFile:   "winner_info.json",
			SendFeedback: true,
			PollInterval: time.Minute,
		},
		Farcaster: FarcasterConfigs{
			HubEndpoints: []string{"https://hub-api.neynar.com"},
			APIEndpoints: []string{"https://api.neynar.com"},
		},
		LLM: LLMConfigs{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0.2,
		},
		Eth: ChainConfig{
			Chain:               "sonic",
			ChainID:             146,
			TokenDecimals:       18,
			HealthCheckInterval: 5 * time.Minute,
		},
		Redis: RedisConfigs{
			AddressTTL: 24 * time.Hour,
		},
		Kafka: KafkaConfigs{
			ClientID: "persuade-agent",
			Topic:    "persuade_challenge",
		},
		PrometheusServer: ServerConfigs{Port: "9090"},
		HTTPClient:       HTTPClientConfigs{Timeout: 30 * time.Second},
	}
}

// Load reads the TOML file on top of Default and then applies environment
// overrides. A missing file is not an error, the environment alone may be
// enough to run.
func Load(filename string) (Configs, error) {
	cfg := Default()

	if filename != "" {
		if _, err := toml.DecodeFile(filename, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Configs{}, fmt.Errorf("failed to decode config %s: %w", filename, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Configs{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Configs) {
	if v := os.Getenv("ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NEYNAR_API_KEY"); v != "" {
		cfg.Farcaster.APIKey = v
	}
	if v := os.Getenv("FARCASTER_FID"); v != "" {
		if fid, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Farcaster.FID = fid
		}
	}
	if v := os.Getenv("FARCASTER_SIGNER_UUID"); v != "" {
		cfg.Farcaster.SignerUUID = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("ETH_PRIVATE_KEY"); v != "" {
		cfg.Eth.PrivateKey = strings.TrimPrefix(v, "0x")
	}
	if v := os.Getenv("ETH_RPCS"); v != "" {
		cfg.Eth.Rpcs = strings.Split(v, ",")
	}
	if v := os.Getenv("FALLBACK_ADDRESS"); v != "" {
		cfg.Challenge.FallbackAddress = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_ADDR"); v != "" {
		cfg.Kafka.Addr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

func (c Configs) Validate() error {
	if c.Challenge.Threshold < 1 || c.Challenge.Threshold > 10 {
		return fmt.Errorf("persuasion_threshold must be in [1, 10], got %d", c.Challenge.Threshold)
	}

	if c.Challenge.SnapshotDir == "" {
		return errors.New("snapshot_dir must not be empty")
	}

	if c.Challenge.WinnerFile == "" {
		return errors.New("winner_file must not be empty")
	}

	switch c.LLM.Provider {
	case "openai", "together", "anthropic":
	default:
		return fmt.Errorf("unsupported llm provider %s", c.LLM.Provider)
	}

	switch c.Database.Driver {
	case "", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %s", c.Database.Driver)
	}

	return nil
}
