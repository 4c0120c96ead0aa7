package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Challenge        ChallengeConfigs  `toml:"challenge"`
	Farcaster        FarcasterConfigs  `toml:"farcaster"`
	LLM              LLMConfigs        `toml:"llm"`
	Eth              ChainConfig       `toml:"eth"`
	Database         DatabaseConfigs   `toml:"database"`
	Redis            RedisConfigs      `toml:"redis"`
	Kafka            KafkaConfigs      `toml:"kafka"`
	Storage          S3Configs         `toml:"storage"`
	PrometheusServer ServerConfigs     `toml:"prometheus_server"`
	HTTPClient       HTTPClientConfigs `toml:"http_client"`
}

type ChallengeConfigs struct {
	Topics       []string `toml:"topics"`
	RewardAmount string   `toml:"reward_amount"`
	TokenSymbol  string   `toml:"token_symbol"`
	Threshold    int      `toml:"persuasion_threshold"`

	// FallbackAddress receives the reward when the winner's address cannot be
	// resolved.
	FallbackAddress string `toml:"fallback_address"`

	SnapshotDir string `toml:"snapshot_dir"`
	WinnerFile  string `toml:"winner_file"`

	// ReplyKeywords, when set, only lets replies mentioning one of them be
	// evaluated.
	ReplyKeywords []string `toml:"reply_keywords"`

	SendFeedback bool          `toml:"send_feedback"`
	PollInterval time.Duration `toml:"poll_interval"`

	// PostInterval is how often the agent checks whether a new challenge can
	// be posted. A challenge is posted only when none is open and the last
	// winner has been paid. Zero disables automatic posting.
	PostInterval time.Duration `toml:"post_interval"`
}

type FarcasterConfigs struct {
	HubEndpoints []string `toml:"hub_endpoints"`
	APIEndpoints []string `toml:"api_endpoints"`
	APIKey       string   `toml:"api_key"`

	// FID is the agent's own account, replies are looked up under it.
	FID        int64  `toml:"fid"`
	SignerUUID string `toml:"signer_uuid"`
	ChannelID  string `toml:"channel_id"`
}

type LLMConfigs struct {
	// Provider is one of openai, together, anthropic. Endpoints default to
	// the provider's public API when empty.
	Provider    string   `toml:"provider"`
	Endpoints   []string `toml:"endpoints"`
	APIKey      string   `toml:"api_key"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
}

type ChainConfig struct {
	Chain   string   `toml:"chain" json:"chain"`
	ChainID int64    `toml:"chain_id" json:"chain_id"`
	Rpcs    []string `toml:"rpcs" json:"rpcs"`

	// ETH
	UseEip1559 bool `toml:"use_eip_1559" json:"use_eip_1559"` // For gas calculation

	// TokenAddress is empty when the reward is paid in the native coin.
	TokenAddress  string `toml:"token_address" json:"token_address"`
	TokenDecimals int    `toml:"token_decimals" json:"token_decimals"`
	PrivateKey    string `toml:"private_key" json:"-"`

	HealthCheckInterval time.Duration `toml:"health_check_interval" json:"health_check_interval"`
}

type DatabaseConfigs struct {
	// Driver is mysql or sqlite. An empty driver disables the ledger mirror.
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr         string        `toml:"addr"`
	AddressTTL   time.Duration `toml:"address_ttl"`
	AddressCache bool          `toml:"address_cache"`
}

type KafkaConfigs struct {
	Addr     string `toml:"addr"`
	ClientID string `toml:"client_id"`
	Topic    string `toml:"topic"`
}

type S3Configs struct {
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	PublicEndpoint string `toml:"public_endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	SSLDisabled    bool   `toml:"ssl_disabled"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type HTTPClientConfigs struct {
	Timeout time.Duration `toml:"timeout"`
}
