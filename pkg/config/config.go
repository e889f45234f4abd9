package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	API        APIConfig        `mapstructure:"api" validate:"required"`
	RPC        RPCConfig        `mapstructure:"rpc" validate:"required"`
	Bot        BotConfig        `mapstructure:"bot" validate:"required"`
	History    HistoryConfig    `mapstructure:"history"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// APIConfig contains Odyssey API client settings
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Origin         string        `mapstructure:"origin"`
}

// RPCConfig contains Sonic RPC client settings
type RPCConfig struct {
	URL               string        `mapstructure:"url" validate:"required,url"`
	RequestsPerSecond int           `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int           `mapstructure:"burst" validate:"gt=0"`
	ConfirmTimeout    time.Duration `mapstructure:"confirm_timeout"`
}

// BotConfig contains workflow settings
type BotConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file" validate:"required"`
	MaxRetries      int           `mapstructure:"max_retries" validate:"gt=0"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	ActionDelay     time.Duration `mapstructure:"action_delay"`
	Schedule        string        `mapstructure:"schedule"`
}

// HistoryConfig contains run-history storage settings
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MonitoringConfig contains the daemon-mode health/metrics listener settings
type MonitoringConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// API defaults
	viper.SetDefault("api.base_url", "https://odyssey-api.sonic.game")
	viper.SetDefault("api.request_timeout", "15s")
	viper.SetDefault("api.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36")
	viper.SetDefault("api.origin", "https://odyssey.sonic.game")

	// RPC defaults
	viper.SetDefault("rpc.url", "https://devnet.sonic.game")
	viper.SetDefault("rpc.requests_per_second", 2)
	viper.SetDefault("rpc.burst", 5)
	viper.SetDefault("rpc.confirm_timeout", "60s")

	// Bot defaults
	viper.SetDefault("bot.credentials_file", "accounts.txt")
	viper.SetDefault("bot.max_retries", 3)
	viper.SetDefault("bot.retry_delay", "2s")
	viper.SetDefault("bot.action_delay", "4s")
	viper.SetDefault("bot.schedule", "5 0 * * *")

	// History defaults
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", "odyssey-bot.db")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", false)
	viper.SetDefault("monitoring.listen_addr", "127.0.0.1:9290")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output_path", "stdout")
}
