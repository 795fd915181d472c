package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	AES            AESConfig            `mapstructure:"aes"`
	Cipher         CipherConfig         `mapstructure:"cipher"`
	Log            LogConfig            `mapstructure:"log"`
	TradingEngine  TradingEngineConfig  `mapstructure:"trading_engine"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

// StorageConfig selects the ledger backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // postgres, memory
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for gateway credentials
}

// CipherConfig holds the secrets the deterministic account-detail cipher derives its key and IV from.
type CipherConfig struct {
	KeySecret string `mapstructure:"key_secret"`
	IVSecret  string `mapstructure:"iv_secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type TradingEngineConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	ManagerLogin    string        `mapstructure:"manager_login"`
	ManagerPassword string        `mapstructure:"manager_password"`
	Group           string        `mapstructure:"group"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type GatewayConfig struct {
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

type ReconciliationConfig struct {
	AutoApproveLimit int64         `mapstructure:"auto_approve_limit"` // minor units; 0 disables auto-approve
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	SweepMinAge      time.Duration `mapstructure:"sweep_min_age"`
	SweepBatchSize   int           `mapstructure:"sweep_batch_size"`
	Workers          int           `mapstructure:"workers"`
	WebhookDedupeTTL time.Duration `mapstructure:"webhook_dedupe_ttl"`
	IDLength         int           `mapstructure:"id_length"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: FUNDFLOW_.
// Nested keys use underscore: FUNDFLOW_DATABASE_HOST, FUNDFLOW_TRADING_ENGINE_BASE_URL, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "fundflow")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "12h")
	v.SetDefault("jwt.issuer", "fundflow")
	v.SetDefault("aes.key", "")
	v.SetDefault("cipher.key_secret", "")
	v.SetDefault("cipher.iv_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("trading_engine.base_url", "http://localhost:9000")
	v.SetDefault("trading_engine.manager_login", "")
	v.SetDefault("trading_engine.manager_password", "")
	v.SetDefault("trading_engine.group", "real")
	v.SetDefault("trading_engine.timeout", "20s")
	v.SetDefault("gateway.http_timeout", "30s")
	v.SetDefault("gateway.token_ttl", "50m")
	v.SetDefault("reconciliation.auto_approve_limit", 0)
	v.SetDefault("reconciliation.sweep_interval", "1m")
	v.SetDefault("reconciliation.sweep_min_age", "5m")
	v.SetDefault("reconciliation.sweep_batch_size", 100)
	v.SetDefault("reconciliation.workers", 4)
	v.SetDefault("reconciliation.webhook_dedupe_ttl", "24h")
	v.SetDefault("reconciliation.id_length", 12)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// FUNDFLOW_DATABASE_HOST -> database.host
	v.SetEnvPrefix("FUNDFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, env vars can carry everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("storage.driver must be postgres or memory, got %q", c.Storage.Driver)
	}
	if c.Reconciliation.IDLength < 8 {
		return fmt.Errorf("reconciliation.id_length must be at least 8")
	}
	if c.Reconciliation.Workers < 1 {
		c.Reconciliation.Workers = 1
	}
	return nil
}
