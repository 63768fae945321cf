package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Cron      CronConfig      `mapstructure:"cron"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"` // "dev" or "prod"
}

// LogConfig defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// RedisConfig describes the shared cache store. All server instances must
// point at the same Redis so the staleness check stays consistent across them.
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
}

// ProviderConfig holds the endpoint and credential for one external source.
// An empty APIKey marks the provider as unconfigured; ResolveAPIKey can fill
// it from Parameter Store in prod.
type ProviderConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	APIKey       string `mapstructure:"api_key"`
	SSMParameter string `mapstructure:"ssm_parameter"`
}

type ProvidersConfig struct {
	Timeout         time.Duration  `mapstructure:"timeout"`
	MetalPriceAPI   ProviderConfig `mapstructure:"metalpriceapi"`
	GoldAPI         ProviderConfig `mapstructure:"goldapi"`
	IslamicAPI      ProviderConfig `mapstructure:"islamicapi"`
	ExchangeRateAPI ProviderConfig `mapstructure:"exchangerateapi"`
}

// CronConfig carries the shared secret checked by the daily-update endpoint.
type CronConfig struct {
	Secret       string `mapstructure:"secret"`
	SSMParameter string `mapstructure:"ssm_parameter"`
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation
	// (e.g., REDIS_HOST, PROVIDERS_METALPRICEAPI_API_KEY, CRON_SECRET)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	if cfg.Providers.Timeout == 0 {
		cfg.Providers.Timeout = 10 * time.Second
	}

	return &cfg
}
