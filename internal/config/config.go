// Package config loads settings from config.yaml and TAGIHAN_* environment
// variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "TAGIHAN"

// Inquiry modes.
const (
	ModeProviders = "providers"
	ModeSimulate  = "simulate"
)

type Config struct {
	Server    ServerConfig              `yaml:"server" mapstructure:"server"`
	Log       LogConfig                 `yaml:"log" mapstructure:"log"`
	Inquiry   InquiryConfig             `yaml:"inquiry" mapstructure:"inquiry"`
	Providers map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
	Browser   BrowserConfig             `yaml:"browser" mapstructure:"browser"`
	Ledger    LedgerConfig              `yaml:"ledger" mapstructure:"ledger"`
	Store     StoreConfig               `yaml:"store" mapstructure:"store"`
	Probe     ProbeConfig               `yaml:"probe" mapstructure:"probe"`
	Alert     AlertConfig               `yaml:"alert" mapstructure:"alert"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Port               int `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// InquiryConfig selects how inquiries are answered and in which order
// providers are tried.
type InquiryConfig struct {
	Mode  string   `yaml:"mode" mapstructure:"mode"`
	Order []string `yaml:"order" mapstructure:"order"`
}

// BrowserConfig configures page automation.
type BrowserConfig struct {
	ExecPath string `yaml:"exec_path" mapstructure:"exec_path"`
	Headless bool   `yaml:"headless" mapstructure:"headless"`
}

// LedgerConfig toggles the operator-maintained customer ledger.
type LedgerConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// StoreConfig configures ledger storage.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DSN         string `yaml:"dsn" mapstructure:"dsn"`
	AutoMigrate bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

// ProbeConfig configures the periodic provider reachability check.
type ProbeConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
}

// AlertConfig configures where probe failures are reported.
type AlertConfig struct {
	WebhookURL  string `yaml:"webhook_url" mapstructure:"webhook_url"`
	WebhookType string `yaml:"webhook_type" mapstructure:"webhook_type"`
	MinFailures int    `yaml:"min_failures" mapstructure:"min_failures"`
	SendgridKey string `yaml:"sendgrid_key" mapstructure:"sendgrid_key"`
	EmailFrom   string `yaml:"email_from" mapstructure:"email_from"`
	EmailTo     string `yaml:"email_to" mapstructure:"email_to"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path; an empty path looks
// for config.yaml in the working directory.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.request_timeout_secs", 150)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("inquiry.mode", ModeProviders)
	v.SetDefault("inquiry.order", DefaultOrder)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("ledger.enabled", false)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.auto_migrate", true)
	v.SetDefault("probe.enabled", false)
	v.SetDefault("probe.schedule", "@every 10m")
	v.SetDefault("alert.webhook_url", "")
	v.SetDefault("alert.webhook_type", "")
	v.SetDefault("alert.min_failures", 1)
	v.SetDefault("alert.sendgrid_key", "")
	v.SetDefault("alert.email_from", "")
	v.SetDefault("alert.email_to", "")
	setProviderDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if override, ok := providersFromEnv(); ok {
		cfg.Providers = make(map[string]ProviderConfig, len(override))
		order := make([]string, 0, len(override))
		for _, p := range override {
			cfg.Providers[p.Key] = p
			order = append(order, p.Key)
		}
		cfg.Inquiry.Order = order
	}
	for key, p := range cfg.Providers {
		p.Key = key
		cfg.Providers[key] = p
	}

	return &cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail later at startup.
func (c *Config) Validate() error {
	switch c.Inquiry.Mode {
	case ModeProviders, ModeSimulate:
	default:
		return eris.Errorf("config: unknown inquiry.mode %q", c.Inquiry.Mode)
	}
	for _, key := range c.Inquiry.Order {
		if _, ok := c.Providers[key]; !ok {
			return eris.Errorf("config: inquiry.order names unknown provider %q", key)
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
