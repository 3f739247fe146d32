// Package config loads application configuration from file and environment
// and owns global logger setup.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dittoscan/ditto/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Dirs      DirsConfig      `yaml:"dirs" mapstructure:"dirs"`
	SerpAPI   SerpAPIConfig   `yaml:"serpapi" mapstructure:"serpapi"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Labels    LabelsConfig    `yaml:"labels" mapstructure:"labels"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DirsConfig holds the working directories.
type DirsConfig struct {
	// Scan is the watched drop folder the scanner software writes into.
	Scan string `yaml:"scan" mapstructure:"scan"`
	// Organized is where identified images are filed by container.
	Organized string `yaml:"organized" mapstructure:"organized"`
	// Inventory holds inventory.json and inventory.csv.
	Inventory string `yaml:"inventory" mapstructure:"inventory"`
	// Backups receives inventory backups before bulk updates.
	Backups string `yaml:"backups" mapstructure:"backups"`
}

// SerpAPIConfig holds reverse image search settings.
type SerpAPIConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
	// PublicBaseURL is the externally reachable URL (typically an ngrok
	// tunnel) serving the scan directory, so the search engine can fetch
	// the images.
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
}

// PricingConfig holds PriceCharting API settings.
type PricingConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	MaxResults int     `yaml:"max_results" mapstructure:"max_results"`
	RPS        float64 `yaml:"rps" mapstructure:"rps"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	AnalysisModel string `yaml:"analysis_model" mapstructure:"analysis_model"`
	VisionModel   string `yaml:"vision_model" mapstructure:"vision_model"`
}

// ScanConfig configures scanning behavior.
type ScanConfig struct {
	SettleDelayMs          int     `yaml:"settle_delay_ms" mapstructure:"settle_delay_ms"`
	GradeMismatchThreshold float64 `yaml:"grade_mismatch_threshold" mapstructure:"grade_mismatch_threshold"`
}

// LabelsConfig configures ZPL label generation.
type LabelsConfig struct {
	Dir  string `yaml:"dir" mapstructure:"dir"`
	Info string `yaml:"info" mapstructure:"info"`
}

// RetryConfig configures retry behavior for external API calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SettleDelay returns the scan settle delay as a duration.
func (c ScanConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DITTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dirs.scan", "scans")
	v.SetDefault("dirs.organized", "organized")
	v.SetDefault("dirs.inventory", ".")
	v.SetDefault("dirs.backups", "backups")
	v.SetDefault("pricing.max_results", 5)
	v.SetDefault("pricing.rps", 5.0)
	v.SetDefault("anthropic.analysis_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.vision_model", "claude-haiku-4-5-20251001")
	v.SetDefault("scan.settle_delay_ms", 2000)
	v.SetDefault("scan.grade_mismatch_threshold", 0.1)
	v.SetDefault("labels.dir", "zpl_labels")
	v.SetDefault("labels.info", "INTL MOVE 2026")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	return &cfg, nil
}

// Validate checks that the configuration required for the given command mode
// is present. Modes: "scan", "update".
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "scan":
		if c.SerpAPI.Key == "" {
			missing = append(missing, "serpapi.key is required")
		}
		if c.SerpAPI.PublicBaseURL == "" {
			missing = append(missing, "serpapi.public_base_url is required")
		}
		if c.Anthropic.Key == "" {
			missing = append(missing, "anthropic.key is required")
		}
		if c.Pricing.Key == "" {
			missing = append(missing, "pricing.key is required")
		}
	case "update":
		if c.Pricing.Key == "" {
			missing = append(missing, "pricing.key is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Pricing.MaxResults < 1 || c.Pricing.MaxResults > 20 {
		missing = append(missing, "pricing.max_results must be between 1 and 20")
	}
	if c.Scan.GradeMismatchThreshold < 0 {
		missing = append(missing, "scan.grade_mismatch_threshold must be >= 0")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// ToRetryConfig converts the file/env retry settings into the resilience
// package's RetryConfig.
func (c RetryConfig) ToRetryConfig() resilience.RetryConfig {
	return resilience.FromRetryConfig(
		c.MaxAttempts,
		c.InitialBackoffMs,
		c.MaxBackoffMs,
		c.Multiplier,
		c.JitterFraction,
	)
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
