// Package config loads the process configuration from a YAML file with
// environment-variable precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the CLI needs to run one extraction job.
type Config struct {
	// Provider
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"OPENAI_API_KEY"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`

	// Invocation protocol
	MaxRetries    int           `mapstructure:"max_retries"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`

	// Job
	ParallelRequests int      `mapstructure:"parallel_requests"`
	InputModes       []string `mapstructure:"input_modes"`
	TrackCost        bool     `mapstructure:"track_cost"`

	// Document conversion
	Pdftoppm    string `mapstructure:"pdftoppm"`
	RasterDPI   int    `mapstructure:"raster_dpi"`
	MaxPages    int    `mapstructure:"max_pages"`
	MaxImageDim int    `mapstructure:"max_image_dim"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads configPath (YAML) and overlays environment variables.
// A missing file is fine when the environment carries what is needed.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("base_url", "https://api.openai.com/v1")
	v.SetDefault("temperature", 0.0)
	v.SetDefault("timeout", "45s")
	v.SetDefault("max_retries", 3)
	v.SetDefault("backoff_base", "500ms")
	v.SetDefault("backoff_factor", 2.0)
	v.SetDefault("parallel_requests", 3)
	v.SetDefault("input_modes", []string{"file"})
	v.SetDefault("track_cost", false)
	v.SetDefault("pdftoppm", "pdftoppm")
	v.SetDefault("raster_dpi", 200)
	v.SetDefault("max_pages", 0)
	v.SetDefault("max_image_dim", 2048)
	v.SetDefault("log_level", "info")

	v.AutomaticEnv()
	_ = v.BindEnv("OPENAI_API_KEY")
	_ = v.BindEnv("model", "OPENAI_MODEL")
	_ = v.BindEnv("base_url", "OPENAI_BASE_URL")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
