package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// BoardConfig configures the board client. Variables are prefixed with BOARD_.
type BoardConfig struct {
	APIURL          string        `envconfig:"API_URL" default:"http://localhost:8080/api"`
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"30s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	Fallback        bool          `envconfig:"FALLBACK" default:"true"`
	RetryMaxElapsed time.Duration `envconfig:"RETRY_MAX_ELAPSED" default:"15s"`
}

// LoadBoard reads BoardConfig from the environment
func LoadBoard() (*BoardConfig, error) {
	var cfg BoardConfig
	if err := envconfig.Process("board", &cfg); err != nil {
		return nil, fmt.Errorf("board config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the board configuration
func (c *BoardConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("BOARD_API_URL is required")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("BOARD_REFRESH_INTERVAL must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("BOARD_REQUEST_TIMEOUT must be positive")
	}
	return nil
}
