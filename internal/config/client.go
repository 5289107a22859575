package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the mch command-line client.
type ClientConfig struct {
	APIBaseURL  string        `mapstructure:"MCH_API_BASE_URL"`
	SessionFile string        `mapstructure:"MCH_SESSION_FILE"`
	IdleTimeout time.Duration `mapstructure:"MCH_IDLE_TIMEOUT"`
	// IdleTimeoutSet is true when MCH_IDLE_TIMEOUT was given. Without it the
	// idle period comes from the server's settings.
	IdleTimeoutSet bool `mapstructure:"-"`
}

// LoadClient reads the client settings from the environment. Callers load
// any .env file into the environment first.
func LoadClient() (*ClientConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("MCH_API_BASE_URL", "http://localhost:8000/api/v1")

	v.BindEnv("MCH_API_BASE_URL")
	v.BindEnv("MCH_SESSION_FILE")
	v.BindEnv("MCH_IDLE_TIMEOUT")

	cfg := &ClientConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal client config: %w", err)
	}
	cfg.IdleTimeoutSet = v.IsSet("MCH_IDLE_TIMEOUT")
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("MCH_API_BASE_URL is required")
	}
	if cfg.IdleTimeout < 0 {
		return nil, fmt.Errorf("MCH_IDLE_TIMEOUT must not be negative, got %s", cfg.IdleTimeout)
	}
	return cfg, nil
}
