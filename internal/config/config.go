// internal/config/config.go
// Loads hub configuration from an optional JSON file with environment
// variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/collabdrive/realtime/internal/logger"
)

type Config struct {
	Addr      string `json:"addr"`
	NATSURL   string `json:"nats_url"`
	JWTSecret string `json:"jwt_secret"`

	// Durations are expressed in seconds in the config file.
	IdleTimeoutSeconds int `json:"idle_timeout_seconds"`
	SweepPeriodSeconds int `json:"sweep_period_seconds"`
	AuthWindowSeconds  int `json:"auth_window_seconds"`

	Log logger.Config `json:"log"`
}

func Default() Config {
	return Config{
		Addr:               ":8080",
		NATSURL:            "",
		JWTSecret:          "",
		IdleTimeoutSeconds: 60,
		SweepPeriodSeconds: 30,
		AuthWindowSeconds:  10,
		Log:                logger.DefaultConfig(),
	}
}

func (c Config) IdleTimeout() time.Duration { return time.Duration(c.IdleTimeoutSeconds) * time.Second }
func (c Config) SweepPeriod() time.Duration { return time.Duration(c.SweepPeriodSeconds) * time.Second }
func (c Config) AuthWindow() time.Duration  { return time.Duration(c.AuthWindowSeconds) * time.Second }

// Load reads configuration from filePath if it exists, then applies
// environment overrides. A missing file is not an error.
func Load(filePath string) (Config, error) {
	config := Default()
	file, err := os.Open(filePath)
	if err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&config); err != nil {
			return config, fmt.Errorf("decode config %s: %w", filePath, err)
		}
	} else if !os.IsNotExist(err) {
		return config, err
	}
	if err := config.applyEnv(); err != nil {
		return config, err
	}
	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HUB_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATSURL = v
	}
	if v := os.Getenv("HUB_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if err := envDuration("HUB_IDLE_TIMEOUT", &c.IdleTimeoutSeconds); err != nil {
		return err
	}
	if err := envDuration("HUB_SWEEP_PERIOD", &c.SweepPeriodSeconds); err != nil {
		return err
	}
	return envDuration("HUB_AUTH_WINDOW", &c.AuthWindowSeconds)
}

func (c Config) validate() error {
	if c.IdleTimeoutSeconds <= c.SweepPeriodSeconds {
		return fmt.Errorf("idle timeout (%ds) must be greater than sweep period (%ds)",
			c.IdleTimeoutSeconds, c.SweepPeriodSeconds)
	}
	if c.AuthWindowSeconds <= 0 {
		return fmt.Errorf("auth window must be positive")
	}
	return nil
}

// envDuration overrides *seconds from a duration-formatted environment
// variable. An unset variable is a no-op; an unparseable or non-positive
// value is an error rather than a silently kept default.
func envDuration(key string, seconds *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	*seconds = int(d / time.Second)
	return nil
}
