// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ApplyEnvironmentOverrides mutates cfg in place with any SPACEWAR_*
// environment variables that are set. Unset variables leave the loaded
// values alone; a set-but-unparsable variable is an error.
func ApplyEnvironmentOverrides(cfg *GameConfig) error {
	if err := overrideString("SPACEWAR_SERVER_ADDRESS", &cfg.Network.ServerAddress); err != nil {
		return err
	}
	if err := overrideInt("SPACEWAR_SERVER_PORT", &cfg.Network.ServerPort); err != nil {
		return err
	}
	if err := overrideInt("SPACEWAR_HEALTH_PORT", &cfg.Network.HealthPort); err != nil {
		return err
	}
	if err := overrideInt("SPACEWAR_MAX_CLIENTS", &cfg.Network.MaxClients); err != nil {
		return err
	}
	if err := overrideInt("SPACEWAR_SHIPS", &cfg.Ships); err != nil {
		return err
	}
	if err := overrideUint64("SPACEWAR_SEED", &cfg.Seed); err != nil {
		return err
	}
	if err := overrideInt("SPACEWAR_TICKS_PER_SECOND", &cfg.Rules.TicksPerSecond); err != nil {
		return err
	}
	if err := overrideFloat("SPACEWAR_WORLD_RADIUS", &cfg.WorldRadius); err != nil {
		return err
	}
	return nil
}

// EnvironmentConfig contains operational settings for the network layer
// that are only ever sourced from the environment.
type EnvironmentConfig struct {
	CircuitBreakerMaxRequests         int
	CircuitBreakerInterval            time.Duration
	CircuitBreakerTimeout             time.Duration
	CircuitBreakerMaxConsecutiveFails int
	DialTimeout                       time.Duration
	ReadTimeout                       time.Duration
	WriteTimeout                      time.Duration
	ShutdownTimeout                   time.Duration
}

// LoadConfigFromEnv builds an EnvironmentConfig from the environment,
// starting from safe defaults.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	cfg := &EnvironmentConfig{
		CircuitBreakerMaxRequests:         5,
		CircuitBreakerInterval:            60 * time.Second,
		CircuitBreakerTimeout:             30 * time.Second,
		CircuitBreakerMaxConsecutiveFails: 3,
		DialTimeout:                       10 * time.Second,
		ReadTimeout:                       30 * time.Second,
		WriteTimeout:                      30 * time.Second,
		ShutdownTimeout:                   30 * time.Second,
	}
	if err := overrideInt("SPACEWAR_CB_MAX_REQUESTS", &cfg.CircuitBreakerMaxRequests); err != nil {
		return nil, err
	}
	if err := overrideDuration("SPACEWAR_CB_INTERVAL", &cfg.CircuitBreakerInterval); err != nil {
		return nil, err
	}
	if err := overrideDuration("SPACEWAR_CB_TIMEOUT", &cfg.CircuitBreakerTimeout); err != nil {
		return nil, err
	}
	if err := overrideInt("SPACEWAR_CB_MAX_CONSECUTIVE_FAILS", &cfg.CircuitBreakerMaxConsecutiveFails); err != nil {
		return nil, err
	}
	if err := overrideDuration("SPACEWAR_DIAL_TIMEOUT", &cfg.DialTimeout); err != nil {
		return nil, err
	}
	if err := overrideDuration("SPACEWAR_READ_TIMEOUT", &cfg.ReadTimeout); err != nil {
		return nil, err
	}
	if err := overrideDuration("SPACEWAR_WRITE_TIMEOUT", &cfg.WriteTimeout); err != nil {
		return nil, err
	}
	if err := overrideDuration("SPACEWAR_SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideString(key string, target *string) error {
	if value, ok := os.LookupEnv(key); ok {
		*target = value
	}
	return nil
}

func overrideInt(key string, target *int) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func overrideUint64(key string, target *uint64) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func overrideFloat(key string, target *float64) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = parsed
	return nil
}

func overrideDuration(key string, target *time.Duration) error {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*target = parsed
	return nil
}
