package store

import (
	"fmt"
	"time"
)

// Config is the configuration for dialing the backing MongoDB instance,
// following the teacher's mongo.Config string-duration-with-Validate shape.
type Config struct {
	ConnectionURI     string `yaml:"ConnectionURI"`
	Database          string `yaml:"Database"`
	ConnectionTimeout string `yaml:"ConnectionTimeout"`
	PingTimeout       string `yaml:"PingTimeout"`
	LockTimeout       string `yaml:"LockTimeout"`
	FenceTimeout      string `yaml:"FenceTimeout"`

	MonitoringEnabled             bool   `yaml:"MonitoringEnabled"`
	MonitoringSlowQueryThreshold string `yaml:"MonitoringSlowQueryThreshold"`
}

// Validate returns an error if any configured duration does not parse.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"ConnectionTimeout": c.ConnectionTimeout,
		"PingTimeout":       c.PingTimeout,
		"LockTimeout":       c.LockTimeout,
		"FenceTimeout":      c.FenceTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid duration %q for %s: %w", v, name, err)
		}
	}
	if c.MonitoringEnabled {
		if _, err := time.ParseDuration(c.MonitoringSlowQueryThreshold); err != nil {
			return fmt.Errorf("invalid duration %q for MonitoringSlowQueryThreshold: %w", c.MonitoringSlowQueryThreshold, err)
		}
	}
	return nil
}

// ParseConnectionTimeout returns the connection timeout duration.
func (c *Config) ParseConnectionTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ConnectionTimeout)
	return d
}

// ParsePingTimeout returns the ping timeout duration.
func (c *Config) ParsePingTimeout() time.Duration {
	d, _ := time.ParseDuration(c.PingTimeout)
	return d
}

// ParseLockTimeout returns the cross-process lock acquisition bound.
func (c *Config) ParseLockTimeout() time.Duration {
	d, _ := time.ParseDuration(c.LockTimeout)
	return d
}

// ParseFenceTimeout returns the change-listener fence bound.
func (c *Config) ParseFenceTimeout() time.Duration {
	d, _ := time.ParseDuration(c.FenceTimeout)
	return d
}

// ParseMonitoringSlowQueryThreshold returns the slow-query log threshold.
func (c *Config) ParseMonitoringSlowQueryThreshold() time.Duration {
	d, _ := time.ParseDuration(c.MonitoringSlowQueryThreshold)
	return d
}

// Default returns a Config with the engine's default timeouts.
func Default() *Config {
	return &Config{
		ConnectionTimeout:            "5s",
		PingTimeout:                  "5s",
		LockTimeout:                  "10s",
		FenceTimeout:                 "10s",
		MonitoringEnabled:            true,
		MonitoringSlowQueryThreshold: "100ms",
	}
}
