package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the emulator configuration loaded from environment variables.
type Config struct {
	// EdgePort is the HTTP port where the edge router listens for incoming
	// requests. Default: 4566.
	EdgePort int

	// EnabledServices lists the service names enabled at startup.
	// Default: all built-in services.
	EnabledServices []string

	// DefaultAccountID is the account scope applied to requests that carry
	// no explicit account context. Default: 123456789012.
	DefaultAccountID string

	// DefaultRegion is the region scope applied to requests that carry no
	// explicit region context. Default: us-east-1.
	DefaultRegion string

	// LogLevel controls logging verbosity (debug, info, warn, error).
	// Default: "info".
	LogLevel string
}

// Load creates a Config by reading environment variables. Missing values are
// replaced with sensible defaults.
func Load() *Config {
	cfg := &Config{
		EdgePort:         4566,
		EnabledServices:  []string{"comprehend", "events", "efs"},
		DefaultAccountID: "123456789012",
		DefaultRegion:    "us-east-1",
		LogLevel:         "info",
	}

	if portStr := os.Getenv("EDGE_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			cfg.EdgePort = port
		}
	}

	if servicesStr := os.Getenv("ENABLED_SERVICES"); servicesStr != "" {
		services := strings.Split(servicesStr, ",")
		enabled := make([]string, 0, len(services))
		for _, s := range services {
			s = strings.TrimSpace(s)
			if s != "" {
				enabled = append(enabled, s)
			}
		}
		if len(enabled) > 0 {
			cfg.EnabledServices = enabled
		}
	}

	if account := os.Getenv("ACCOUNT_ID"); account != "" {
		cfg.DefaultAccountID = account
	}

	if region := os.Getenv("DEFAULT_REGION"); region != "" {
		cfg.DefaultRegion = region
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg
}

// IsServiceEnabled checks if a given service name is in the EnabledServices list.
func (c *Config) IsServiceEnabled(serviceName string) bool {
	for _, s := range c.EnabledServices {
		if s == serviceName {
			return true
		}
	}
	return false
}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	if c.EdgePort <= 0 || c.EdgePort >= 65536 {
		return fmt.Errorf("invalid EDGE_PORT: %d (must be 1-65535)", c.EdgePort)
	}
	if c.DefaultAccountID == "" {
		return fmt.Errorf("ACCOUNT_ID cannot be empty")
	}
	if c.DefaultRegion == "" {
		return fmt.Errorf("DEFAULT_REGION cannot be empty")
	}
	return nil
}
