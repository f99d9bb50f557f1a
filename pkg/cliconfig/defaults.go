package cliconfig

import (
	"fmt"
	"strings"
)

// DefaultNearMisses is the default number of near misses reported by match.
const DefaultNearMisses = 3

// DefaultPublishTimeout is the default broker timeout in seconds.
const DefaultPublishTimeout = 5

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		NearMisses:     DefaultNearMisses,
		PublishTimeout: DefaultPublishTimeout,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Sources:        make(map[string]string),
	}

	// Mark all as default source
	for _, key := range []string{"nearMisses", "publishTimeout", "mqttQos", "logLevel", "logFormat", "json"} {
		cfg.Sources[key] = SourceDefault
	}
	return cfg
}

// Validate checks that the configuration values are usable.
func (c *CLIConfig) Validate() error {
	if c.NearMisses < 0 {
		return fmt.Errorf("nearMisses %d must not be negative", c.NearMisses)
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("mqttQos %d is out of range (0-2)", c.MQTTQoS)
	}
	if c.PublishTimeout <= 0 || c.PublishTimeout > 300 {
		return fmt.Errorf("publishTimeout %d is out of range (1-300)", c.PublishTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logLevel %q is not one of debug, info, warn, error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logFormat %q is not one of text, json", c.LogFormat)
	}
	return nil
}
