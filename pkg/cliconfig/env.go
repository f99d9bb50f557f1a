package cliconfig

import (
	"os"
	"strconv"
	"strings"

	"github.com/getmockd/contractd/pkg/logging"
)

// Environment variable names
const (
	EnvConfig         = "CONTRACTD_CONFIG"
	EnvStubs          = "CONTRACTD_STUBS"
	EnvNearMisses     = "CONTRACTD_NEAR_MISSES"
	EnvKafkaBrokers   = "CONTRACTD_KAFKA_BROKERS"
	EnvMQTTBroker     = "CONTRACTD_MQTT_BROKER"
	EnvMQTTQoS        = "CONTRACTD_MQTT_QOS"
	EnvPublishTimeout = "CONTRACTD_PUBLISH_TIMEOUT"
	EnvLogLevel       = logging.EnvLevel
	EnvLogFormat      = logging.EnvFormat
	EnvLokiURL        = logging.EnvLokiURL
	EnvJSON           = "CONTRACTD_JSON"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	setString := func(env, key string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
			cfg.Sources[key] = SourceEnv
		}
	}
	setInt := func(env, key string, dst *int) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
				cfg.Sources[key] = SourceEnv
			}
		}
	}

	setString(EnvConfig, "configFile", &cfg.ConfigFile)
	setString(EnvStubs, "stubs", &cfg.Stubs)
	setInt(EnvNearMisses, "nearMisses", &cfg.NearMisses)
	setString(EnvMQTTBroker, "mqttBroker", &cfg.MQTTBroker)
	setInt(EnvMQTTQoS, "mqttQos", &cfg.MQTTQoS)
	setInt(EnvPublishTimeout, "publishTimeout", &cfg.PublishTimeout)
	setString(EnvLogLevel, "logLevel", &cfg.LogLevel)
	setString(EnvLogFormat, "logFormat", &cfg.LogFormat)
	setString(EnvLokiURL, "lokiUrl", &cfg.LokiURL)

	// CONTRACTD_KAFKA_BROKERS is comma-separated
	if v := os.Getenv(EnvKafkaBrokers); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		cfg.KafkaBrokers = brokers
		cfg.Sources["kafkaBrokers"] = SourceEnv
	}

	// CONTRACTD_JSON
	if v := os.Getenv(EnvJSON); v != "" {
		cfg.JSON = v == "true" || v == "1" || v == "yes"
		cfg.Sources["json"] = SourceEnv
	}
}
