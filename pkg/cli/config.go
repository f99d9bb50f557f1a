package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/contractd/pkg/cliconfig"
)

// configFlags maps flag names to the config keys that back them.
var configFlags = map[string]string{
	"json":            "json",
	"log-level":       "logLevel",
	"log-format":      "logFormat",
	"loki-url":        "lokiUrl",
	"stubs":           "stubs",
	"near-misses":     "nearMisses",
	"kafka-brokers":   "kafkaBrokers",
	"mqtt-broker":     "mqttBroker",
	"mqtt-qos":        "mqttQos",
	"publish-timeout": "publishTimeout",
}

// applyConfig fills every flag of cmd the user did not set from cfg.
// Flags that were set are recorded as the source of their key.
func applyConfig(cmd *cobra.Command, cfg *cliconfig.CLIConfig) error {
	values := map[string]string{
		"json":            strconv.FormatBool(cfg.JSON),
		"log-level":       cfg.LogLevel,
		"log-format":      cfg.LogFormat,
		"loki-url":        cfg.LokiURL,
		"stubs":           cfg.Stubs,
		"near-misses":     strconv.Itoa(cfg.NearMisses),
		"kafka-brokers":   strings.Join(cfg.KafkaBrokers, ","),
		"mqtt-broker":     cfg.MQTTBroker,
		"mqtt-qos":        strconv.Itoa(cfg.MQTTQoS),
		"publish-timeout": (time.Duration(cfg.PublishTimeout) * time.Second).String(),
	}

	for name, key := range configFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if f.Changed {
			cfg.Sources[key] = cliconfig.SourceFlag
			continue
		}
		if v := values[name]; v != "" {
			if err := f.Value.Set(v); err != nil {
				return fmt.Errorf("config value %s=%q: %w", key, v, err)
			}
		}
	}
	return nil
}
