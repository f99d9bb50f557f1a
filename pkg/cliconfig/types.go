// Package cliconfig provides configuration types and loading for the contractd CLI.
package cliconfig

// CLIConfig represents the complete configuration for the contractd CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Local config file (.contractdrc.yaml in current directory)
// 4. Global config file (~/.config/contractd/config.yaml)
// 5. Default values (lowest priority)
type CLIConfig struct {
	// ConfigFile replaces local config discovery when set
	ConfigFile string `yaml:"-" json:"configFile,omitempty"`

	// Stub settings
	Stubs      string `yaml:"stubs,omitempty" json:"stubs,omitempty"`
	NearMisses int    `yaml:"nearMisses" json:"nearMisses"`

	// Broker settings used when publishing message stubs
	KafkaBrokers   []string `yaml:"kafkaBrokers,omitempty" json:"kafkaBrokers,omitempty"`
	MQTTBroker     string   `yaml:"mqttBroker,omitempty" json:"mqttBroker,omitempty"`
	MQTTQoS        int      `yaml:"mqttQos" json:"mqttQos"`
	PublishTimeout int      `yaml:"publishTimeout" json:"publishTimeout"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LokiURL   string `yaml:"lokiUrl,omitempty" json:"lokiUrl,omitempty"`

	// Output settings
	JSON bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records the keys present in a loaded file, so an explicit
	// false or zero still overrides lower layers.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFile    = "file"
	SourceFlag    = "flag"
)
