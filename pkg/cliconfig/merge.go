package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied, unless source.SetFields
// records the key as explicitly present.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if isSet(source, "stubs", source.Stubs != "") {
		target.Stubs = source.Stubs
		target.Sources["stubs"] = sourceType
	}
	if isSet(source, "nearMisses", source.NearMisses != 0) {
		target.NearMisses = source.NearMisses
		target.Sources["nearMisses"] = sourceType
	}
	if isSet(source, "kafkaBrokers", len(source.KafkaBrokers) > 0) {
		target.KafkaBrokers = append([]string(nil), source.KafkaBrokers...)
		target.Sources["kafkaBrokers"] = sourceType
	}
	if isSet(source, "mqttBroker", source.MQTTBroker != "") {
		target.MQTTBroker = source.MQTTBroker
		target.Sources["mqttBroker"] = sourceType
	}
	if isSet(source, "mqttQos", source.MQTTQoS != 0) {
		target.MQTTQoS = source.MQTTQoS
		target.Sources["mqttQos"] = sourceType
	}
	if isSet(source, "publishTimeout", source.PublishTimeout != 0) {
		target.PublishTimeout = source.PublishTimeout
		target.Sources["publishTimeout"] = sourceType
	}
	if isSet(source, "logLevel", source.LogLevel != "") {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if isSet(source, "logFormat", source.LogFormat != "") {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	if isSet(source, "lokiUrl", source.LokiURL != "") {
		target.LokiURL = source.LokiURL
		target.Sources["lokiUrl"] = sourceType
	}
	// A false boolean cannot be told apart from an absent one without
	// SetFields, so programmatic configs only merge true.
	if isSet(source, "json", source.JSON) {
		target.JSON = source.JSON
		target.Sources["json"] = sourceType
	}
}

// isSet reports whether the field with the given YAML key should be taken
// from cfg: present in SetFields when the config was loaded from a file,
// otherwise non-zero.
func isSet(cfg *CLIConfig, yamlKey string, nonZero bool) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	return nonZero
}
