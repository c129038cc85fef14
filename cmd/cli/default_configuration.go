package cli

import _ "embed"

//go:embed default_config.yaml
var embeddedDefaultSettingsContent []byte

// EmbeddedDefaultSettings returns a copy of the embedded default application settings.
func EmbeddedDefaultSettings() []byte {
	return append([]byte(nil), embeddedDefaultSettingsContent...)
}
