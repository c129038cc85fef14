package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant         = "."
	environmentKeySeparatorNewConstant         = "_"
	settingsReadErrorTemplateConstant          = "failed to read settings: %w"
	settingsUnmarshalErrorTemplateConstant     = "failed to parse settings: %w"
	embeddedSettingsMergeErrorTemplateConstant = "failed to merge embedded settings: %w"
)

// SettingsLoader wraps Viper to resolve application settings from embedded
// defaults, an optional settings file found on the search paths, and
// environment variables, in increasing order of precedence.
type SettingsLoader struct {
	settingsName           string
	settingsType           string
	environmentPrefix      string
	searchPaths            []string
	environmentKeyReplacer *strings.Replacer
	embeddedSettings       []byte
}

// LoadedSettings surfaces metadata about the resolved settings.
type LoadedSettings struct {
	SettingsFileUsed string
}

// NewSettingsLoader creates a loader that searches known paths and respects an environment prefix.
func NewSettingsLoader(settingsName string, settingsType string, environmentPrefix string, searchPaths []string) *SettingsLoader {
	return &SettingsLoader{
		settingsName:           settingsName,
		settingsType:           settingsType,
		environmentPrefix:      environmentPrefix,
		searchPaths:            append([]string{}, searchPaths...),
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// SetEmbeddedSettings stores settings data merged before any settings file.
func (loader *SettingsLoader) SetEmbeddedSettings(settingsData []byte) {
	if loader == nil {
		return
	}
	loader.embeddedSettings = append([]byte(nil), settingsData...)
}

// LoadSettings populates target using defaults, embedded settings, a settings file, and the environment.
func (loader *SettingsLoader) LoadSettings(defaultValues map[string]any, target any) (LoadedSettings, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.settingsName)
	viperInstance.SetConfigType(loader.settingsType)

	if len(loader.embeddedSettings) > 0 {
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedSettings)); mergeError != nil {
			return LoadedSettings{}, fmt.Errorf(embeddedSettingsMergeErrorTemplateConstant, mergeError)
		}
	}

	for _, searchPath := range loader.searchPaths {
		viperInstance.AddConfigPath(searchPath)
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
	viperInstance.AutomaticEnv()

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFound) {
			return LoadedSettings{}, fmt.Errorf(settingsReadErrorTemplateConstant, readError)
		}
	}

	if unmarshalError := viperInstance.Unmarshal(target); unmarshalError != nil {
		return LoadedSettings{}, fmt.Errorf(settingsUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedSettings{SettingsFileUsed: viperInstance.ConfigFileUsed()}, nil
}
