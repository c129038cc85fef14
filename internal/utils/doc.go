// Package utils exposes the ambient helpers shared by the kelm CLI.
//
// SettingsLoader layers embedded defaults, an optional kelm.yaml settings file,
// and KELM_* environment variables through Viper. LoggerFactory builds zap
// loggers for the structured and console formats.
package utils
