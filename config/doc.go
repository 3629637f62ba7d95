// Package config loads the healthnotify configuration from a YAML file and
// HEALTHNOTIFY_* environment variables.
//
// The loaded Config feeds every other package: its notification section is a
// notify.ConfigProvider, and helper methods derive the observe, health,
// scheduler and dispatcher configurations.
package config
