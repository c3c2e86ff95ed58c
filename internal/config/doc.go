// Package config parses the command line into an AppConfig. Values resolve
// in priority order: explicit flags, then KAHANMC_* environment variables,
// then defaults.
package config
