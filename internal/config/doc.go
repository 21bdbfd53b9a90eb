// Package config manages the bro user configuration file.
//
// It handles:
//   - Locating the TOML file ($BRO_CONFIG or ~/.config/bro/config.toml)
//   - Creating it with defaults on first use
//   - Reading and updating individual keys
package config
