// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a TOML file (data/configuration.toml by
// default) and validated using struct tags. Duration fields accept Go
// duration strings such as "6h" or "90s".
package config
