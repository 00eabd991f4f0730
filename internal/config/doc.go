// Package config loads Tuner's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tuner/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/tuner/config.toml
//   - Playback API endpoint: 127.0.0.1:7491
//   - Log directory: ~/.local/share/tuner/logs
//   - Station collection: ~/.config/tuner/stations.toml
//   - Poll interval: 2 seconds
//   - Desktop notifications: enabled
//
// # Path Expansion
//
// Paths support tilde expansion (~/) and are converted to absolute paths.
// Empty or whitespace-only values are treated as unset.
package config
