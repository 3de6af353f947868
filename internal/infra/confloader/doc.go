// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader on top of koanf:
//
//   - loader.go: YAML file, environment and override sources
//   - provider.go: map provider used for command-line overrides
//   - watcher.go: fsnotify-based reload notifications
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Default values
package confloader
