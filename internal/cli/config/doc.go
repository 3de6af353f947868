// Package config loads the kvstore-cli configuration.
//
// Sources, lowest precedence first: built-in defaults, ~/.kvstore/cli.yaml,
// KVSTORE_CLI_* environment variables, command-line flags.
package config
