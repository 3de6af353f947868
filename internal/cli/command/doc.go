// Package command provides the kvstore-cli command definitions.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode (ping, get, set, del) and the interactive shell,
// which is also the default when no command is given.
package command
