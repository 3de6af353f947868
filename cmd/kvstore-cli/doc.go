// Package main provides the entry point for kvstore-cli.
//
// kvstore-cli talks to a kvstore server, either one command per
// invocation or through an interactive shell.
package main
