// Package repl provides the interactive shell of kvstore-cli.
//
// Each input line is handed to an Executor and its output printed. "help"
// lists the known commands, "exit" or "quit" ends the session. History is
// kept across sessions when a history file is configured.
package repl
