package main

import (
	"errors"
	"os"

	"github.com/levkk/kvstore/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		// The reply was already printed.
		var serverErr *command.ServerError
		if !errors.As(err, &serverErr) {
			command.PrintError("%v", err)
		}
		os.Exit(1)
	}
}
