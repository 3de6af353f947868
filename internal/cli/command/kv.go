package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/levkk/kvstore/internal/cli/output"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the server answers",
		Action: func(c *cli.Context) error {
			return runOne(c, "PING")
		},
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value stored at a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			key, err := keyArg(c, 1)
			if err != nil {
				return err
			}
			return runOne(c, "GET "+key)
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value at a key",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "int",
				Aliases: []string{"i"},
				Usage:   "Store VALUE as an unsigned integer",
			},
		},
		Action: func(c *cli.Context) error {
			key, err := keyArg(c, 2)
			if err != nil {
				return err
			}
			value := c.Args().Get(1)
			if err := checkToken("value", value); err != nil {
				return err
			}
			if c.Bool("int") {
				value = ":" + value
			}
			return runOne(c, "SET "+key+" "+value)
		},
	}
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Usage:     "Delete a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			key, err := keyArg(c, 1)
			if err != nil {
				return err
			}
			return runOne(c, "DEL "+key)
		},
	}
}

// runOne executes a single request on a fresh connection.
func runOne(c *cli.Context, line string) error {
	cfg := GetConfig(c)
	client := newClient(c)
	defer client.Close()

	ctx, cancel := context.WithTimeout(c.Context, cfg.Timeout)
	defer cancel()

	return execute(ctx, client, output.Format(cfg.Output), c.App.Writer, line)
}

// keyArg checks the argument count and returns the first argument.
func keyArg(c *cli.Context, want int) (string, error) {
	if c.NArg() != want {
		return "", fmt.Errorf("%s expects %d argument(s), got %d", c.Command.Name, want, c.NArg())
	}
	key := c.Args().First()
	if err := checkToken("key", key); err != nil {
		return "", err
	}
	return key, nil
}

// checkToken rejects arguments that would split into several protocol tokens.
func checkToken(name, s string) error {
	if s == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	if strings.ContainsAny(s, " \r\n") {
		return fmt.Errorf("%s must not contain whitespace", name)
	}
	return nil
}
