package command

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/levkk/kvstore/internal/cli/config"
	"github.com/levkk/kvstore/internal/cli/connection"
	"github.com/levkk/kvstore/internal/cli/output"
	"github.com/levkk/kvstore/internal/infra/buildinfo"
)

const configKey = "config"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "kvstore-cli",
		Usage:   "kvstore command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			GetCommand(),
			SetCommand(),
			DelCommand(),
			ShellCommand(),
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			c.App.Metadata[configKey] = cfg
			return nil
		},
		Action: shellAction,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file (default ~/.kvstore/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "kvstore server address (e.g., 127.0.0.1:7379)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: text, json, yaml",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Dial and request timeout",
		},
		&cli.StringFlag{
			Name:  "history-file",
			Usage: "Shell history file",
		},
	}
}

// loadConfig merges the config file and environment with flags that were set.
func loadConfig(c *cli.Context) (*config.CLIConfig, error) {
	overrides := map[string]any{}
	if c.IsSet("server") {
		overrides["server"] = c.String("server")
	}
	if c.IsSet("output") {
		overrides["output"] = c.String("output")
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout")
	}
	if c.IsSet("history-file") {
		overrides["history_file"] = c.String("history-file")
	}
	return config.Load(c.String("config"), overrides)
}

// GetConfig retrieves the loaded configuration from context.
func GetConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[configKey].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// newClient creates a client for the configured server.
func newClient(c *cli.Context) *connection.Client {
	cfg := GetConfig(c)
	return connection.NewClient(cfg.Server, cfg.Timeout)
}

// ServerError is returned when the server answers with an error reply.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + " " + e.Message
}

// execute sends line and prints the parsed reply to w.
func execute(ctx context.Context, client *connection.Client, format output.Format, w io.Writer, line string) error {
	reply, err := client.Execute(ctx, line)
	if err != nil {
		return err
	}

	res := output.Parse(reply)
	if err := output.NewFormatter(format).Format(w, res); err != nil {
		return err
	}
	if res.IsError() {
		return &ServerError{Code: res.Code, Message: res.Message}
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
