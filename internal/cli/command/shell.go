package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/levkk/kvstore/internal/cli/connection"
	"github.com/levkk/kvstore/internal/cli/output"
	"github.com/levkk/kvstore/internal/cli/repl"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Start an interactive session",
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	cfg := GetConfig(c)
	client := newClient(c)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		_, _ = client.Execute(ctx, "QUIT")
		client.Close()
	}()

	if err := client.Connect(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "connected to %s, type help for commands\n", client.Addr())

	r := repl.New(shellExecutor(c.Context, client, output.Format(cfg.Output)),
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistoryFile(cfg.HistoryFile),
	)
	return r.Run()
}

// shellExecutor runs shell lines on client. Server errors are printed as
// replies; transport errors drop the connection so the next line redials.
func shellExecutor(ctx context.Context, client *connection.Client, format output.Format) repl.Executor {
	return func(line string) (string, error) {
		var buf bytes.Buffer
		err := execute(ctx, client, format, &buf, line)

		var serverErr *ServerError
		if err != nil && !errors.As(err, &serverErr) {
			client.Close()
			return "", err
		}
		return buf.String(), nil
	}
}
