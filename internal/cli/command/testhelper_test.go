package command

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/levkk/kvstore/internal/server/kvserver"
	"github.com/levkk/kvstore/internal/storage/memory"
)

// startServer runs a kv server on a loopback port for the test's lifetime.
func startServer(t *testing.T) string {
	t.Helper()

	ln, err := kvserver.Listen("127.0.0.1:0")
	if errors.Is(err, kvserver.ErrUnsupportedPlatform) {
		t.Skip(err)
	}
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	srv := kvserver.New(kvserver.DefaultConfig(), memory.New(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	return ln.Addr().String()
}

// runApp runs the CLI against addr with stdin as input and returns the output.
func runApp(t *testing.T, addr, stdin string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)

	full := []string{
		"kvstore-cli",
		"--config", filepath.Join(dir, "cli.yaml"),
		"--server", addr,
		"--history-file", filepath.Join(dir, "history"),
	}
	full = append(full, args...)

	err := app.Run(full)
	return out.String(), err
}
