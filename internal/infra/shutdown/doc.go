// Package shutdown provides graceful shutdown for kvstore.
//
// A Handler turns SIGINT/SIGTERM (or an explicit Trigger) into a cancelled
// context, then runs the registered hooks in reverse order under a timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	go run(h.Context())
//	err := h.Wait()
package shutdown
