//go:build !unix

package kvserver

import (
	"fmt"
	"runtime"
)

// Listen always fails on this platform.
func Listen(addr string) (Listener, error) {
	return nil, fmt.Errorf("listen %s on %s: %w", addr, runtime.GOOS, ErrUnsupportedPlatform)
}
