// Package ports provides small helpers for host-port selection.
package ports

import (
	"errors"
	"fmt"
	"net"
)

// ErrExhausted means the port space above the starting port ran out.
var ErrExhausted = errors.New("no available ports found")

// Next returns the next candidate port, failing past the maximum port number.
func Next(port int) (int, error) {
	port++
	if port > 65535 {
		return 0, ErrExhausted
	}
	return port, nil
}

// IsFree reports whether a local TCP listener can currently bind the port.
// The answer is advisory: another process may take the port between the
// check and actual use, which is why container startup still retries.
func IsFree(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return false
	}
	l.Close()
	return true
}
