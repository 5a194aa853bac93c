package transport

import (
	"errors"
	"io"
	"net"
	"syscall"
)

// IsStaleConnection reports whether err looks like the peer closed an idle
// keep-alive connection, as opposed to a failure to reach it at all.
func IsStaleConnection(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed)
}
