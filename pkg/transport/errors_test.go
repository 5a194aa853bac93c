package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStaleConnection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", fmt.Errorf("Post: %w", io.EOF), true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"reset", &net.OpError{Op: "read", Err: os.NewSyscallError("read", syscall.ECONNRESET)}, true},
		{"broken pipe", &net.OpError{Op: "write", Err: os.NewSyscallError("write", syscall.EPIPE)}, true},
		{"closed", net.ErrClosed, true},
		{"refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, false},
		{"other", errors.New("dns lookup failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStaleConnection(tt.err))
		})
	}
}

func TestNewClientTLSConfig(t *testing.T) {
	_, err := NewClientTLSConfig(nil)
	assert.Error(t, err)

	_, err = NewClientTLSConfig(&TLSConfig{})
	assert.Error(t, err)

	cfg, err := NewClientTLSConfig(&TLSConfig{InsecureSkipVerify: true})
	assert.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}
