// Package singleinstance lets one resident tray process own a loopback TCP
// port and serve one-shot selection requests from later invocations.
//
// Protocol, one request per connection:
//
//	client: PING\n              server: PONG\n
//	client: SELECT STDOUT\n     server: SUCCESS\n<result JSON> | ERROR\n<message>
//	client: SELECT CLIPBOARD\n  server: SUCCESS\n | ERROR\n<message>
package singleinstance

import (
	"context"
	"os"
	"strconv"
)

const (
	defaultPortStart = 49560
	defaultPortEnd   = 49580

	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"

	selectStdout    = "SELECT STDOUT\n"
	selectClipboard = "SELECT CLIPBOARD\n"
	statusSuccess   = "SUCCESS\n"
	statusError     = "ERROR\n"
)

// Server owns the TCP endpoint and answers selection requests.
type Server interface {
	// Start binds the first port of the configured range and accepts clients.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted request, or the ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one client request awaiting a response.
type Conn interface {
	Request() Request
	// RespondSuccess sends the result. Clipboard requests send an empty text.
	RespondSuccess(text string) error
	RespondError(msg string) error
	Close() error
}

// Request is a single delegated selection.
type Request struct {
	OutputToStdout bool
}

// Client delegates a selection to a resident server.
type Client interface {
	// TrySelect scans the port range and delegates to the first resident that
	// answers PING. With no resident it returns delegated=false, err=nil.
	TrySelect(ctx context.Context, outputToStdout bool) (delegated bool, text string, err error)
}

func NewServer() Server { return newTCPServer() }

func NewClient() Client { return tcpClient{} }

// portRange reads SELECTBOX_PORT_START / SELECTBOX_PORT_END (inclusive),
// falling back to defaults and clamping to [1024, 65535].
func portRange() (int, int) {
	start := defaultPortStart
	end := defaultPortEnd
	if v := os.Getenv("SELECTBOX_PORT_START"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			start = n
		}
	}
	if v := os.Getenv("SELECTBOX_PORT_END"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			end = n
		}
	}
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

// PortRange exposes the effective range for logging.
func PortRange() (int, int) { return portRange() }
