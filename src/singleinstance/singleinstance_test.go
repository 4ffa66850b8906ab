package singleinstance

import (
	"bytes"
	"context"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

func usePorts(t *testing.T, start, end int) {
	t.Setenv("SELECTBOX_PORT_START", strconv.Itoa(start))
	t.Setenv("SELECTBOX_PORT_END", strconv.Itoa(end))
}

func TestPortRange(t *testing.T) {
	usePorts(t, 80, 70000)
	start, end := PortRange()
	if start != 1024 || end != 65535 {
		t.Fatalf("Expected clamped range, got %d-%d", start, end)
	}

	usePorts(t, 5000, 4000)
	start, end = PortRange()
	if start != 4000 || end != 5000 {
		t.Fatalf("Expected swapped range, got %d-%d", start, end)
	}
}

func TestServerClientRoundTrip(t *testing.T) {
	usePorts(t, 49591, 49592)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	type outcome struct {
		delegated bool
		text      string
		err       error
	}
	done := make(chan outcome, 1)
	go func() {
		delegated, text, err := NewClient().TrySelect(ctx, true)
		done <- outcome{delegated, text, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !conn.Request().OutputToStdout {
		t.Errorf("expected stdout request")
	}
	if err := conn.RespondSuccess(`{"width": 10}`); err != nil {
		t.Fatalf("respond: %v", err)
	}
	_ = conn.Close()

	got := <-done
	if got.err != nil || !got.delegated {
		t.Fatalf("expected delegation, got %+v", got)
	}
	if got.text != `{"width": 10}` {
		t.Errorf("unexpected text %q", got.text)
	}
}

func TestServerErrorResponse(t *testing.T) {
	usePorts(t, 49593, 49593)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer srv.Close()

	done := make(chan error, 1)
	go func() {
		_, _, err := NewClient().TrySelect(ctx, false)
		done <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	_ = conn.RespondError("selection disabled")
	_ = conn.Close()

	if err := <-done; err == nil || err.Error() != "selection disabled" {
		t.Fatalf("expected resident error, got %v", err)
	}
}

func TestSecondServerFails(t *testing.T) {
	usePorts(t, 49594, 49594)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := NewServer()
	if err := first.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	defer first.Close()

	if err := NewServer().Start(ctx); err == nil {
		t.Fatal("expected the second resident to fail")
	}
}

func TestNoResident(t *testing.T) {
	usePorts(t, 49595, 49595)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	delegated, _, err := NewClient().TrySelect(ctx, false)
	if delegated || err != nil {
		t.Fatalf("expected no delegation, got delegated=%v err=%v", delegated, err)
	}
}

func TestUnknownRequestLoggedSafely(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()
	s := newTCPServer()
	accepted := make(chan bool, 1)
	go func() {
		_, ok := s.handshake(serverSide)
		accepted <- ok
	}()

	line := "HELLO\x1b[2J" + strings.Repeat("x", 100) + "\n"
	if _, err := clientSide.Write([]byte(line)); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply, err := io.ReadAll(clientSide)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(reply) != statusError+"unknown request" {
		t.Errorf("unexpected reply %q", reply)
	}
	if <-accepted {
		t.Error("expected unknown request to be rejected")
	}

	logged := buf.String()
	if strings.Contains(logged, "\x1b") {
		t.Errorf("escape sequence reached the log: %q", logged)
	}
	if !strings.Contains(logged, "HELLO?[2J") || !strings.Contains(logged, "...") {
		t.Errorf("expected sanitized, truncated request in log, got %q", logged)
	}
	if strings.Contains(logged, strings.Repeat("x", 100)) {
		t.Errorf("expected request to be truncated, got %q", logged)
	}
}
