// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

func waitForAddr(t *testing.T, svc *HTTPServerService) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if addr := svc.Addr(); addr != "" {
			return addr
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not bind")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	t.Parallel()

	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(&http.Server{}, ":0", timeout, zerolog.Nop())
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("shutdownTimeout(%v) = %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewHTTPServerService(&http.Server{}, ":0", time.Second, zerolog.Nop()).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_ServesAndDrains(t *testing.T) {
	t.Parallel()

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(srv, "127.0.0.1:0", time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	addr := waitForAddr(t, svc)
	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("GET = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	if svc.Addr() != "" {
		t.Error("Addr() should be empty after Serve returns")
	}
}

func TestHTTPServerService_BindFailure(t *testing.T) {
	t.Parallel()

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer taken.Close()

	svc := NewHTTPServerService(&http.Server{ReadHeaderTimeout: time.Second}, taken.Addr().String(), time.Second, zerolog.Nop())
	err = svc.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listen") {
		t.Errorf("Serve() = %v, want listen error", err)
	}
}

// failingServer returns its error from Serve immediately.
type failingServer struct{ err error }

func (f failingServer) Serve(l net.Listener) error {
	_ = l.Close()
	return f.err
}

func (f failingServer) Shutdown(context.Context) error { return nil }

func TestHTTPServerService_ServeError(t *testing.T) {
	t.Parallel()

	cause := errors.New("tls handshake setup failed")
	svc := NewHTTPServerService(failingServer{err: cause}, "127.0.0.1:0", time.Second, zerolog.Nop())
	if err := svc.Serve(context.Background()); !errors.Is(err, cause) {
		t.Errorf("Serve() = %v, want %v", err, cause)
	}
}
