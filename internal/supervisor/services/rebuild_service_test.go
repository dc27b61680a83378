// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/curator/internal/recommend"
)

var (
	_ suture.Service             = (*RebuildService)(nil)
	_ recommend.RebuildScheduler = (*RebuildService)(nil)
)

// mockRebuilder records reasons and can block each rebuild until released.
type mockRebuilder struct {
	mu      sync.Mutex
	reasons []string
	err     error
	gate    chan struct{}
	called  chan string
}

func newMockRebuilder() *mockRebuilder {
	return &mockRebuilder{called: make(chan string, 16)}
}

func (m *mockRebuilder) RebuildFor(ctx context.Context, reason string) (recommend.RebuildResult, error) {
	m.mu.Lock()
	m.reasons = append(m.reasons, reason)
	gate, err := m.gate, m.err
	m.mu.Unlock()

	m.called <- reason
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return recommend.RebuildResult{}, ctx.Err()
		}
	}
	if err != nil {
		return recommend.RebuildResult{Status: recommend.RebuildBuildFailed, Err: err}, err
	}
	return recommend.RebuildResult{Success: true, Status: recommend.RebuildSucceeded, Reason: reason}, nil
}

func (m *mockRebuilder) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.reasons...)
}

func runService(t *testing.T, svc *RebuildService) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func expectCall(t *testing.T, m *mockRebuilder, want string) {
	t.Helper()
	select {
	case got := <-m.called:
		if got != want {
			t.Errorf("rebuild reason = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no rebuild with reason %q", want)
	}
}

func TestRebuildService_String(t *testing.T) {
	t.Parallel()

	svc := NewRebuildService(newMockRebuilder(), RebuildServiceConfig{}, zerolog.Nop())
	if svc.String() != "rebuild-service" {
		t.Errorf("String() = %q", svc.String())
	}
	if svc.config.Timeout != 30*time.Minute {
		t.Errorf("default Timeout = %v, want 30m", svc.config.Timeout)
	}
}

func TestRebuildService_RebuildOnStart(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	runService(t, NewRebuildService(m, RebuildServiceConfig{RebuildOnStart: true}, zerolog.Nop()))
	expectCall(t, m, "startup")
}

func TestRebuildService_NoStartupRebuild(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	runService(t, NewRebuildService(m, RebuildServiceConfig{}, zerolog.Nop()))

	select {
	case reason := <-m.called:
		t.Errorf("unexpected rebuild %q", reason)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRebuildService_Scheduled(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	runService(t, NewRebuildService(m, RebuildServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop()))
	expectCall(t, m, "scheduled")
	expectCall(t, m, "scheduled")
}

func TestRebuildService_RequestRebuild(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	svc := NewRebuildService(m, RebuildServiceConfig{}, zerolog.Nop())
	runService(t, svc)

	if !svc.RequestRebuild("api") {
		t.Fatal("RequestRebuild() = false on an empty queue")
	}
	expectCall(t, m, "api")
}

func TestRebuildService_CoalescesWhileRunning(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	m.gate = make(chan struct{})
	svc := NewRebuildService(m, RebuildServiceConfig{}, zerolog.Nop())
	runService(t, svc)

	svc.RequestRebuild("first")
	expectCall(t, m, "first")

	// The first rebuild is blocked: one request queues, the rest coalesce.
	if !svc.RequestRebuild("second") {
		t.Error("second request should queue")
	}
	for i := 0; i < 5; i++ {
		if svc.RequestRebuild("extra") {
			t.Error("requests beyond the queued one should coalesce")
		}
	}

	close(m.gate)
	expectCall(t, m, "second")

	select {
	case reason := <-m.called:
		t.Errorf("unexpected extra rebuild %q", reason)
	case <-time.After(100 * time.Millisecond):
	}
	if got := m.snapshot(); len(got) != 2 {
		t.Errorf("rebuilds = %v, want [first second]", got)
	}
}

func TestRebuildService_MinGap(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	gap := 150 * time.Millisecond
	svc := NewRebuildService(m, RebuildServiceConfig{MinGap: gap}, zerolog.Nop())
	runService(t, svc)

	svc.RequestRebuild("a")
	expectCall(t, m, "a")
	start := time.Now()
	svc.RequestRebuild("b")
	expectCall(t, m, "b")

	if elapsed := time.Since(start); elapsed < gap-20*time.Millisecond {
		t.Errorf("second rebuild after %v, want at least ~%v", elapsed, gap)
	}
}

func TestRebuildService_FailureKeepsServing(t *testing.T) {
	t.Parallel()

	m := newMockRebuilder()
	m.err = errors.New("catalog read failed")
	svc := NewRebuildService(m, RebuildServiceConfig{}, zerolog.Nop())
	runService(t, svc)

	svc.RequestRebuild("one")
	expectCall(t, m, "one")
	svc.RequestRebuild("two")
	expectCall(t, m, "two")
}

func TestRebuildService_StopsOnCancel(t *testing.T) {
	t.Parallel()

	svc := NewRebuildService(newMockRebuilder(), RebuildServiceConfig{Interval: time.Hour}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}
