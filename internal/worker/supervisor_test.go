package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRestartable struct {
	startCalls int32
	startErr   error
	done       chan error
}

func (f *fakeRestartable) Start() error {
	atomic.AddInt32(&f.startCalls, 1)
	return f.startErr
}

func (f *fakeRestartable) Done() <-chan error {
	return f.done
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSupervisor_RestartsOnAcceptLoopError(t *testing.T) {
	target := &fakeRestartable{done: make(chan error, 4)}
	sv := NewSupervisor(target, discardLogger())
	sv.initial = time.Millisecond
	sv.ceiling = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan struct{})
	go func() {
		sv.Run(ctx)
		close(runDone)
	}()

	target.done <- errors.New("listener died")
	target.done <- errors.New("listener died again")

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-runDone

	if calls := atomic.LoadInt32(&target.startCalls); calls < 3 {
		t.Errorf("expected at least 3 Start calls (initial + 2 restarts), got %d", calls)
	}
}

func TestSupervisor_StopsOnNilDone(t *testing.T) {
	target := &fakeRestartable{done: make(chan error, 1)}
	sv := NewSupervisor(target, discardLogger())

	target.done <- nil

	runDone := make(chan struct{})
	go func() {
		sv.Run(context.Background())
		close(runDone)
	}()

	select {
	case <-runDone:
	case <-time.After(2 * time.Second):
		t.Fatal("expected Run to return promptly on an orderly (nil) Done")
	}
}

func TestSupervisor_BackoffDoublesUpToCeiling(t *testing.T) {
	cases := []struct {
		current, ceiling, want time.Duration
	}{
		{time.Second, 30 * time.Second, 2 * time.Second},
		{16 * time.Second, 30 * time.Second, 30 * time.Second},
		{30 * time.Second, 30 * time.Second, 30 * time.Second},
	}
	for _, c := range cases {
		if got := nextBackoff(c.current, c.ceiling); got != c.want {
			t.Errorf("nextBackoff(%s, %s) = %s, want %s", c.current, c.ceiling, got, c.want)
		}
	}
}

func TestSupervisor_RetriesFailedStart(t *testing.T) {
	target := &fakeRestartable{startErr: errors.New("bind: address already in use"), done: make(chan error)}
	sv := NewSupervisor(target, discardLogger())
	sv.initial = time.Millisecond
	sv.ceiling = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	sv.Run(ctx)

	if calls := atomic.LoadInt32(&target.startCalls); calls < 2 {
		t.Errorf("expected repeated Start attempts on persistent bind failure, got %d", calls)
	}
}
