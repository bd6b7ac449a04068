package monitor

import (
	"context"
	"time"
)

const (
	// DefaultInterval is the pause between scheduled probe passes.
	DefaultInterval = 30 * time.Second

	// DefaultStopTimeout bounds how long Stop waits for the background
	// loop to exit.
	DefaultStopTimeout = 5 * time.Second
)

// SetInterval changes the pause between scheduled passes. It has no
// effect while the scheduler is running.
func (e *Engine) SetInterval(d time.Duration) {
	e.schedMu.Lock()
	defer e.schedMu.Unlock()
	if e.running || d <= 0 {
		return
	}
	e.interval = d
}

// Start launches the background scheduler: one immediate full pass,
// then one pass per interval until Stop. Starting while already running
// is a no-op.
func (e *Engine) Start() {
	e.schedMu.Lock()
	defer e.schedMu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.done = make(chan struct{})
	e.finished = make(chan struct{})

	e.logger.Info("monitor: background scheduler started")
	// The loop takes a snapshot of the interval: a loop lingering past a
	// timed-out Stop must not observe later SetInterval calls.
	go e.loop(e.interval, e.done, e.finished)
}

// Stop signals the scheduler to exit and waits for it, bounded by the
// stop timeout. A pass already in flight runs to completion; stopping
// is cooperative, not preemptive.
func (e *Engine) Stop() {
	e.schedMu.Lock()
	if !e.running {
		e.schedMu.Unlock()
		return
	}
	e.running = false
	close(e.done)
	finished := e.finished
	e.schedMu.Unlock()

	select {
	case <-finished:
		e.logger.Info("monitor: background scheduler stopped")
	case <-time.After(e.stopTimeout):
		e.logger.Warn("monitor: scheduler did not stop within timeout, pass still in flight")
	}
}

func (e *Engine) loop(interval time.Duration, done <-chan struct{}, finished chan<- struct{}) {
	defer close(finished)

	e.pass()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.pass()
		case <-done:
			return
		}
	}
}

// pass runs one full probe pass. A failure inside a pass must not end
// monitoring, so panics are logged and the loop carries on at the next
// interval.
func (e *Engine) pass() {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("monitor: probe pass failed: %v", r)
		}
	}()

	start := time.Now()
	e.RunAll(context.Background())
	e.logger.Infof("monitor: probe pass completed in %.2fs", time.Since(start).Seconds())
}
