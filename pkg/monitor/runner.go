package monitor

import (
	"context"
	"sync"
	"time"

	"pingwatch/pkg/probe"
	"pingwatch/pkg/topology"
)

// maxConcurrentProbes caps the fan-out of a pass. Each probe spawns a
// ping process, and unbounded fan-out against hundreds of hosts would
// exhaust ephemeral resources.
const maxConcurrentProbes = 30

// RunAll probes every host in the current topology concurrently and
// writes each result into the store. It returns only once every probe
// has completed; no partial batches are visible to callers. An empty
// host set is a no-op.
func (e *Engine) RunAll(ctx context.Context) {
	hosts := e.Hosts()
	if len(hosts) == 0 {
		return
	}

	limit := maxConcurrentProbes
	if len(hosts) < limit {
		limit = len(hosts)
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for _, h := range hosts {
		wg.Add(1)
		sem <- struct{}{}
		go func(h topology.Host) {
			defer wg.Done()
			defer func() { <-sem }()
			e.probeInto(ctx, h)
		}(h)
	}
	wg.Wait()

	e.mu.Lock()
	e.lastPass = time.Now()
	e.mu.Unlock()
}

// probeInto runs one probe and stores the result. A panicking prober
// still yields a red result for its host rather than aborting the batch.
func (e *Engine) probeInto(ctx context.Context, h topology.Host) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("monitor: probe of %s panicked: %v", h.Address, r)
			e.store.Write(h.Address, probe.Unreachable(h))
		}
	}()
	e.store.Write(h.Address, e.pinger.Probe(ctx, h))
}

// ForceRefresh triggers one full probe pass outside the timer cadence,
// blocking until the pass completes. Safe to call while the background
// loop is running; both serialize through the store's lock.
func (e *Engine) ForceRefresh(ctx context.Context) {
	e.logger.Info("monitor: manual refresh triggered")
	e.RunAll(ctx)
}
