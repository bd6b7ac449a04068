// Package monitor ties the topology, prober, and result store together
// into an engine that keeps the cache fresh.
//
// The engine is an explicit object constructed once at process start
// and handed to the boundary layer; there is no package-level singleton,
// so multiple engines can coexist (tests rely on this).
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pingwatch/pkg/probe"
	"pingwatch/pkg/store"
	"pingwatch/pkg/topology"
)

// ErrHostNotFound is returned by ProbeOne for addresses outside the
// current topology.
var ErrHostNotFound = errors.New("host not found")

// Engine owns the monitored host set, the result store, and the
// background scheduler.
type Engine struct {
	pinger probe.Pinger
	store  *store.Store
	logger *logrus.Logger

	mu       sync.RWMutex
	path     string
	hosts    []topology.Host
	byAddr   map[string]topology.Host
	config   map[string]any
	lastPass time.Time

	schedMu  sync.Mutex
	running  bool
	done     chan struct{}
	finished chan struct{}

	interval    time.Duration
	stopTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the scheduler's probe interval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// New creates an Engine with an empty topology.
func New(pinger probe.Pinger, logger *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		pinger:      pinger,
		store:       store.New(),
		logger:      logger,
		byAddr:      make(map[string]topology.Host),
		interval:    DefaultInterval,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadTopology reads the hosts file at path and swaps in the new host
// set wholesale. Existing cached results for addresses still present
// are left untouched; newly introduced addresses are seeded with an
// unknown placeholder. On error the previous topology stays in effect.
func (e *Engine) LoadTopology(path string) (int, error) {
	doc, err := topology.Load(path, e.logger)
	if err != nil {
		return 0, err
	}

	byAddr := make(map[string]topology.Host, len(doc.Hosts))
	for _, h := range doc.Hosts {
		byAddr[h.Address] = h
	}

	e.mu.Lock()
	e.path = path
	e.hosts = doc.Hosts
	e.byAddr = byAddr
	e.config = doc.Config
	e.mu.Unlock()

	for _, h := range doc.Hosts {
		e.store.Seed(h)
	}

	e.logger.Infof("monitor: loaded %d hosts from %s", len(doc.Hosts), path)
	return len(doc.Hosts), nil
}

// Reload re-reads the hosts file from the path of the last successful
// LoadTopology call.
func (e *Engine) Reload() (int, error) {
	e.mu.RLock()
	path := e.path
	e.mu.RUnlock()
	if path == "" {
		return 0, fmt.Errorf("no hosts file has been loaded")
	}
	return e.LoadTopology(path)
}

// Hosts returns a copy of the current host set in configuration order.
func (e *Engine) Hosts() []topology.Host {
	e.mu.RLock()
	defer e.mu.RUnlock()
	hosts := make([]topology.Host, len(e.hosts))
	copy(hosts, e.hosts)
	return hosts
}

// Config returns the opaque config section of the hosts document.
// The engine itself does not interpret it.
func (e *Engine) Config() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cfg := make(map[string]any, len(e.config))
	for k, v := range e.config {
		cfg[k] = v
	}
	return cfg
}

// Snapshot returns a deep copy of the current result cache with the
// offline display tags derived per entry.
func (e *Engine) Snapshot() map[string]probe.Result {
	return e.store.Snapshot()
}

// ProbeOne synchronously probes a single host and writes the result
// through to the store. Returns ErrHostNotFound (wrapped) when the
// address is not in the current topology; nothing is written then.
func (e *Engine) ProbeOne(ctx context.Context, address string) (probe.Result, error) {
	e.mu.RLock()
	h, ok := e.byAddr[address]
	e.mu.RUnlock()
	if !ok {
		return probe.Result{}, fmt.Errorf("%w: %s", ErrHostNotFound, address)
	}

	r := e.pinger.Probe(ctx, h)
	e.store.Write(address, r)
	return r, nil
}

// Health describes the engine for health endpoints.
type Health struct {
	HostCount        int
	SchedulerRunning bool
	LastCheck        time.Time // zero before the first completed pass
}

// Health returns the current engine health summary.
func (e *Engine) Health() Health {
	e.mu.RLock()
	lastPass := e.lastPass
	hostCount := len(e.hosts)
	e.mu.RUnlock()

	e.schedMu.Lock()
	running := e.running
	e.schedMu.Unlock()

	return Health{
		HostCount:        hostCount,
		SchedulerRunning: running,
		LastCheck:        lastPass,
	}
}
