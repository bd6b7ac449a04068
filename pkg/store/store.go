// Package store holds the latest probe result per host address.
//
// A single mutex guards the whole map. Write volume is one write per
// host per interval, so coarse locking is fine at the expected scale
// of tens to low hundreds of hosts. Readers only ever receive deep
// copies, never references into the map.
package store

import (
	"sync"

	"pingwatch/pkg/probe"
	"pingwatch/pkg/topology"
)

// Store is a thread-safe cache of the latest result per host address.
type Store struct {
	mu      sync.RWMutex
	results map[string]probe.Result
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		results: make(map[string]probe.Result),
	}
}

// Write replaces the stored result for the address. The lock serializes
// full-entry replacement, so readers never observe a partial result.
func (s *Store) Write(address string, r probe.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[address] = r
}

// Seed inserts an unknown-status placeholder for the host unless a
// result is already present. Reloading the topology must not erase the
// last-known status of hosts that stayed in the configuration.
func (s *Store) Seed(h topology.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[h.Address]; exists {
		return
	}
	s.results[h.Address] = probe.Result{
		Status:       probe.StatusUnknown,
		Group:        h.Group,
		Color:        h.Color,
		KnownOffline: h.KnownOffline,
	}
}

// Get returns a copy of the stored result for the address.
func (s *Store) Get(address string) (probe.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[address]
	if !ok {
		return probe.Result{}, false
	}
	return copyResult(r), true
}

// Snapshot returns a deep copy of the entire result set, safe for the
// caller to retain or mutate. The offline display tags are derived here
// at read time: a known tag for red hosts marked known-offline, an
// unknown tag for red hosts that are not. Both are false for any other
// status, so they are mutually exclusive by construction.
func (s *Store) Snapshot() map[string]probe.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]probe.Result, len(s.results))
	for addr, r := range s.results {
		c := copyResult(r)
		c.ShowKnownOfflineTag = c.Status == probe.StatusRed && c.KnownOffline
		c.ShowUnknownOfflineTag = c.Status == probe.StatusRed && !c.KnownOffline
		snap[addr] = c
	}
	return snap
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// copyResult clones r so the caller cannot reach back into the map.
func copyResult(r probe.Result) probe.Result {
	c := r
	if r.LatencyMs != nil {
		v := *r.LatencyMs
		c.LatencyMs = &v
	}
	return c
}
