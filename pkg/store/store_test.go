package store

import (
	"testing"
	"time"

	"pingwatch/pkg/probe"
	"pingwatch/pkg/topology"
)

func f64(v float64) *float64 { return &v }

func greenResult(group string) probe.Result {
	return probe.Result{
		Status:     probe.StatusGreen,
		LatencyMs:  f64(12.5),
		ObservedAt: time.Now(),
		Group:      group,
		Color:      "#198754",
	}
}

func TestSeed_InsertsUnknownPlaceholder(t *testing.T) {
	s := New()
	s.Seed(topology.Host{Address: "10.0.0.1", Group: "Servers", Color: "#198754"})

	r, ok := s.Get("10.0.0.1")
	if !ok {
		t.Fatal("expected seeded entry")
	}
	if r.Status != probe.StatusUnknown {
		t.Errorf("expected unknown status, got %v", r.Status)
	}
	if r.LatencyMs != nil {
		t.Error("expected no latency on placeholder")
	}
	if !r.ObservedAt.IsZero() {
		t.Error("expected zero timestamp on placeholder")
	}
	if r.Group != "Servers" {
		t.Errorf("expected group metadata on placeholder, got %q", r.Group)
	}
}

func TestSeed_PreservesExistingResult(t *testing.T) {
	s := New()
	s.Write("10.0.0.1", greenResult("Servers"))

	// Re-seeding the same address, e.g. on config reload, must not
	// erase the last-known status.
	s.Seed(topology.Host{Address: "10.0.0.1", Group: "Servers"})

	r, _ := s.Get("10.0.0.1")
	if r.Status != probe.StatusGreen {
		t.Errorf("expected green to survive re-seed, got %v", r.Status)
	}
}

func TestWrite_ReplacesEntry(t *testing.T) {
	s := New()
	s.Write("10.0.0.1", greenResult("Servers"))
	s.Write("10.0.0.1", probe.Result{Status: probe.StatusRed, ObservedAt: time.Now()})

	r, _ := s.Get("10.0.0.1")
	if r.Status != probe.StatusRed {
		t.Errorf("expected red after overwrite, got %v", r.Status)
	}
	if s.Len() != 1 {
		t.Errorf("expected exactly one entry, got %d", s.Len())
	}
}

func TestSnapshot_DeepCopy(t *testing.T) {
	s := New()
	s.Write("10.0.0.1", greenResult("Servers"))

	snap := s.Snapshot()
	entry := snap["10.0.0.1"]
	*entry.LatencyMs = 9999
	entry.Status = probe.StatusRed
	snap["10.0.0.1"] = entry
	snap["10.0.0.2"] = probe.Result{}

	r, _ := s.Get("10.0.0.1")
	if *r.LatencyMs != 12.5 {
		t.Errorf("snapshot mutation leaked into store: latency %v", *r.LatencyMs)
	}
	if r.Status != probe.StatusGreen {
		t.Errorf("snapshot mutation leaked into store: status %v", r.Status)
	}
	if s.Len() != 1 {
		t.Errorf("snapshot mutation leaked into store: len %d", s.Len())
	}
}

func TestSnapshot_Idempotent(t *testing.T) {
	s := New()
	s.Write("10.0.0.1", greenResult("Servers"))
	s.Write("10.0.0.2", probe.Result{Status: probe.StatusRed, KnownOffline: true})

	a := s.Snapshot()
	b := s.Snapshot()

	if len(a) != len(b) {
		t.Fatalf("snapshots differ in size: %d vs %d", len(a), len(b))
	}
	for addr, ra := range a {
		rb := b[addr]
		if ra.Status != rb.Status || ra.Group != rb.Group ||
			ra.ShowKnownOfflineTag != rb.ShowKnownOfflineTag ||
			ra.ShowUnknownOfflineTag != rb.ShowUnknownOfflineTag {
			t.Errorf("host %s: snapshots differ: %+v vs %+v", addr, ra, rb)
		}
	}
}

func TestSnapshot_TagDerivation(t *testing.T) {
	tests := []struct {
		name         string
		status       probe.Status
		knownOffline bool
		wantKnown    bool
		wantUnknown  bool
	}{
		{"red known offline", probe.StatusRed, true, true, false},
		{"red unexpected offline", probe.StatusRed, false, false, true},
		{"green known offline", probe.StatusGreen, true, false, false},
		{"green", probe.StatusGreen, false, false, false},
		{"yellow known offline", probe.StatusYellow, true, false, false},
		{"unknown known offline", probe.StatusUnknown, true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			s.Write("h", probe.Result{Status: tt.status, KnownOffline: tt.knownOffline})

			r := s.Snapshot()["h"]
			if r.ShowKnownOfflineTag != tt.wantKnown {
				t.Errorf("known tag = %v, want %v", r.ShowKnownOfflineTag, tt.wantKnown)
			}
			if r.ShowUnknownOfflineTag != tt.wantUnknown {
				t.Errorf("unknown tag = %v, want %v", r.ShowUnknownOfflineTag, tt.wantUnknown)
			}
			if r.ShowKnownOfflineTag && r.ShowUnknownOfflineTag {
				t.Error("tags must be mutually exclusive")
			}
		})
	}
}

func TestGet_Missing(t *testing.T) {
	s := New()
	if _, ok := s.Get("10.9.9.9"); ok {
		t.Error("expected miss for unknown address")
	}
}
