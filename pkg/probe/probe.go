// Package probe executes reachability checks against single hosts.
//
// It shells out to the system ping command, parses the output for a
// round-trip time, and classifies the outcome as green, yellow, or red.
// A probe never fails outward: every failure mode (spawn error, timeout,
// non-zero exit, unresolvable address) is absorbed into a red Result.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"pingwatch/pkg/topology"
)

// Status is the classified outcome of a probe.
type Status string

const (
	// StatusUnknown means the host has not been probed yet.
	StatusUnknown Status = "unknown"
	// StatusGreen means reachable with latency at or under the threshold.
	StatusGreen Status = "green"
	// StatusYellow means reachable but slower than the threshold.
	StatusYellow Status = "yellow"
	// StatusRed means unreachable.
	StatusRed Status = "red"
)

const (
	// LatencyThresholdMs is the green/yellow boundary in milliseconds.
	LatencyThresholdMs = 50.0

	// DefaultSoftTimeout is the deadline passed to the ping command.
	DefaultSoftTimeout = 3 * time.Second

	// DefaultHardTimeout is the execution ceiling for the command
	// itself. Exceeding it counts as unreachable.
	DefaultHardTimeout = 5 * time.Second
)

// Result is the self-contained outcome of one probe. Group metadata is
// copied from the Host at probe time so the result stays valid across
// topology reloads. The two tag fields are derived at snapshot time and
// are never persisted.
type Result struct {
	Status       Status
	LatencyMs    *float64
	ObservedAt   time.Time // zero until the host has been probed
	Group        string
	Color        string
	KnownOffline bool

	ShowKnownOfflineTag   bool
	ShowUnknownOfflineTag bool
}

// Pinger checks reachability of a single host.
type Pinger interface {
	Probe(ctx context.Context, h topology.Host) Result
}

// ExecPinger implements Pinger using the system ping command.
type ExecPinger struct {
	softTimeout time.Duration
	hardTimeout time.Duration
	logger      *logrus.Logger
}

// NewExecPinger creates an ExecPinger with the default timeouts.
func NewExecPinger(logger *logrus.Logger) *ExecPinger {
	return &ExecPinger{
		softTimeout: DefaultSoftTimeout,
		hardTimeout: DefaultHardTimeout,
		logger:      logger,
	}
}

// Probe sends a single echo request to the host and classifies the
// outcome. It always returns a Result.
func (p *ExecPinger) Probe(ctx context.Context, h topology.Host) Result {
	ctx, cancel := context.WithTimeout(ctx, p.hardTimeout)
	defer cancel()

	timeoutSec := fmt.Sprintf("%.0f", p.softTimeout.Seconds())
	cmd := exec.CommandContext(ctx, "ping", "-c", "1", "-W", timeoutSec, h.Address)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		p.logger.Debugf("probe: ping %s: %v", h.Address, err)
		return Unreachable(h)
	}

	latency, found := parseLatency(out.String())
	if !found {
		p.logger.Debugf("probe: ping %s: no latency figure in output", h.Address)
	}

	r := Result{
		ObservedAt:   time.Now(),
		Group:        h.Group,
		Color:        h.Color,
		KnownOffline: h.KnownOffline,
	}
	if found {
		r.LatencyMs = &latency
	}
	r.Status = Classify(true, r.LatencyMs)
	return r
}

// Unreachable builds a red Result for the host, stamped now.
func Unreachable(h topology.Host) Result {
	return Result{
		Status:       StatusRed,
		ObservedAt:   time.Now(),
		Group:        h.Group,
		Color:        h.Color,
		KnownOffline: h.KnownOffline,
	}
}

// Classify maps a probe outcome to a status. Reachability is the
// primary signal: latency only downgrades green to yellow, and a
// missing figure on a reachable host still classifies green.
func Classify(reachable bool, latencyMs *float64) Status {
	if !reachable {
		return StatusRed
	}
	if latencyMs != nil && *latencyMs > LatencyThresholdMs {
		return StatusYellow
	}
	return StatusGreen
}
