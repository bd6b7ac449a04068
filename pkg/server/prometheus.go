package server

import (
	"fmt"
	"net/http"
	"strings"

	"pingwatch/pkg/probe"
)

// handleMetrics writes Prometheus-formatted metrics for all hosts.
// host_up is 1 for green/yellow, 0 for red, and omitted while a host
// is still unknown. host_latency_ms is omitted when no figure was
// measurable.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	w.Write([]byte("# HELP host_up Whether the host is reachable (1=up, 0=down).\n"))
	w.Write([]byte("# TYPE host_up gauge\n"))
	w.Write([]byte("# HELP host_latency_ms Last measured round-trip time in milliseconds.\n"))
	w.Write([]byte("# TYPE host_latency_ms gauge\n"))

	for addr, r := range s.engine.Snapshot() {
		if r.Status == probe.StatusUnknown {
			continue
		}
		host := sanitizePrometheusLabel(addr)
		group := sanitizePrometheusLabel(r.Group)

		up := 0
		if r.Status == probe.StatusGreen || r.Status == probe.StatusYellow {
			up = 1
		}
		w.Write(fmt.Appendf([]byte{},
			"host_up{host=\"%s\", group=\"%s\"} %d\n", host, group, up))

		if r.LatencyMs != nil {
			w.Write(fmt.Appendf([]byte{},
				"host_latency_ms{host=\"%s\", group=\"%s\"} %g\n", host, group, *r.LatencyMs))
		}
	}
}

// sanitizePrometheusLabel escapes backslash, double-quote, and newline
// characters in a Prometheus label value per the exposition format spec.
func sanitizePrometheusLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
