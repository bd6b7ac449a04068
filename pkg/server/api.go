package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pingwatch/pkg/monitor"
	"pingwatch/pkg/probe"
)

// timestampFormat matches what the dashboard renders verbatim.
const timestampFormat = "2006-01-02 15:04:05"

// HostResponse is the static per-host metadata returned by /api/hosts.
type HostResponse struct {
	IP           string `json:"ip"`
	Type         string `json:"type"`
	Color        string `json:"color"`
	KnownOffline bool   `json:"known_offline"`
}

// ResultResponse is one host's probe result as returned by the status
// and ping endpoints.
type ResultResponse struct {
	Status         string   `json:"status"`
	Latency        *float64 `json:"latency"`
	Timestamp      *string  `json:"timestamp"`
	Type           string   `json:"type"`
	Color          string   `json:"color"`
	KnownOffline   bool     `json:"known_offline"`
	ShowKnownTag   bool     `json:"show_known_tag"`
	ShowUnknownTag bool     `json:"show_unknown_tag"`
}

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status           string  `json:"status"`
	HostsCount       int     `json:"hosts_count"`
	MonitoringActive bool    `json:"monitoring_active"`
	LastUpdate       *string `json:"last_update"`
}

func toResultResponse(r probe.Result) ResultResponse {
	resp := ResultResponse{
		Status:         string(r.Status),
		Latency:        r.LatencyMs,
		Type:           r.Group,
		Color:          r.Color,
		KnownOffline:   r.KnownOffline,
		ShowKnownTag:   r.ShowKnownOfflineTag,
		ShowUnknownTag: r.ShowUnknownOfflineTag,
	}
	if !r.ObservedAt.IsZero() {
		ts := r.ObservedAt.Format(timestampFormat)
		resp.Timestamp = &ts
	}
	return resp
}

func (s *Server) snapshotResponse() map[string]ResultResponse {
	snap := s.engine.Snapshot()
	out := make(map[string]ResultResponse, len(snap))
	for addr, r := range snap {
		out[addr] = toResultResponse(r)
	}
	return out
}

func (s *Server) handleHosts(w http.ResponseWriter, _ *http.Request) {
	hosts := s.engine.Hosts()
	out := make([]HostResponse, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, HostResponse{
			IP:           h.Address,
			Type:         h.Group,
			Color:        h.Color,
			KnownOffline: h.KnownOffline,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

// Probes triggered over HTTP run detached from the request context: a
// client hanging up must not cancel in-flight probes, since a canceled
// probe reads as unreachable and would write a false red into the
// shared store.
func (s *Server) handlePingAll(w http.ResponseWriter, _ *http.Request) {
	s.engine.ForceRefresh(context.Background())
	writeJSON(w, http.StatusOK, s.snapshotResponse())
}

func (s *Server) handlePingOne(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "host")

	result, err := s.engine.ProbeOne(context.Background(), address)
	if err != nil {
		if errors.Is(err, monitor.ErrHostNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Host not found"})
			return
		}
		s.logger.Errorf("server: probe of %s failed: %v", address, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "probe failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]ResultResponse{
		address: toResultResponse(result),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	count, err := s.engine.Reload()
	if err != nil {
		s.logger.Errorf("server: reload failed: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "reloaded hosts",
		"count":   count,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := s.engine.Health()
	resp := HealthResponse{
		Status:           "healthy",
		HostsCount:       h.HostCount,
		MonitoringActive: h.SchedulerRunning,
	}
	if !h.LastCheck.IsZero() {
		ts := h.LastCheck.Format(timestampFormat)
		resp.LastUpdate = &ts
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
