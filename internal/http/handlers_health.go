package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if len(s.templates) == len(pages) {
		checks["templates"] = "ok"
	} else {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}

	switch {
	case s.pinger == nil:
		checks["backend"] = "not_checked"
	default:
		if err := s.pinger.Ping(ctx); err != nil {
			checks["backend"] = "failed: " + errorMessage(err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
			s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		} else {
			checks["backend"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics reports the request, rate limit and detection counters.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	req := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int64(s.now().Sub(s.started).Seconds()),
		"requests": map[string]int64{
			"total":             req.TotalRequests,
			"client_errors":     req.ClientErrors,
			"server_errors":     req.ServerErrors,
			"avg_response_time": req.AverageResponseTime,
		},
		"rate_limit": map[string]int64{
			"rejected":       rl.TotalHits,
			"active_clients": rl.ClientCount,
		},
		"security": map[string]int64{
			"suspicious_requests": sec.SuspiciousRequests,
			"invalid_ip_attempts": sec.InvalidIPAttempts,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
