package server

import (
	"encoding/json"
	"net/http"
	"time"
)

type probeResponse struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func writeProbe(w http.ResponseWriter, code int, resp probeResponse) {
	resp.Timestamp = time.Now().Unix()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// healthHandler answers liveness probes.
type healthHandler struct{}

func (healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeProbe(w, http.StatusOK, probeResponse{Status: "ok"})
}

// readyHandler answers readiness probes.
type readyHandler struct {
	checker ReadinessChecker
}

func (h readyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.checker != nil {
		if err := h.checker.Ready(); err != nil {
			writeProbe(w, http.StatusServiceUnavailable, probeResponse{Status: "not_ready", Error: err.Error()})
			return
		}
	}
	writeProbe(w, http.StatusOK, probeResponse{Status: "ready"})
}
