package daemon

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-scanner/internal/report"
	"go.uber.org/zap"
)

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Running     bool   `json:"running"`
	LastRun     string `json:"last_run,omitempty"`
	LastSuccess string `json:"last_success,omitempty"`
	LastError   string `json:"last_error,omitempty"`
	NextRun     string `json:"next_run"`
}

// Router returns the daemon's HTTP routes.
func (d *Daemon) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", d.handleHealth).Methods("GET")
	router.HandleFunc("/reports/latest", d.handleLatestReport).Methods("GET")

	if d.metrics != nil {
		router.Handle("/metrics", d.metrics.Handler()).Methods("GET")
	}

	return router
}

func (d *Daemon) handleHealth(w http.ResponseWriter, _ *http.Request) {
	d.mu.RLock()
	response := healthResponse{
		Status:  "ok",
		Uptime:  time.Since(d.started).Round(time.Second).String(),
		Running: d.running.Load(),
		NextRun: d.schedule.Next(time.Now()).Format(time.RFC3339),
	}

	if !d.lastRun.IsZero() {
		response.LastRun = d.lastRun.Format(time.RFC3339)
	}

	if !d.lastSuccess.IsZero() {
		response.LastSuccess = d.lastSuccess.Format(time.RFC3339)
	}

	if d.lastErr != nil {
		response.Status = "degraded"
		response.LastError = d.lastErr.Error()
	}
	d.mu.RUnlock()

	code := http.StatusOK
	if response.Status != "ok" {
		code = http.StatusServiceUnavailable
	}

	d.writeJSON(w, code, response)
}

func (d *Daemon) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	latest, err := d.Latest(r.Context())
	if err != nil {
		d.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})

		return
	}

	if latest.IsNone() {
		d.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report yet"})

		return
	}

	data, err := report.RenderJSON(latest.Unwrap())
	if err != nil {
		d.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		d.logger.Debug("Failed to write report response", zap.Error(err))
	}
}

func (d *Daemon) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		d.logger.Debug("Failed to write response", zap.Error(err))
	}
}
