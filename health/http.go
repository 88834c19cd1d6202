package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Report is the JSON body of the detailed health endpoint.
type Report struct {
	Status    Status                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckReport `json:"checks,omitempty"`
}

// CheckReport is one check within a Report.
type CheckReport struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewReport builds a Report from results.
func NewReport(results map[string]Result) Report {
	report := Report{
		Status:    Overall(results),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]CheckReport, len(results)),
	}
	for name, r := range results {
		check := CheckReport{
			Status:   r.Status,
			Message:  r.Message,
			Duration: r.Duration.String(),
			Details:  r.Details,
		}
		if r.Error != nil {
			check.Error = r.Error.Error()
		}
		report.Checks[name] = check
	}
	return report
}

func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// LivenessHandler reports that the process is serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler runs every check and answers OK, DEGRADED, or UNHEALTHY.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := Overall(agg.CheckAll(r.Context()))

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(httpStatus(status))
		switch status {
		case StatusHealthy:
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// DetailedHandler writes the full Report as JSON.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := NewReport(agg.CheckAll(r.Context()))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus(report.Status))
		_ = json.NewEncoder(w).Encode(report)
	}
}

// RegisterLiveness mounts /healthz on r for GET and HEAD. It reveals nothing
// beyond the process answering, so it may sit outside any access control.
func RegisterLiveness(r *mux.Router) {
	r.Handle("/healthz", LivenessHandler()).Methods(http.MethodGet, http.MethodHead)
}

// RegisterChecks mounts /readyz and /health on r for GET and HEAD. Their
// answers describe the security posture of the gate; mount them behind it.
func RegisterChecks(r *mux.Router, agg *Aggregator) {
	r.Handle("/readyz", ReadinessHandler(agg)).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/health", DetailedHandler(agg)).Methods(http.MethodGet, http.MethodHead)
}
