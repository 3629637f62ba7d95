package health

import (
	"encoding/json"
	"net/http"
)

// ReportSource provides the most recent Report.
type ReportSource interface {
	LastReport() (Report, bool)
}

// LivenessHandler returns an HTTP handler for liveness probes.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReportHandler serves the last report as JSON. It responds 404 until a
// report exists and 503 when the report contains an Error entry.
func ReportHandler(src ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		report, ok := src.LastReport()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": ErrNoReport.Error(),
			})
			return
		}

		if report.Overall() == StatusError {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(report.Document())
	}
}

// RegisterHandlers registers the liveness and report handlers on mux. The
// report handler is wrapped by guard when it is non-nil; liveness never is.
func RegisterHandlers(mux *http.ServeMux, src ReportSource, guard func(http.Handler) http.Handler) {
	mux.HandleFunc("/healthz", LivenessHandler())
	var report http.Handler = ReportHandler(src)
	if guard != nil {
		report = guard(report)
	}
	mux.Handle("/health/report", report)
}
