package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticSource struct {
	report Report
	ok     bool
}

func (s staticSource) LastReport() (Report, bool) { return s.report, s.ok }

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("liveness = %d %q", rec.Code, rec.Body.String())
	}
}

func TestReportHandler(t *testing.T) {
	tests := []struct {
		name     string
		src      staticSource
		wantCode int
	}{
		{"no report yet", staticSource{}, http.StatusNotFound},
		{"healthy", staticSource{report: NewReport(entry("a", StatusSuccess), entry("b", StatusWarning)), ok: true}, http.StatusOK},
		{"failing", staticSource{report: NewReport(entry("a", StatusError)), ok: true}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ReportHandler(tt.src)(rec, httptest.NewRequest(http.MethodGet, "/health/report", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if !tt.src.ok {
				return
			}

			var doc Document
			if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if doc.ID != tt.src.report.ID.String() || len(doc.Checks) != tt.src.report.Len() {
				t.Errorf("doc = %+v", doc)
			}
		})
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux, staticSource{report: NewReport(entry("a", StatusSuccess)), ok: true}, nil)

	for _, path := range []string{"/healthz", "/health/report"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestRegisterHandlersGuard(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux, staticSource{report: NewReport(entry("a", StatusSuccess)), ok: true}, deny)

	tests := map[string]int{
		"/healthz":       http.StatusOK,
		"/health/report": http.StatusUnauthorized,
	}
	for path, want := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, want)
		}
	}
}
