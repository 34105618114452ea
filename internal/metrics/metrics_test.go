package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTool(t *testing.T) {
	before := testutil.ToFloat64(toolCalls.WithLabelValues("summarizer", "success"))
	RecordTool("summarizer", "success")
	after := testutil.ToFloat64(toolCalls.WithLabelValues("summarizer", "success"))
	if after-before != 1 {
		t.Fatalf("counter delta = %v, want 1", after-before)
	}
}

func TestInstrumentUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Instrument)
	r.Get("/tools/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler())

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tools/summarizer", nil))
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/tools/{name}", "418")); got < 1 {
		t.Fatalf("requests_total for route pattern = %v", got)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "dashboard_http_requests_total") {
		t.Fatalf("metrics endpoint missing dashboard series")
	}
}
