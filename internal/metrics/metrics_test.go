package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCounters(t *testing.T) {
	Init()
	Init()

	ObserveRun("success", 150*time.Millisecond)
	AddPagesCopied(3)
	IncPageError()
	IncInputSkipped()
	IncRepair(true)
	IncRepair(false)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`pdfsm_runs_total{status="success"}`,
		"pdfsm_pages_copied_total",
		"pdfsm_page_errors_total",
		"pdfsm_inputs_skipped_total",
		`pdfsm_repairs_total{result="failed"}`,
		"pdfsm_run_duration_seconds_bucket",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
