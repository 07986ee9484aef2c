package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.RecordSend(SendOK)
	m.RecordPersistenceFailure("save_message")
	m.ObserveAI("gemini", nil, time.Second)
	m.RecordMealPlan(MealPlanned)
	m.SetActiveSessions(3)
	m.ObserveHTTP("GET", "/healthz", 200, time.Millisecond)
	m.RecordDLQPurged(2)
}

func TestRecording(t *testing.T) {
	t.Parallel()
	m := New()

	m.RecordSend(SendOK)
	m.RecordSend(SendOK)
	m.RecordSend(SendResponseError)
	if got := testutil.ToFloat64(m.sends.WithLabelValues(SendOK)); got != 2 {
		t.Errorf("sends{ok} = %v, want 2", got)
	}

	m.ObserveAI("gemini", errors.New("boom"), 2*time.Second)
	if got := testutil.ToFloat64(m.aiRequests.WithLabelValues("gemini", "error")); got != 1 {
		t.Errorf("ai requests{gemini,error} = %v, want 1", got)
	}

	m.RecordDLQPurged(3)
	m.RecordDLQPurged(0)
	if got := testutil.ToFloat64(m.dlqPurged); got != 3 {
		t.Errorf("dlq purged = %v, want 3", got)
	}

	m.SetActiveSessions(4)
	if got := testutil.ToFloat64(m.activeSessions); got != 4 {
		t.Errorf("active sessions = %v, want 4", got)
	}
}

func TestHandler(t *testing.T) {
	t.Parallel()
	m := New()
	m.RecordMealPlan(MealPlanned)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `cookwithai_meals_plans_total{result="planned"} 1`) {
		t.Errorf("expected meal plan counter in exposition, got:\n%s", body)
	}
}
