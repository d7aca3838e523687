package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAction(t *testing.T) {
	m := New()
	m.ObserveAction("TRIVIA", "BUZZ", "ok")
	m.ObserveAction("TRIVIA", "BUZZ", "ok")
	m.ObserveAction("ROSCO", "", "invalid")

	if got := testutil.ToFloat64(m.GameActions.WithLabelValues("TRIVIA", "BUZZ", "ok")); got != 2 {
		t.Errorf("TRIVIA/BUZZ/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.GameActions.WithLabelValues("ROSCO", "none", "invalid")); got != 1 {
		t.Errorf("ROSCO/none/invalid = %v, want 1", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.SessionsCreated.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "jugayaprende_sessions_created_total 1") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}

func TestNewUsesIndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.StaleSessionsDeleted.Add(3)
	if got := testutil.ToFloat64(b.StaleSessionsDeleted); got != 0 {
		t.Errorf("registries leaked: %v", got)
	}
}
