package metric

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistry_CountersAppearInExposition(t *testing.T) {
	r := NewRegistry()

	r.ConnectionsTotal.Inc()
	r.ActiveConnections.Set(2)
	r.Handshakes.WithLabelValues(ResultAuthorized).Inc()
	r.Handshakes.WithLabelValues(ResultUnknownTok).Add(3)
	r.AdminCommands.WithLabelValues("add_admin").Inc()
	r.DroppedFrames.Inc()
	r.Administrators.Set(5)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"admingate_connections_total 1",
		"admingate_active_connections 2",
		`admingate_handshakes_total{result="authorized"} 1`,
		`admingate_handshakes_total{result="unknown_token"} 3`,
		`admingate_admin_commands_total{op="add_admin"} 1`,
		"admingate_dropped_frames_total 1",
		"admingate_administrators 5",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestRegistry_Independent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.ConnectionsTotal.Inc()

	fams, err := b.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range fams {
		if f.GetName() == "admingate_connections_total" {
			if f.GetMetric()[0].GetCounter().GetValue() != 0 {
				t.Fatal("registries share state")
			}
		}
	}
}
