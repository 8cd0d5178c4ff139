package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testScenario = `
name = "dispatch"
start = 2026-01-05T00:00:00Z
periods = 3
step = "1h"
profiles = "profiles.csv"

[[bus]]
label = "electricity"
excess = true

[[source]]
label = "gas-plant"
bus = "electricity"
capacity = 50.0
marginal_cost = 30.0

[[renewable]]
label = "wind"
bus = "electricity"
capacity = 20.0
profile = "wind"

[[demand]]
label = "demand"
bus = "electricity"
amount = 40.0
profile = "load"
`

const testProfiles = `wind,load
0.5,1.0
0.9,0.8
0.1,0.6
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	scenarioDir := filepath.Join(dir, "dispatch")
	if err := os.MkdirAll(scenarioDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(scenarioDir, "scenario.toml"), []byte(testScenario), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	if err := os.WriteFile(filepath.Join(scenarioDir, "profiles.csv"), []byte(testProfiles), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	s, err := New(Config{ScenarioDir: dir})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListScenarios(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenarios")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var infos []scenarioInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &infos); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d scenarios, want 1", len(infos))
	}
	if infos[0].Name != "dispatch" || infos[0].Periods != 3 {
		t.Errorf("scenario = %+v, want dispatch with 3 periods", infos[0])
	}
	if len(infos[0].Buses) != 1 || infos[0].Buses[0] != "electricity" {
		t.Errorf("buses = %v, want [electricity]", infos[0].Buses)
	}
}

func TestScenarioDetailAndErrors(t *testing.T) {
	s := newTestServer(t)

	if rec := get(t, s, "/api/scenarios/dispatch/"); rec.Code != http.StatusOK {
		t.Errorf("detail status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if rec := get(t, s, "/api/scenarios/absent/"); rec.Code != http.StatusNotFound {
		t.Errorf("absent scenario status = %d, want 404", rec.Code)
	}
	if rec := get(t, s, "/api/scenarios/..%2fdispatch/"); rec.Code != http.StatusBadRequest &&
		rec.Code != http.StatusNotFound {
		t.Errorf("traversal name status = %d, want 400 or 404", rec.Code)
	}
}

func TestBalanceSVG(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/scenarios/dispatch/buses/electricity/balance.svg?ticks=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body does not look like SVG")
	}
}

func TestBalanceSmoothAndWindow(t *testing.T) {
	s := newTestServer(t)

	path := "/api/scenarios/dispatch/buses/electricity/balance.svg" +
		"?mode=smooth&from=2026-01-05T01:00:00Z&reverse=true"
	if rec := get(t, s, path); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
}

func TestBalanceBadRequests(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		path string
		want int
	}{
		{"unknown mode", "/api/scenarios/dispatch/buses/electricity/balance.svg?mode=wavy", http.StatusBadRequest},
		{"bad timestamp", "/api/scenarios/dispatch/buses/electricity/balance.svg?from=yesterday", http.StatusBadRequest},
		{"bad ticks", "/api/scenarios/dispatch/buses/electricity/balance.svg?ticks=-2", http.StatusBadRequest},
		{"window past horizon", "/api/scenarios/dispatch/buses/electricity/balance.svg?from=2027-01-01T00:00:00Z", http.StatusBadRequest},
		{"unknown bus", "/api/scenarios/dispatch/buses/heat/balance.svg", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, s, tt.path); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestBalanceCaching(t *testing.T) {
	s := newTestServer(t)

	first := get(t, s, "/api/scenarios/dispatch/buses/electricity/balance.svg")
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d: %s", first.Code, first.Body)
	}
	second := get(t, s, "/api/scenarios/dispatch/buses/electricity/balance.svg")
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("repeated requests render different artifacts")
	}
}

func TestNewRejectsMissingDir(t *testing.T) {
	if _, err := New(Config{ScenarioDir: filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Fatal("New() accepted a missing scenario directory")
	}
	if _, err := New(Config{}); err == nil {
		t.Fatal("New() accepted an empty scenario directory")
	}
}
