package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleet-route-service/internal/adapters/traveltime"
	"fleet-route-service/internal/api/dto"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/services"
)

type stubStopRepo struct {
	stops []domain.Location
	err   error
}

func (r *stubStopRepo) ListStops(ctx context.Context) ([]domain.Location, error) {
	return r.stops, r.err
}

var (
	testDepot = domain.Location{Lat: 56.161147, Lon: 10.13455}
	testStop  = domain.Location{Lat: 56.17, Lon: 10.15}
)

func testRouter(repo *stubStopRepo) http.Handler {
	provider := traveltime.NewMockProvider([]traveltime.MockPair{
		{From: testDepot, To: testStop, Duration: 10 * time.Minute},
		{From: testStop, To: testDepot, Duration: 12 * time.Minute},
	})
	allocator := &services.Allocator{
		Matrix: &services.MatrixBuilder{Provider: provider},
		Solver: services.SolverConfig{
			StopServiceTime: 5,
			SkipPenalty:     10000,
			MaxIterations:   50,
			Seed:            1,
		},
	}
	classes := []domain.VehicleClass{{
		Name:       "cars",
		Mode:       domain.ModeCar,
		Priority:   1,
		WorkBudget: 480,
		Vehicles:   []domain.Vehicle{{Name: "car-1", Start: testDepot, End: testDepot}},
	}}
	return NewRouter(repo, allocator, classes)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&stubStopRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestListStops(t *testing.T) {
	repo := &stubStopRepo{stops: []domain.Location{testStop}}
	rec := httptest.NewRecorder()
	testRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stops", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res dto.ListStopsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Stops) != 1 || res.Stops[0].Lat != testStop.Lat {
		t.Fatalf("unexpected stops %+v", res.Stops)
	}
}

func TestListStopsMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&stubStopRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stops", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodGet {
		t.Fatalf("Allow = %q, want GET", got)
	}
}

func TestAllocateFromBody(t *testing.T) {
	body := strings.NewReader(`{"stops":[{"lat":56.17,"lon":10.15}]}`)
	rec := httptest.NewRecorder()
	testRouter(&stubStopRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/allocations", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res dto.AllocationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.ID == "" {
		t.Error("missing allocation id")
	}
	if len(res.Classes) != 1 || len(res.Classes[0].Routes) != 1 {
		t.Fatalf("unexpected classes %+v", res.Classes)
	}
	route := res.Classes[0].Routes[0]
	if route.Vehicle != "car-1" {
		t.Errorf("vehicle = %q, want car-1", route.Vehicle)
	}
	if len(route.Stops) != 3 {
		t.Errorf("expected depot-stop-depot route, got %+v", route.Stops)
	}
	if !strings.HasPrefix(route.MapsURL, "https://www.google.com/maps/dir/") {
		t.Errorf("unexpected maps url %q", route.MapsURL)
	}
	if len(res.Remaining) != 0 {
		t.Errorf("expected no remaining stops, got %+v", res.Remaining)
	}
}

func TestAllocateFallsBackToRepo(t *testing.T) {
	repo := &stubStopRepo{stops: []domain.Location{testStop}}
	rec := httptest.NewRecorder()
	testRouter(repo).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/allocations", strings.NewReader(`{}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAllocateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"stops":`},
		{"unknown field", `{"wat":1}`},
		{"two objects", `{}{}`},
		{"out of range", `{"stops":[{"lat":99,"lon":10}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			testRouter(&stubStopRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/allocations", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAllocateNoStops(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&stubStopRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/allocations", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
