package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbus/fleet-admin/internal/auth"
	"github.com/smartbus/fleet-admin/internal/models"
	"github.com/smartbus/fleet-admin/internal/store"
)

type testServer struct {
	router http.Handler
	store  *store.MemoryStore
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := store.NewMemoryStore()
	svc := auth.NewService("test-secret", time.Hour)

	hash, err := svc.HashPassword("admin123")
	require.NoError(t, err)
	_, err = st.CreateAdmin(context.Background(), "admin", hash)
	require.NoError(t, err)

	router := NewRouter(st, svc, RouterOptions{})

	rec := doRequest(router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	return &testServer{router: router, store: st, token: login.Token}
}

func doRequest(router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) admin(method, path string, body any) *httptest.ResponseRecorder {
	return doRequest(ts.router, method, path, ts.token, body)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := doRequest(ts.router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts.router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(ts.router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "admin123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(ts.router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/buses", "/api/drivers", "/api/routes", "/api/maintenance", "/api/dashboard"} {
		rec := doRequest(ts.router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}

	rec := doRequest(ts.router, http.MethodGet, "/api/buses", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBusCRUDFlow(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.admin(http.MethodPost, "/api/buses", map[string]any{"number": "GJ-04-1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		OK    bool   `json:"ok"`
		BusID string `json:"bus_id"`
	}
	decodeBody(t, rec, &created)
	assert.True(t, created.OK)
	require.NotEmpty(t, created.BusID)

	rec = ts.admin(http.MethodGet, "/api/buses/"+created.BusID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bus models.Bus
	decodeBody(t, rec, &bus)
	assert.Equal(t, "GJ-04-1234", bus.Number)
	assert.Equal(t, models.BusActive, bus.Status)

	rec = ts.admin(http.MethodPut, "/api/buses/"+created.BusID, map[string]any{"status": "Breakdown"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.admin(http.MethodGet, "/api/buses/"+created.BusID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &bus)
	assert.Equal(t, models.BusBreakdown, bus.Status)
	assert.Equal(t, "GJ-04-1234", bus.Number, "partial update keeps number")

	rec = ts.admin(http.MethodGet, "/api/buses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var buses []models.Bus
	decodeBody(t, rec, &buses)
	assert.Len(t, buses, 1)

	rec = ts.admin(http.MethodDelete, "/api/buses/"+created.BusID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.admin(http.MethodGet, "/api/buses/"+created.BusID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.admin(http.MethodDelete, "/api/buses/"+created.BusID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBusCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.admin(http.MethodPost, "/api/buses", map[string]any{"route_id": "r1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "number is required")

	rec = ts.admin(http.MethodPost, "/api/buses", map[string]any{"number": "B-1", "status": "Flying"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown status rejected")

	req := httptest.NewRequest(http.MethodPost, "/api/buses", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverAttendance(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.admin(http.MethodPost, "/api/drivers", map[string]any{"name": "Ramesh", "phone": "9876500000"})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		DriverID string `json:"driver_id"`
	}
	decodeBody(t, rec, &created)

	rec = ts.admin(http.MethodGet, "/api/drivers/"+created.DriverID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var driver models.Driver
	decodeBody(t, rec, &driver)
	assert.Equal(t, models.DriverAbsent, driver.Attendance)

	rec = ts.admin(http.MethodPost, "/api/drivers/"+created.DriverID+"/attendance", map[string]any{"status": "Present"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.admin(http.MethodGet, "/api/drivers/"+created.DriverID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &driver)
	assert.Equal(t, models.DriverPresent, driver.Attendance)

	rec = ts.admin(http.MethodPost, "/api/drivers/"+created.DriverID+"/attendance", map[string]any{"status": "Late"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.admin(http.MethodPost, "/api/drivers/no-such-id/attendance", map[string]any{"status": "Present"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.admin(http.MethodPost, "/api/routes", map[string]any{"name": "Route 7"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "start and end stops are required")

	rec = ts.admin(http.MethodPost, "/api/routes", map[string]any{
		"name": "Route 7", "start_stop": "ST Depot", "end_stop": "Ghogha Circle", "frequency_min": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "zero frequency rejected")

	rec = ts.admin(http.MethodPost, "/api/routes", map[string]any{
		"name": "Route 7", "start_stop": "ST Depot", "end_stop": "Ghogha Circle",
		"first_bus": "06:00", "last_bus": "22:30", "frequency_min": 15,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		RouteID string `json:"route_id"`
	}
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.RouteID)
}

func TestMaintenanceOrphanReferenceAllowed(t *testing.T) {
	ts := newTestServer(t)

	// Logging an issue against a bus id that does not exist is allowed.
	rec := ts.admin(http.MethodPost, "/api/maintenance", map[string]any{
		"bus_id": "ghost-bus", "issue": "brake wear",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &created)

	rec = ts.admin(http.MethodGet, "/api/maintenance/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var m models.MaintenanceLog
	decodeBody(t, rec, &m)
	assert.Equal(t, "ghost-bus", m.BusID)
	assert.Equal(t, models.MaintenancePending, m.Status)
	assert.NotEmpty(t, m.ReportedOn)
}

func TestLocationUpdate(t *testing.T) {
	ts := newTestServer(t)

	rec := doRequest(ts.router, http.MethodPost, "/api/public/location-update", "", map[string]any{
		"bus_id": "bus-1", "lat": 21.7643, "lng": 72.1511, "speed": 30.0, "occupancy": 45.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		OK        bool   `json:"ok"`
		Message   string `json:"message"`
		BusID     string `json:"bus_id"`
		Timestamp string `json:"timestamp"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, "Location updated", resp.Message)
	assert.Equal(t, "bus-1", resp.BusID)
	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	assert.NoError(t, err)

	loc, err := ts.store.GetLiveLocation(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, loc.Speed)
	assert.Equal(t, 45.0, loc.Occupancy)
}

func TestLocationUpdateValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing bus_id", map[string]any{"lat": 21.7, "lng": 72.1}},
		{"missing lat", map[string]any{"bus_id": "b1", "lng": 72.1}},
		{"missing lng", map[string]any{"bus_id": "b1", "lat": 21.7}},
		{"negative speed", map[string]any{"bus_id": "b1", "lat": 21.7, "lng": 72.1, "speed": -1.0}},
		{"negative occupancy", map[string]any{"bus_id": "b1", "lat": 21.7, "lng": 72.1, "occupancy": -5.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(ts.router, http.MethodPost, "/api/public/location-update", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPredictions(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.admin(http.MethodGet, "/api/predictions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "bus_id query param required")

	rec = ts.admin(http.MethodGet, "/api/predictions?bus_id=unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "no telemetry yet")

	rec = doRequest(ts.router, http.MethodPost, "/api/public/location-update", "", map[string]any{
		"bus_id": "bus-7", "lat": 21.7, "lng": 72.1, "speed": 30.0, "occupancy": 25.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.admin(http.MethodGet, "/api/predictions?bus_id=bus-7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var est struct {
		BusID           string `json:"bus_id"`
		PredictedETAMin int    `json:"predicted_eta_min"`
		CrowdLevel      string `json:"crowd_level"`
		Analysis        string `json:"analysis"`
	}
	decodeBody(t, rec, &est)
	assert.Equal(t, "bus-7", est.BusID)
	assert.Equal(t, "MEDIUM", est.CrowdLevel)
	assert.Positive(t, est.PredictedETAMin)
	assert.Contains(t, est.Analysis, "bus-7")
}

func TestPublicListings(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.admin(http.MethodPost, "/api/buses", map[string]any{"number": "B-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	// Listings need no token.
	for _, path := range []string{"/api/public/buses", "/api/public/routes", "/api/public/drivers"} {
		rec := doRequest(ts.router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}

	rec = doRequest(ts.router, http.MethodGet, "/api/public/buses", "", nil)
	var buses []models.Bus
	decodeBody(t, rec, &buses)
	assert.Len(t, buses, 1)
}

func TestDashboardSummary(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []map[string]any{
		{"number": "B-1"},
		{"number": "B-2", "status": "In Depot"},
		{"number": "B-3", "status": "Breakdown"},
	} {
		rec := ts.admin(http.MethodPost, "/api/buses", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.admin(http.MethodPost, "/api/drivers", map[string]any{"name": "A", "phone": "1", "attendance": "Present"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.admin(http.MethodPost, "/api/drivers", map[string]any{"name": "B", "phone": "2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.admin(http.MethodPost, "/api/maintenance", map[string]any{"bus_id": "b", "issue": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.admin(http.MethodPost, "/api/maintenance", map[string]any{"bus_id": "b", "issue": "y", "status": "Resolved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.admin(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary DashboardSummary
	decodeBody(t, rec, &summary)
	assert.Equal(t, 3, summary.TotalBuses)
	assert.Equal(t, 1, summary.ActiveBuses)
	assert.Equal(t, 1, summary.InactiveBuses)
	assert.Equal(t, 1, summary.BreakdownBuses)
	assert.Equal(t, 2, summary.TotalDrivers)
	assert.Equal(t, 1, summary.PresentDrivers)
	assert.Equal(t, 1, summary.AbsentDrivers)
	assert.Equal(t, 2, summary.TotalMaintenance)
	assert.Equal(t, 1, summary.PendingMaintenance)
	assert.Equal(t, 1, summary.ResolvedMaintenance)
}
