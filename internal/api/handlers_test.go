package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuelacn/flightdesk/internal/agent"
	"github.com/vuelacn/flightdesk/internal/api"
	"github.com/vuelacn/flightdesk/internal/config"
	"github.com/vuelacn/flightdesk/internal/flights"
	"github.com/vuelacn/flightdesk/internal/storage/sqlite"
	"github.com/vuelacn/flightdesk/internal/tools"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

func newTestServerWithDB(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vuelos.db")
	db, err := sqlite.Open(path, 5000, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db, true, logger.Nop()))

	cfg := config.Default()
	service := flights.NewService(
		sqlite.NewFlightStorage(db, logger.Nop()),
		sqlite.NewReservationStorage(db, logger.Nop()),
		cfg.Storage.SeatsPerFlight,
		logger.Nop(),
	)

	registry := tools.NewRegistry(logger.Nop())
	require.NoError(t, tools.RegisterFlightTools(registry, service))

	assistant := agent.NewService(cfg.Agent, registry, logger.Nop())
	router := api.NewRouter(service, registry, assistant, cfg, logger.Nop())

	server := httptest.NewServer(router.Routes())
	t.Cleanup(server.Close)
	return server, db
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server, _ := newTestServerWithDB(t)
	return server
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func doJSON(t *testing.T, method, url string, payload any) (int, map[string]any) {
	t.Helper()
	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(method, url, bytes.NewReader(encoded))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestGetFlightStatus(t *testing.T) {
	server := newTestServer(t)

	status, body := getJSON(t, server.URL+"/api/v1/flights/PSO-ASU-101/status")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Active", body["status"])
	assert.Equal(t, "PSO", body["origin"])
}

func TestGetFlightStatusUnknown(t *testing.T) {
	server := newTestServer(t)

	// An unknown flight is data, not an error
	status, body := getJSON(t, server.URL+"/api/v1/flights/ZZ9999/status")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Unknown", body["status"])
	assert.Nil(t, body["origin"])
}

func TestGetFlightOptions(t *testing.T) {
	server := newTestServer(t)

	status, body := getJSON(t, server.URL+"/api/v1/flights/options?origin=PSO&destination=ASU&date=2025-10-13")
	assert.Equal(t, http.StatusOK, status)

	options, ok := body["options"].([]any)
	require.True(t, ok)
	require.Len(t, options, 2)
	first := options[0].(map[string]any)
	assert.Equal(t, float64(1), first["seat"])
}

func TestGetFlightOptionsMissingParams(t *testing.T) {
	server := newTestServer(t)

	status, body := getJSON(t, server.URL+"/api/v1/flights/options?origin=PSO")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "error")
}

func TestReservationLifecycle(t *testing.T) {
	server := newTestServer(t)
	reservation := map[string]any{"flight": "PSO-ASU-101", "seat": 1, "passenger": "P1"}

	status, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/reservations", reservation)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Reserved", body["status"])

	// Conflicting reserve on the same seat
	conflicting := map[string]any{"flight": "PSO-ASU-101", "seat": 1, "passenger": "P2"}
	status, body = doJSON(t, http.MethodPost, server.URL+"/api/v1/reservations", conflicting)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "seat already reserved")

	status, body = getJSON(t, server.URL+"/api/v1/reservations/verify?flight=PSO-ASU-101&passenger=P1")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["reserved"])
	assert.Equal(t, float64(1), body["seat"])

	status, body = doJSON(t, http.MethodDelete, server.URL+"/api/v1/reservations", reservation)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cancelled", body["status"])

	status, body = doJSON(t, http.MethodDelete, server.URL+"/api/v1/reservations", reservation)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "reservation not found")
}

func TestReserveInvalidSeat(t *testing.T) {
	server := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/reservations",
		map[string]any{"flight": "PSO-ASU-101", "seat": 21, "passenger": "P1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "error")
}

func TestListTools(t *testing.T) {
	server := newTestServer(t)

	status, body := getJSON(t, server.URL+"/api/v1/tools")
	assert.Equal(t, http.StatusOK, status)
	defs, ok := body["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, defs, 5)
}

func TestInvokeToolEndpoint(t *testing.T) {
	server := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/tools/flight_status",
		map[string]any{"flight": "PSO-ASU-101"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Active", body["status"])
}

func TestInvokeToolEndpointError(t *testing.T) {
	server := newTestServer(t)

	// Tool-layer failures still answer 200 with an error payload: the
	// orchestration layer distinguishes outcomes by shape
	status, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/tools/no_such_tool",
		map[string]any{})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["error"], "unknown tool")
}

func TestStoreUnreachableMapsTo503(t *testing.T) {
	server, db := newTestServerWithDB(t)
	require.NoError(t, db.Close())

	status, body := getJSON(t, server.URL+"/api/v1/flights/PSO-ASU-101/status")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "error")

	status, body = doJSON(t, http.MethodPost, server.URL+"/api/v1/reservations",
		map[string]any{"flight": "PSO-ASU-101", "seat": 1, "passenger": "P1"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "error")
}

func TestChatDisabled(t *testing.T) {
	server := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/chat",
		map[string]any{"message": "estado del vuelo PSO-ASU-101?"})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "error")
}

func TestHealth(t *testing.T) {
	server := newTestServer(t)

	status, body := getJSON(t, server.URL+"/api/v1/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
