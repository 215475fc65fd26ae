package tools_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuelacn/flightdesk/internal/flights"
	"github.com/vuelacn/flightdesk/internal/storage/sqlite"
	"github.com/vuelacn/flightdesk/internal/tools"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vuelos.db")
	db, err := sqlite.Open(path, 5000, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db, true, logger.Nop()))

	service := flights.NewService(
		sqlite.NewFlightStorage(db, logger.Nop()),
		sqlite.NewReservationStorage(db, logger.Nop()),
		flights.DefaultSeatCount,
		logger.Nop(),
	)

	registry := tools.NewRegistry(logger.Nop())
	require.NoError(t, tools.RegisterFlightTools(registry, service))
	return registry
}

func TestDefinitions(t *testing.T) {
	registry := newTestRegistry(t)

	defs := registry.Definitions()
	require.Len(t, defs, 5)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.NotNil(t, def.Parameters)
	}
	assert.Equal(t, []string{
		"flight_status",
		"flight_options",
		"reserve_flight",
		"cancel_reservation",
		"verify_reservation",
	}, names)
}

func TestInvokeFlightStatus(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "flight_status", map[string]any{
		"flight": "PSO-ASU-101",
	})
	assert.Equal(t, "PSO-ASU-101", result["flight"])
	assert.Equal(t, "Active", result["status"])
	assert.Equal(t, "PSO", result["origin"])
}

func TestInvokeFlightStatusUnknown(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "flight_status", map[string]any{
		"flight": "ZZ9999",
	})
	assert.Equal(t, "Unknown", result["status"])
	assert.Nil(t, result["origin"])
	assert.Nil(t, result["time"])
	assert.NotContains(t, result, "error")
}

func TestInvokeUnknownTool(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "board_flight", nil)
	assert.Contains(t, result["error"], "unknown tool")
}

func TestInvokeMissingArgument(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "flight_status", map[string]any{})
	assert.Contains(t, result, "error")
}

func TestInvokeWrongArgumentType(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "reserve_flight", map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      "window",
		"passenger": "P1",
	})
	assert.Contains(t, result, "error")
}

func TestInvokeSeatOutOfSchemaRange(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "reserve_flight", map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      99,
		"passenger": "P1",
	})
	assert.Contains(t, result, "error")
}

func TestInvokeReserveConflict(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	args := map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      1,
		"passenger": "P1",
	}
	result := registry.Invoke(ctx, "reserve_flight", args)
	require.NotContains(t, result, "error")
	assert.Equal(t, "Reserved", result["status"])

	args["passenger"] = "P2"
	result = registry.Invoke(ctx, "reserve_flight", args)
	assert.Contains(t, result["error"], "seat already reserved")
}

func TestInvokeOptionsAfterReserve(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	result := registry.Invoke(ctx, "reserve_flight", map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      1,
		"passenger": "P1",
	})
	require.NotContains(t, result, "error")

	result = registry.Invoke(ctx, "flight_options", map[string]any{
		"origin":      "PSO",
		"destination": "ASU",
		"date":        "2025-10-13",
	})
	require.NotContains(t, result, "error")

	options, ok := result["options"].([]any)
	require.True(t, ok)
	require.Len(t, options, 2)

	first, ok := options[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PSO-ASU-101", first["flight"])
	assert.Equal(t, float64(2), first["seat"])
}

func TestInvokeVerifyAndCancelRoundTrip(t *testing.T) {
	registry := newTestRegistry(t)
	ctx := context.Background()

	result := registry.Invoke(ctx, "reserve_flight", map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      4,
		"passenger": "P1",
	})
	require.NotContains(t, result, "error")

	result = registry.Invoke(ctx, "verify_reservation", map[string]any{
		"flight":    "PSO-ASU-101",
		"passenger": "P1",
	})
	assert.Equal(t, true, result["reserved"])
	assert.Equal(t, float64(4), result["seat"])

	result = registry.Invoke(ctx, "cancel_reservation", map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      4,
		"passenger": "P1",
	})
	assert.Equal(t, "Cancelled", result["status"])

	result = registry.Invoke(ctx, "cancel_reservation", map[string]any{
		"flight":    "PSO-ASU-101",
		"seat":      4,
		"passenger": "P1",
	})
	assert.Contains(t, result["error"], "reservation not found")
}

func TestInvokeBadDateFormat(t *testing.T) {
	registry := newTestRegistry(t)

	result := registry.Invoke(context.Background(), "flight_options", map[string]any{
		"origin":      "PSO",
		"destination": "ASU",
		"date":        "13/10/2025",
	})
	assert.Contains(t, result, "error")
}
