package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vuelacn/flightdesk/internal/flights"
)

// isoDatePattern matches ISO calendar dates; options queries use exact date
// equality, so anything else would silently match nothing.
const isoDatePattern = `^\d{4}-\d{2}-\d{2}$`

// RegisterFlightTools registers the five store operations as named tools
func RegisterFlightTools(registry *Registry, service *flights.Service) error {
	seatMax := service.SeatCount()

	type registration struct {
		name        string
		description string
		schema      map[string]any
		handler     Handler
	}

	registrations := []registration{
		{
			name:        "flight_status",
			description: "Look up the status of a flight by its identifier.",
			schema: objectSchema(map[string]any{
				"flight": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Flight identifier, e.g. PSO-ASU-101",
				},
			}, "flight"),
			handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				view, err := service.GetStatus(ctx, stringArg(args, "flight"))
				if err != nil {
					return nil, err
				}
				return asPayload(view)
			},
		},
		{
			name:        "flight_options",
			description: "List flights between an origin and a destination on a date, with the first available seat on each.",
			schema: objectSchema(map[string]any{
				"origin": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Origin airport or city code",
				},
				"destination": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Destination airport or city code",
				},
				"date": map[string]any{
					"type":        "string",
					"pattern":     isoDatePattern,
					"description": "Calendar date in YYYY-MM-DD format",
				},
			}, "origin", "destination", "date"),
			handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				view, err := service.ListOptions(ctx,
					stringArg(args, "origin"),
					stringArg(args, "destination"),
					stringArg(args, "date"),
				)
				if err != nil {
					return nil, err
				}
				return asPayload(view)
			},
		},
		{
			name:        "reserve_flight",
			description: "Reserve a specific seat on a flight for a passenger.",
			schema: objectSchema(map[string]any{
				"flight": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Flight identifier",
				},
				"seat": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"maximum":     seatMax,
					"description": fmt.Sprintf("Seat number between 1 and %d", seatMax),
				},
				"passenger": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Passenger identifier",
				},
			}, "flight", "seat", "passenger"),
			handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				view, err := service.Reserve(ctx,
					stringArg(args, "flight"),
					intArg(args, "seat"),
					stringArg(args, "passenger"),
				)
				if err != nil {
					return nil, err
				}
				return asPayload(view)
			},
		},
		{
			name:        "cancel_reservation",
			description: "Cancel an existing seat reservation. The flight, seat and passenger must all match the reservation.",
			schema: objectSchema(map[string]any{
				"flight": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Flight identifier",
				},
				"seat": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"description": "Reserved seat number",
				},
				"passenger": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Passenger identifier the reservation belongs to",
				},
			}, "flight", "seat", "passenger"),
			handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				view, err := service.Cancel(ctx,
					stringArg(args, "flight"),
					intArg(args, "seat"),
					stringArg(args, "passenger"),
				)
				if err != nil {
					return nil, err
				}
				return asPayload(view)
			},
		},
		{
			name:        "verify_reservation",
			description: "Check whether a passenger holds a reservation on a flight, and on which seat.",
			schema: objectSchema(map[string]any{
				"flight": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Flight identifier",
				},
				"passenger": map[string]any{
					"type":        "string",
					"minLength":   1,
					"description": "Passenger identifier",
				},
			}, "flight", "passenger"),
			handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
				view, err := service.Verify(ctx,
					stringArg(args, "flight"),
					stringArg(args, "passenger"),
				)
				if err != nil {
					return nil, err
				}
				return asPayload(view)
			},
		},
	}

	for _, reg := range registrations {
		if err := registry.Register(reg.name, reg.description, reg.schema, reg.handler); err != nil {
			return err
		}
	}
	return nil
}

// objectSchema builds an object schema with the given properties, marking the
// listed names required and rejecting unknown arguments.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// stringArg reads a string argument, returning "" when absent. Presence and
// type are already guaranteed by schema validation for required fields.
func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

// intArg reads an integer argument. JSON decoding yields float64 for
// numbers; the schema has already rejected non-integral values.
func intArg(args map[string]any, key string) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case json.Number:
		n, _ := value.Int64()
		return int(n)
	default:
		return 0
	}
}

// asPayload converts a typed view into the JSON-like mapping returned across
// the tool boundary.
func asPayload(view any) (map[string]any, error) {
	encoded, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return payload, nil
}
