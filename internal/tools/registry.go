package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

// Handler executes a tool with already-validated arguments and returns the
// success payload. Errors returned here never cross the tool boundary: the
// registry converts them to the error payload shape.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Tool is a named, independently invocable action with a declared argument
// schema.
type Tool struct {
	Name        string
	Description string
	schema      map[string]any
	compiled    *jsonschema.Schema
	handler     Handler
}

// Definition is the externally visible description of a tool, in the shape
// tool-calling orchestration layers expect.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Registry holds the set of registered tools and dispatches invocations
type Registry struct {
	tools  map[string]*Tool
	order  []string
	logger *logger.Logger
}

// NewRegistry creates an empty tool registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		logger: log.Named("tools"),
	}
}

// Register adds a tool under a unique name. The parameter schema is compiled
// once here so every invocation validates against it.
func (r *Registry) Register(name, description string, schema map[string]any, handler Handler) error {
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("failed to compile schema for tool %q: %w", name, err)
	}

	r.tools[name] = &Tool{
		Name:        name,
		Description: description,
		schema:      schema,
		compiled:    compiled,
		handler:     handler,
	}
	r.order = append(r.order, name)
	return nil
}

// Invoke runs the named tool with the given argument mapping. It never
// returns an error: unknown names, schema violations and handler failures all
// come back as {"error": message} so no fault is ever raised across the tool
// boundary.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) map[string]any {
	tool, ok := r.tools[name]
	if !ok {
		return errorPayload(fmt.Sprintf("unknown tool: %s", name))
	}
	if args == nil {
		args = map[string]any{}
	}

	if tool.compiled != nil {
		if err := tool.compiled.Validate(normalize(args)); err != nil {
			r.logger.Debug("Tool arguments rejected",
				logger.String("tool", name),
				logger.Error(err),
			)
			return errorPayload(fmt.Sprintf("invalid arguments for %s: %v", name, err))
		}
	}

	result, err := tool.handler(ctx, args)
	if err != nil {
		r.logger.Debug("Tool returned error",
			logger.String("tool", name),
			logger.Error(err),
		)
		return errorPayload(err.Error())
	}
	return result
}

// Definitions returns every registered tool in registration order
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		defs = append(defs, Definition{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.schema,
		})
	}
	return defs
}

// compileSchema builds a validator from a raw JSON Schema map
func compileSchema(raw map[string]any) (*jsonschema.Schema, error) {
	if raw == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("tool.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile("tool.json")
}

// normalize round-trips args through JSON so the validator sees the same
// representation it would for arguments decoded off the wire.
func normalize(args map[string]any) any {
	encoded, err := json.Marshal(args)
	if err != nil {
		return args
	}
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return args
	}
	return decoded
}

func errorPayload(message string) map[string]any {
	return map[string]any{"error": message}
}
