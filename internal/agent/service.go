package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/vuelacn/flightdesk/internal/config"
	"github.com/vuelacn/flightdesk/internal/tools"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

// ErrDisabled is returned by Chat when no agent is configured
var ErrDisabled = errors.New("chat assistant is not configured")

// Service drives an OpenAI chat model through the registered flight tools.
// Each Chat call is a bounded tool-use loop: the model may request tool
// invocations, the service executes them through the registry and feeds the
// results back, until the model produces a final text answer.
type Service struct {
	client        openai.Client
	registry      *tools.Registry
	model         string
	systemPrompt  string
	maxToolRounds int
	timeout       time.Duration
	enabled       bool
	logger        *logger.Logger
}

// NewService creates a new agent service. When the agent is disabled in the
// configuration or the API key is missing, the service is constructed in a
// disabled state and Chat fails cleanly instead of calling out.
func NewService(cfg config.AgentConfig, registry *tools.Registry, log *logger.Logger) *Service {
	service := &Service{
		registry:      registry,
		model:         cfg.Model,
		systemPrompt:  cfg.SystemPrompt,
		maxToolRounds: cfg.MaxToolRounds,
		timeout:       time.Duration(cfg.TimeoutSecs) * time.Second,
		logger:        log.Named("agent"),
	}

	apiKey := cfg.APIKey()
	if !cfg.Enabled {
		return service
	}
	if apiKey == "" {
		service.logger.Warn("Agent enabled but no API key found",
			logger.String("env_var", cfg.APIKeyEnvVar))
		return service
	}

	service.client = openai.NewClient(option.WithAPIKey(apiKey))
	service.enabled = true
	return service
}

// Enabled reports whether the assistant can serve chat requests
func (s *Service) Enabled() bool {
	return s.enabled
}

// Chat answers a single user message, invoking flight tools as the model
// requests them. The returned string is the assistant's final text output.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	if !s.enabled {
		return "", ErrDisabled
	}
	if message == "" {
		return "", fmt.Errorf("message must not be empty")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.systemPrompt),
			openai.UserMessage(message),
		},
		Tools: s.toolParams(),
	}

	for round := 0; round < s.maxToolRounds; round++ {
		completion, err := s.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("chat completion returned no choices")
		}

		choice := completion.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			return choice.Message.Content, nil
		}

		params.Messages = append(params.Messages, choice.Message.ToParam())
		for _, call := range choice.Message.ToolCalls {
			params.Messages = append(params.Messages, s.runToolCall(ctx, call))
		}
	}

	return "", fmt.Errorf("no final answer after %d tool rounds", s.maxToolRounds)
}

// runToolCall executes one requested tool call and wraps its payload as a
// tool message. Invoke never raises, so a failed tool shows up to the model
// as an error payload it can react to.
func (s *Service) runToolCall(ctx context.Context, call openai.ChatCompletionMessageToolCall) openai.ChatCompletionMessageParamUnion {
	var args map[string]any
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			s.logger.Warn("Failed to decode tool arguments",
				logger.String("tool", call.Function.Name),
				logger.Error(err))
			return openai.ToolMessage(
				fmt.Sprintf(`{"error": "invalid tool arguments: %v"}`, err), call.ID)
		}
	}

	s.logger.Debug("Executing tool call",
		logger.String("tool", call.Function.Name))

	result := s.registry.Invoke(ctx, call.Function.Name, args)
	encoded, err := json.Marshal(result)
	if err != nil {
		return openai.ToolMessage(`{"error": "failed to encode tool result"}`, call.ID)
	}
	return openai.ToolMessage(string(encoded), call.ID)
}

// toolParams converts the registry definitions into OpenAI tool declarations
func (s *Service) toolParams() []openai.ChatCompletionToolParam {
	defs := s.registry.Definitions()
	params := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(def.Parameters),
			},
		})
	}
	return params
}
