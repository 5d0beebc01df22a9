// Package chat drives assistant conversations, including the synchronous
// execution of tool calls the model emits mid-turn.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/ai"
)

// State tracks where a conversation turn stands.
type State string

const (
	StateAwaitingUserInput    State = "AWAITING_USER_INPUT"
	StateModelResponding      State = "MODEL_RESPONDING"
	StateToolCallPending      State = "TOOL_CALL_PENDING"
	StateToolResultSubmitted  State = "TOOL_RESULT_SUBMITTED"
	StateModelRespondingFinal State = "MODEL_RESPONDING_FINAL"
)

// ToolExecutor performs the assistant's create_complaint tool on behalf of
// the conversing user and returns a short result description for the model.
type ToolExecutor interface {
	CreateComplaint(ctx context.Context, userID, location, description string) (string, error)
}

// Turn is the outcome of one completed conversation turn.
type Turn struct {
	Reply        string
	State        State
	ToolExecuted bool
}

// Engine advances conversations against the AI gateway.
type Engine struct {
	gateway  ai.Gateway
	executor ToolExecutor
	logger   *zap.Logger
}

// NewEngine constructs the conversation engine.
func NewEngine(gateway ai.Gateway, executor ToolExecutor, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{gateway: gateway, executor: executor, logger: logger}
}

// Respond runs a full turn: it forwards the user message, and when the model
// answers with a pending tool call it executes the tool synchronously, feeds
// the result back into the same conversation, and returns the model's final
// reply. A second consecutive tool call is not honored; the turn ends with
// the tool result instead.
func (e *Engine) Respond(ctx context.Context, userID string, req ai.ChatRequest) (*Turn, error) {
	state := StateModelResponding
	reply, err := e.gateway.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	if reply.ToolCall == nil {
		return &Turn{Reply: reply.Text, State: StateModelRespondingFinal}, nil
	}

	state = StateToolCallPending
	result, err := e.executor.CreateComplaint(ctx, userID, reply.ToolCall.Location, reply.ToolCall.Description)
	if err != nil {
		e.logger.Warn("tool execution failed", zap.Error(err))
		result = fmt.Sprintf("The complaint could not be filed: %v", err)
	}
	state = StateToolResultSubmitted

	followUp := req
	followUp.History = append(append([]ai.ChatMessage{}, req.History...),
		ai.ChatMessage{Role: ai.RoleUser, Text: req.Message},
		ai.ChatMessage{Role: ai.RoleModel, Text: toolCallEcho(reply.ToolCall)},
	)
	followUp.Message = fmt.Sprintf("Tool result for %s: %s. Tell the user in one or two sentences.", reply.ToolCall.Name, result)

	final, err := e.gateway.Chat(ctx, followUp)
	if err != nil {
		// the tool already ran; surface its result rather than failing the turn
		e.logger.Warn("final model response failed after tool execution", zap.Error(err), zap.String("state", string(state)))
		return &Turn{Reply: result, State: state, ToolExecuted: true}, nil
	}
	if final.ToolCall != nil {
		return &Turn{Reply: result, State: state, ToolExecuted: true}, nil
	}
	return &Turn{Reply: final.Text, State: StateModelRespondingFinal, ToolExecuted: true}, nil
}

func toolCallEcho(call *ai.ToolCall) string {
	return fmt.Sprintf(`{"tool": %q, "location": %q, "description": %q}`, call.Name, call.Location, call.Description)
}
