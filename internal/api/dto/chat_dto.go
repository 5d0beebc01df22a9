package dto

import "github.com/ecocampus/complaint-service/internal/ai"

// ChatMessage is one prior turn of an assistant conversation.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ChatRequest payload for the assistant endpoint.
type ChatRequest struct {
	Message  string        `json:"message"`
	Language string        `json:"language"`
	History  []ChatMessage `json:"history"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply        string `json:"reply"`
	ToolExecuted bool   `json:"tool_executed"`
}

// ToAIHistory maps transport history into gateway messages.
func (r *ChatRequest) ToAIHistory() []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(r.History))
	for _, m := range r.History {
		role := ai.RoleUser
		if m.Role == ai.RoleModel {
			role = ai.RoleModel
		}
		out = append(out, ai.ChatMessage{Role: role, Text: m.Text})
	}
	return out
}
