package ai

import (
	"context"
	"strconv"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// Chat message roles as the generative API expects them.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ToolCreateComplaint is the single tool the chat assistant may invoke.
const ToolCreateComplaint = "create_complaint"

// ImagePayload carries raw photo bytes for classification and verification.
type ImagePayload struct {
	MimeType string
	Data     []byte
}

// Address is a reverse-geocoding result.
type Address struct {
	Address string
	MapLink string
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role string
	Text string
}

// ToolCall is a structured request from the model, executed synchronously
// before the final reply is produced.
type ToolCall struct {
	Name        string
	Location    string
	Description string
}

// ChatReply is either final text or a pending tool call.
type ChatReply struct {
	Text     string
	ToolCall *ToolCall
}

// ChatRequest bundles a chat turn with its context.
type ChatRequest struct {
	History           []ChatMessage
	Message           string
	Language          string
	ContextComplaints []domain.Complaint
}

// SummaryRequest asks for report text over already-computed aggregates.
type SummaryRequest struct {
	Kind    string
	Data    any
	Filters string
}

// ReportRequest asks for a comprehensive dashboard report.
type ReportRequest struct {
	Metrics         any
	StatusBreakdown any
	VolumeBreakdown any
	Filters         string
}

// Gateway is the boundary to the remote generative-AI service. Every call is
// a single attempt with a per-call timeout; callers degrade on error and
// never crash. It must be substitutable by a stub in tests.
type Gateway interface {
	// ClassifyImage describes a photo in natural language. Best-effort:
	// failures yield a user-visible placeholder, never an error.
	ClassifyImage(ctx context.Context, image ImagePayload) string
	// CheckAuthenticity classifies a complaint as LIKELY_AUTHENTIC or
	// POTENTIAL_SPAM. On error the caller defaults the complaint to private.
	CheckAuthenticity(ctx context.Context, description string, image *ImagePayload) (domain.AuthenticityStatus, error)
	// ReverseGeocode turns coordinates into an address. On error the caller
	// falls back to raw coordinate formatting.
	ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error)
	// Chat advances a conversation; the reply may carry a pending tool call.
	Chat(ctx context.Context, req ChatRequest) (ChatReply, error)
	// Summarize produces report text for a single aggregate.
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
	// ComprehensiveReport produces report text over the full dashboard.
	ComprehensiveReport(ctx context.Context, req ReportRequest) (string, error)
}

// FormatCoordinates is the shared fallback when reverse geocoding fails.
func FormatCoordinates(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 5, 64) + ", " + strconv.FormatFloat(lng, 'f', 5, 64)
}
