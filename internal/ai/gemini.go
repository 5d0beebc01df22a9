package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/config"
	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/observability"
)

// ClassifyFailedPlaceholder is shown to the user when image analysis fails.
const ClassifyFailedPlaceholder = "Image analysis failed. Please describe the issue in your own words."

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

// GeminiGateway talks to the generativelanguage REST API.
type GeminiGateway struct {
	cfg     config.AIConfig
	client  *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGeminiGateway builds the gateway. Calls use a single attempt with the
// configured timeout; no retries.
func NewGeminiGateway(cfg config.AIConfig, logger *zap.Logger, metrics *observability.Metrics) *GeminiGateway {
	return &GeminiGateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
		metrics: metrics,
	}
}

// ClassifyImage describes the photographed waste issue.
func (g *GeminiGateway) ClassifyImage(ctx context.Context, image ImagePayload) string {
	prompt := "Describe the waste or sanitation issue visible in this photo in two or three sentences. " +
		"Focus on what kind of waste it is, roughly how much, and any hazard it poses."
	text, err := g.generate(ctx, []geminiContent{{
		Role: RoleUser,
		Parts: []geminiPart{
			{Text: prompt},
			{InlineData: inlineData(image)},
		},
	}})
	g.metrics.RecordAICall("classify_image", err)
	if err != nil {
		g.logger.Warn("image classification failed", zap.Error(err))
		return ClassifyFailedPlaceholder
	}
	return text
}

// CheckAuthenticity classifies a complaint as likely authentic or potential spam.
func (g *GeminiGateway) CheckAuthenticity(ctx context.Context, description string, image *ImagePayload) (domain.AuthenticityStatus, error) {
	prompt := fmt.Sprintf(`You review campus waste complaints for authenticity.

COMPLAINT DESCRIPTION: %s

Decide whether this is a genuine waste/sanitation report or likely spam
(gibberish, advertising, abuse, or unrelated to waste).

Answer STRICTLY as JSON:
{"authentic": true/false, "reason": "one short sentence"}`, description)

	parts := []geminiPart{{Text: prompt}}
	if image != nil {
		parts = append(parts, geminiPart{InlineData: inlineData(*image)})
	}

	text, err := g.generate(ctx, []geminiContent{{Role: RoleUser, Parts: parts}})
	g.metrics.RecordAICall("check_authenticity", err)
	if err != nil {
		return domain.AuthenticityUnverified, err
	}

	var result struct {
		Authentic bool   `json:"authentic"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		return domain.AuthenticityUnverified, fmt.Errorf("parse authenticity verdict: %w", err)
	}
	if result.Authentic {
		return domain.AuthenticityLikelyAuthentic, nil
	}
	return domain.AuthenticityPotentialSpam, nil
}

// ReverseGeocode asks the model for a human-readable address.
func (g *GeminiGateway) ReverseGeocode(ctx context.Context, lat, lng float64) (Address, error) {
	prompt := fmt.Sprintf(`Give the most likely street address or place name for
latitude %f, longitude %f.

Answer STRICTLY as JSON:
{"address": "...", "map_link": "https://..."}`, lat, lng)

	text, err := g.generate(ctx, []geminiContent{{Role: RoleUser, Parts: []geminiPart{{Text: prompt}}}})
	g.metrics.RecordAICall("reverse_geocode", err)
	if err != nil {
		return Address{}, err
	}

	var result struct {
		Address string `json:"address"`
		MapLink string `json:"map_link"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &result); err != nil {
		return Address{}, fmt.Errorf("parse geocode result: %w", err)
	}
	if result.Address == "" {
		return Address{}, errors.New("empty geocode result")
	}
	return Address{Address: result.Address, MapLink: result.MapLink}, nil
}

// Chat advances an assistant conversation. When the model wants to file a
// complaint on the user's behalf it answers with a JSON tool directive that
// is surfaced as a pending ToolCall.
func (g *GeminiGateway) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	contents := []geminiContent{{Role: RoleUser, Parts: []geminiPart{{Text: chatSystemPrompt(req)}}}}
	for _, msg := range req.History {
		contents = append(contents, geminiContent{Role: msg.Role, Parts: []geminiPart{{Text: msg.Text}}})
	}
	contents = append(contents, geminiContent{Role: RoleUser, Parts: []geminiPart{{Text: req.Message}}})

	text, err := g.generate(ctx, contents)
	g.metrics.RecordAICall("chat", err)
	if err != nil {
		return ChatReply{}, err
	}

	if call, ok := parseToolCall(text); ok {
		return ChatReply{ToolCall: call}, nil
	}
	return ChatReply{Text: text}, nil
}

// Summarize produces text for a single analytics aggregate.
func (g *GeminiGateway) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	data, err := json.Marshal(req.Data)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(`Write a short plain-language summary of these campus waste
complaint statistics for an administrator.

KIND: %s
FILTERS: %s
DATA: %s`, req.Kind, req.Filters, data)

	text, genErr := g.generate(ctx, []geminiContent{{Role: RoleUser, Parts: []geminiPart{{Text: prompt}}}})
	g.metrics.RecordAICall("summarize", genErr)
	return text, genErr
}

// ComprehensiveReport produces text over the full dashboard.
func (g *GeminiGateway) ComprehensiveReport(ctx context.Context, req ReportRequest) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"metrics":          req.Metrics,
		"status_breakdown": req.StatusBreakdown,
		"volume_breakdown": req.VolumeBreakdown,
	})
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(`Write a comprehensive management report over this campus waste
complaint dashboard. Cover resolution performance, status distribution and
volume trends, and finish with two or three recommendations.

FILTERS: %s
DASHBOARD: %s`, req.Filters, payload)

	text, genErr := g.generate(ctx, []geminiContent{{Role: RoleUser, Parts: []geminiPart{{Text: prompt}}}})
	g.metrics.RecordAICall("comprehensive_report", genErr)
	return text, genErr
}

func (g *GeminiGateway) generate(ctx context.Context, contents []geminiContent) (string, error) {
	if g.cfg.APIKey == "" {
		return "", errors.New("AI_API_KEY not configured")
	}

	body, err := json.Marshal(geminiRequest{Contents: contents})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.cfg.BaseURL, g.cfg.Model, g.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generative API returned %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty model response")
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}

func chatSystemPrompt(req ChatRequest) string {
	var sb strings.Builder
	sb.WriteString("You are the assistant of a campus waste-complaint tracking service. ")
	sb.WriteString("Help users check on their complaints and file new ones. ")
	if req.Language != "" {
		fmt.Fprintf(&sb, "Answer in %s. ", req.Language)
	}
	sb.WriteString("When the user asks you to file a complaint and you know its location and description, ")
	sb.WriteString(`answer STRICTLY with JSON and nothing else:
{"tool": "create_complaint", "location": "...", "description": "..."}
`)
	if len(req.ContextComplaints) > 0 {
		sb.WriteString("\nThe user's current complaints:\n")
		for _, c := range req.ContextComplaints {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", c.Status, c.Location, c.Description)
		}
	}
	return sb.String()
}

func parseToolCall(text string) (*ToolCall, bool) {
	var call struct {
		Tool        string `json:"tool"`
		Location    string `json:"location"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &call); err != nil {
		return nil, false
	}
	if call.Tool != ToolCreateComplaint {
		return nil, false
	}
	return &ToolCall{
		Name:        call.Tool,
		Location:    call.Location,
		Description: call.Description,
	}, true
}

// stripFences tolerates models wrapping JSON in markdown code fences.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "`")
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}

func inlineData(image ImagePayload) *geminiInlineData {
	mime := image.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return &geminiInlineData{
		MimeType: mime,
		Data:     base64.StdEncoding.EncodeToString(image.Data),
	}
}
