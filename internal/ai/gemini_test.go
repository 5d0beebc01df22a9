package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecocampus/complaint-service/internal/config"
	"github.com/ecocampus/complaint-service/internal/domain"
)

func modelServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		resp := geminiResponse{Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{{Text: reply}}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestGateway(baseURL string) *GeminiGateway {
	return NewGeminiGateway(config.AIConfig{
		APIKey:         "test-key",
		Model:          "gemini-1.5-flash",
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	}, zap.NewNop(), nil)
}

func TestCheckAuthenticityParsesVerdict(t *testing.T) {
	srv := modelServer(t, `{"authentic": true, "reason": "clear photo of litter"}`)
	defer srv.Close()
	g := newTestGateway(srv.URL)

	status, err := g.CheckAuthenticity(context.Background(), "Overflowing bin", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticityLikelyAuthentic, status)
}

func TestCheckAuthenticityToleratesCodeFences(t *testing.T) {
	srv := modelServer(t, "```json\n{\"authentic\": false, \"reason\": \"gibberish\"}\n```")
	defer srv.Close()
	g := newTestGateway(srv.URL)

	status, err := g.CheckAuthenticity(context.Background(), "asdf qwer", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticityPotentialSpam, status)
}

func TestCheckAuthenticityFailsOnGarbage(t *testing.T) {
	srv := modelServer(t, "I cannot decide.")
	defer srv.Close()
	g := newTestGateway(srv.URL)

	status, err := g.CheckAuthenticity(context.Background(), "Overflowing bin", nil)
	require.Error(t, err)
	assert.Equal(t, domain.AuthenticityUnverified, status)
}

func TestClassifyImageReturnsPlaceholderOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	g := newTestGateway(srv.URL)

	text := g.ClassifyImage(context.Background(), ImagePayload{MimeType: "image/png", Data: []byte{1}})
	assert.Equal(t, ClassifyFailedPlaceholder, text)
}

func TestClassifyImageWithoutAPIKey(t *testing.T) {
	g := newTestGateway("http://127.0.0.1:1")
	g.cfg.APIKey = ""

	text := g.ClassifyImage(context.Background(), ImagePayload{Data: []byte{1}})
	assert.Equal(t, ClassifyFailedPlaceholder, text)
}

func TestChatSurfacesToolCall(t *testing.T) {
	srv := modelServer(t, `{"tool": "create_complaint", "location": "Dorm A", "description": "Overflowing bin"}`)
	defer srv.Close()
	g := newTestGateway(srv.URL)

	reply, err := g.Chat(context.Background(), ChatRequest{Message: "Report the bin at Dorm A"})
	require.NoError(t, err)
	require.NotNil(t, reply.ToolCall)
	assert.Equal(t, ToolCreateComplaint, reply.ToolCall.Name)
	assert.Equal(t, "Dorm A", reply.ToolCall.Location)
	assert.Empty(t, reply.Text)
}

func TestChatPlainReply(t *testing.T) {
	srv := modelServer(t, "Glass goes into the green container.")
	defer srv.Close()
	g := newTestGateway(srv.URL)

	reply, err := g.Chat(context.Background(), ChatRequest{Message: "Where does glass go?"})
	require.NoError(t, err)
	assert.Nil(t, reply.ToolCall)
	assert.Equal(t, "Glass goes into the green container.", reply.Text)
}

func TestReverseGeocodeRejectsEmptyAddress(t *testing.T) {
	srv := modelServer(t, `{"address": "", "map_link": ""}`)
	defer srv.Close()
	g := newTestGateway(srv.URL)

	_, err := g.ReverseGeocode(context.Background(), 50.45, 30.52)
	require.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}

func TestFormatCoordinates(t *testing.T) {
	assert.Equal(t, "50.45012, 30.52341", FormatCoordinates(50.450121, 30.523412))
}
