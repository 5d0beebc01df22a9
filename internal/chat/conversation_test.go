package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/domain"
)

type scriptedGateway struct {
	replies  []ai.ChatReply
	errs     []error
	requests []ai.ChatRequest
}

func (g *scriptedGateway) Chat(_ context.Context, req ai.ChatRequest) (ai.ChatReply, error) {
	call := len(g.requests)
	g.requests = append(g.requests, req)
	if call < len(g.errs) && g.errs[call] != nil {
		return ai.ChatReply{}, g.errs[call]
	}
	return g.replies[call], nil
}

func (g *scriptedGateway) ClassifyImage(context.Context, ai.ImagePayload) string { return "" }
func (g *scriptedGateway) CheckAuthenticity(context.Context, string, *ai.ImagePayload) (domain.AuthenticityStatus, error) {
	return domain.AuthenticityLikelyAuthentic, nil
}
func (g *scriptedGateway) ReverseGeocode(context.Context, float64, float64) (ai.Address, error) {
	return ai.Address{}, nil
}
func (g *scriptedGateway) Summarize(context.Context, ai.SummaryRequest) (string, error) {
	return "", nil
}
func (g *scriptedGateway) ComprehensiveReport(context.Context, ai.ReportRequest) (string, error) {
	return "", nil
}

type recordingExecutor struct {
	result      string
	err         error
	calls       int
	location    string
	description string
}

func (e *recordingExecutor) CreateComplaint(_ context.Context, _, location, description string) (string, error) {
	e.calls++
	e.location = location
	e.description = description
	return e.result, e.err
}

func TestRespondWithoutToolCall(t *testing.T) {
	gateway := &scriptedGateway{replies: []ai.ChatReply{{Text: "Please take your bottles to the blue bin."}}}
	executor := &recordingExecutor{}
	engine := NewEngine(gateway, executor, nil)

	turn, err := engine.Respond(context.Background(), "u1", ai.ChatRequest{Message: "Where do bottles go?"})
	require.NoError(t, err)
	assert.Equal(t, "Please take your bottles to the blue bin.", turn.Reply)
	assert.Equal(t, StateModelRespondingFinal, turn.State)
	assert.False(t, turn.ToolExecuted)
	assert.Equal(t, 0, executor.calls)
}

func TestRespondExecutesToolMidTurn(t *testing.T) {
	gateway := &scriptedGateway{replies: []ai.ChatReply{
		{ToolCall: &ai.ToolCall{Name: ai.ToolCreateComplaint, Location: "Dorm A", Description: "Overflowing bin"}},
		{Text: "I filed the complaint for you."},
	}}
	executor := &recordingExecutor{result: "Complaint filed with id c-1."}
	engine := NewEngine(gateway, executor, nil)

	turn, err := engine.Respond(context.Background(), "u1", ai.ChatRequest{Message: "Report the bin at Dorm A"})
	require.NoError(t, err)
	assert.Equal(t, "I filed the complaint for you.", turn.Reply)
	assert.Equal(t, StateModelRespondingFinal, turn.State)
	assert.True(t, turn.ToolExecuted)
	assert.Equal(t, 1, executor.calls)
	assert.Equal(t, "Dorm A", executor.location)
	assert.Equal(t, "Overflowing bin", executor.description)

	// the follow-up request carries the original turn plus the tool echo
	require.Len(t, gateway.requests, 2)
	followUp := gateway.requests[1]
	require.Len(t, followUp.History, 2)
	assert.Equal(t, ai.RoleUser, followUp.History[0].Role)
	assert.Equal(t, "Report the bin at Dorm A", followUp.History[0].Text)
	assert.Equal(t, ai.RoleModel, followUp.History[1].Role)
	assert.Contains(t, followUp.Message, "Complaint filed with id c-1.")
}

func TestRespondSurvivesFinalModelFailure(t *testing.T) {
	gateway := &scriptedGateway{
		replies: []ai.ChatReply{
			{ToolCall: &ai.ToolCall{Name: ai.ToolCreateComplaint, Location: "Gym", Description: "Litter"}},
			{},
		},
		errs: []error{nil, errors.New("upstream closed")},
	}
	executor := &recordingExecutor{result: "Complaint filed with id c-2."}
	engine := NewEngine(gateway, executor, nil)

	turn, err := engine.Respond(context.Background(), "u1", ai.ChatRequest{Message: "Report litter at the gym"})
	require.NoError(t, err)
	assert.True(t, turn.ToolExecuted)
	assert.Equal(t, "Complaint filed with id c-2.", turn.Reply)
	assert.Equal(t, StateToolResultSubmitted, turn.State)
}

func TestRespondReportsToolFailureToModel(t *testing.T) {
	gateway := &scriptedGateway{replies: []ai.ChatReply{
		{ToolCall: &ai.ToolCall{Name: ai.ToolCreateComplaint, Location: "", Description: "Litter"}},
		{Text: "I could not file that complaint, a location is required."},
	}}
	executor := &recordingExecutor{err: errors.New("location is required")}
	engine := NewEngine(gateway, executor, nil)

	turn, err := engine.Respond(context.Background(), "u1", ai.ChatRequest{Message: "Report litter"})
	require.NoError(t, err)
	assert.True(t, turn.ToolExecuted)
	assert.Equal(t, "I could not file that complaint, a location is required.", turn.Reply)
}

func TestRespondDoesNotHonorSecondToolCall(t *testing.T) {
	gateway := &scriptedGateway{replies: []ai.ChatReply{
		{ToolCall: &ai.ToolCall{Name: ai.ToolCreateComplaint, Location: "Dorm A", Description: "Bin"}},
		{ToolCall: &ai.ToolCall{Name: ai.ToolCreateComplaint, Location: "Dorm B", Description: "Bin"}},
	}}
	executor := &recordingExecutor{result: "Complaint filed with id c-3."}
	engine := NewEngine(gateway, executor, nil)

	turn, err := engine.Respond(context.Background(), "u1", ai.ChatRequest{Message: "Report both bins"})
	require.NoError(t, err)
	assert.Equal(t, 1, executor.calls)
	assert.Equal(t, "Complaint filed with id c-3.", turn.Reply)
}

func TestRespondPropagatesInitialFailure(t *testing.T) {
	gateway := &scriptedGateway{replies: []ai.ChatReply{{}}, errs: []error{errors.New("unreachable")}}
	engine := NewEngine(gateway, &recordingExecutor{}, nil)

	_, err := engine.Respond(context.Background(), "u1", ai.ChatRequest{Message: "hello"})
	require.Error(t, err)
}
