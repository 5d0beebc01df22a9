package service

import (
	"context"
	"fmt"
)

// AssistantToolExecutor files complaints on behalf of the chat assistant.
type AssistantToolExecutor struct {
	complaints *ComplaintService
}

// NewAssistantToolExecutor constructs the executor.
func NewAssistantToolExecutor(complaints *ComplaintService) *AssistantToolExecutor {
	return &AssistantToolExecutor{complaints: complaints}
}

// CreateComplaint files a private, photo-less complaint for the conversing
// user and returns a short result line for the model.
func (e *AssistantToolExecutor) CreateComplaint(ctx context.Context, userID, location, description string) (string, error) {
	complaint, err := e.complaints.SubmitViaAssistant(ctx, userID, location, description)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Complaint filed with id %s at %s.", complaint.ID, complaint.Location), nil
}
