package dto

import (
	"encoding/base64"
	"time"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/domain"
)

// ImagePayload carries an embedded photo as base64 with its MIME type.
type ImagePayload struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// SubmitComplaintRequest payload.
type SubmitComplaintRequest struct {
	Location    string        `json:"location"`
	Description string        `json:"description"`
	IsPublic    bool          `json:"is_public"`
	Image       *ImagePayload `json:"image"`
	Latitude    *float64      `json:"latitude"`
	Longitude   *float64      `json:"longitude"`
}

// SetStatusRequest payload for administrator status changes.
type SetStatusRequest struct {
	Status domain.ComplaintStatus `json:"status"`
}

// AdminVerifyRequest payload for the terminal authenticity decision.
type AdminVerifyRequest struct {
	Result domain.AuthenticityStatus `json:"result"`
}

// ClassifyImageRequest payload for the standalone waste classifier.
type ClassifyImageRequest struct {
	Image ImagePayload `json:"image"`
}

// ClassifyImageResponse holds the classifier label.
type ClassifyImageResponse struct {
	Classification string `json:"classification"`
}

// ComplaintResponse full view of a complaint.
type ComplaintResponse struct {
	ID                 string                    `json:"id"`
	UserID             string                    `json:"user_id"`
	UserName           string                    `json:"user_name"`
	Location           string                    `json:"location"`
	Description        string                    `json:"description"`
	Status             domain.ComplaintStatus    `json:"status"`
	AuthenticityStatus domain.AuthenticityStatus `json:"authenticity_status"`
	Votes              int                       `json:"votes"`
	IsPublic           bool                      `json:"is_public"`
	ImageURL           string                    `json:"image_url,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
	ResolvedAt         *time.Time                `json:"resolved_at"`
	DeletedAt          *time.Time                `json:"deleted_at,omitempty"`
}

// ComplaintHistoryResponse audit trail entry.
type ComplaintHistoryResponse struct {
	ID          string                     `json:"id"`
	ComplaintID string                     `json:"complaint_id"`
	ChangedByID *string                    `json:"changed_by_id"`
	ChangeType  domain.ComplaintChangeType `json:"change_type"`
	OldValue    map[string]any             `json:"old_value"`
	NewValue    map[string]any             `json:"new_value"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// NewComplaintResponse maps a domain complaint.
func NewComplaintResponse(c *domain.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:                 c.ID,
		UserID:             c.UserID,
		UserName:           c.UserName,
		Location:           c.Location,
		Description:        c.Description,
		Status:             c.Status,
		AuthenticityStatus: c.AuthenticityStatus,
		Votes:              c.Votes,
		IsPublic:           c.IsPublic,
		ImageURL:           c.ImageURL,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		ResolvedAt:         c.ResolvedAt,
		DeletedAt:          c.DeletedAt,
	}
}

// NewComplaintResponses maps a slice of complaints.
func NewComplaintResponses(items []domain.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, 0, len(items))
	for i := range items {
		out = append(out, NewComplaintResponse(&items[i]))
	}
	return out
}

// NewComplaintHistoryResponses maps audit trail entries.
func NewComplaintHistoryResponses(items []domain.ComplaintHistory) []ComplaintHistoryResponse {
	out := make([]ComplaintHistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, ComplaintHistoryResponse{
			ID:          h.ID,
			ComplaintID: h.ComplaintID,
			ChangedByID: h.ChangedByID,
			ChangeType:  h.ChangeType,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			CreatedAt:   h.CreatedAt,
		})
	}
	return out
}

// ToAIImage decodes the base64 payload into the gateway type.
func (p *ImagePayload) ToAIImage() (*ai.ImagePayload, error) {
	if p == nil {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, err
	}
	return &ai.ImagePayload{MimeType: p.MimeType, Data: raw}, nil
}
