package dto

// ReportResponse carries AI-generated report text.
type ReportResponse struct {
	Report string `json:"report"`
}

// SummaryRequest asks for a narrative summary over one aggregate kind.
type SummaryRequest struct {
	Kind string `json:"kind"`
}
