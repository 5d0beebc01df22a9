package analytics

import (
	"context"

	"github.com/ecocampus/complaint-service/internal/repository"
)

// Dashboard bundles every aggregate the admin view renders.
type Dashboard struct {
	Metrics         Metrics       `json:"metrics"`
	StatusBreakdown []StatusCount `json:"status_breakdown"`
	VolumeByMonth   []MonthCount  `json:"volume_by_month"`
}

// Service computes dashboards over the non-deleted complaint subset,
// optionally filtered by year and month.
type Service struct {
	complaints repository.ComplaintRepository
}

// NewService constructs the aggregator.
func NewService(complaints repository.ComplaintRepository) *Service {
	return &Service{complaints: complaints}
}

// Dashboard computes all aggregates for the given period filter.
func (s *Service) Dashboard(ctx context.Context, year, month *int) (*Dashboard, error) {
	complaints, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		Year:  year,
		Month: month,
	})
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Metrics:         ComputeMetrics(complaints),
		StatusBreakdown: StatusBreakdown(complaints),
		VolumeByMonth:   VolumeByMonth(complaints),
	}, nil
}
