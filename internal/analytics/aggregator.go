// Package analytics computes read-only metrics over the complaint collection.
package analytics

import (
	"math"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// Metrics summarizes resolution performance.
type Metrics struct {
	TotalCount        int     `json:"total_count"`
	ResolvedCount     int     `json:"resolved_count"`
	ResolutionRate    int     `json:"resolution_rate"`
	AvgResolutionDays float64 `json:"avg_resolution_days"`
}

// StatusCount is one slice of the status breakdown.
type StatusCount struct {
	Status domain.ComplaintStatus `json:"status"`
	Count  int                    `json:"count"`
}

// MonthCount is one bar of the monthly volume series.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

const monthLabelLayout = "Jan 2006"

// ComputeMetrics derives the resolution rate (rounded percent, 0 when the
// set is empty) and the mean resolution time in days (one decimal, 0.0 when
// nothing is resolved).
func ComputeMetrics(complaints []domain.Complaint) Metrics {
	m := Metrics{TotalCount: len(complaints)}

	var totalDays float64
	for i := range complaints {
		c := &complaints[i]
		if c.Status != domain.ComplaintStatusResolved || c.ResolvedAt == nil {
			continue
		}
		m.ResolvedCount++
		totalDays += c.ResolvedAt.Sub(c.CreatedAt).Hours() / 24
	}

	if m.TotalCount > 0 {
		m.ResolutionRate = int(math.Round(100 * float64(m.ResolvedCount) / float64(m.TotalCount)))
	}
	if m.ResolvedCount > 0 {
		m.AvgResolutionDays = math.Round(totalDays/float64(m.ResolvedCount)*10) / 10
	}
	return m
}

// StatusBreakdown counts complaints per status. Zero-count statuses are
// omitted from the series.
func StatusBreakdown(complaints []domain.Complaint) []StatusCount {
	counts := make(map[domain.ComplaintStatus]int)
	for i := range complaints {
		counts[complaints[i].Status]++
	}

	order := []domain.ComplaintStatus{
		domain.ComplaintStatusPending,
		domain.ComplaintStatusInProgress,
		domain.ComplaintStatusResolved,
	}
	result := make([]StatusCount, 0, len(order))
	for _, status := range order {
		if counts[status] == 0 {
			continue
		}
		result = append(result, StatusCount{Status: status, Count: counts[status]})
	}
	return result
}

// VolumeByMonth groups complaints by creation month label in encounter
// order, which is not guaranteed chronological.
func VolumeByMonth(complaints []domain.Complaint) []MonthCount {
	index := make(map[string]int)
	var result []MonthCount
	for i := range complaints {
		label := complaints[i].CreatedAt.Format(monthLabelLayout)
		if pos, ok := index[label]; ok {
			result[pos].Count++
			continue
		}
		index[label] = len(result)
		result = append(result, MonthCount{Month: label, Count: 1})
	}
	return result
}
