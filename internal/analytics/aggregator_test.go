package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecocampus/complaint-service/internal/domain"
)

func resolvedAfter(createdAt time.Time, days float64) domain.Complaint {
	resolvedAt := createdAt.Add(time.Duration(days * 24 * float64(time.Hour)))
	return domain.Complaint{
		Status:     domain.ComplaintStatusResolved,
		CreatedAt:  createdAt,
		ResolvedAt: &resolvedAt,
	}
}

func TestComputeMetrics(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		resolvedAfter(base, 1),
		resolvedAfter(base, 3),
		{Status: domain.ComplaintStatusPending, CreatedAt: base},
		{Status: domain.ComplaintStatusInProgress, CreatedAt: base},
	}

	m := ComputeMetrics(complaints)
	assert.Equal(t, 4, m.TotalCount)
	assert.Equal(t, 2, m.ResolvedCount)
	assert.Equal(t, 50, m.ResolutionRate)
	assert.Equal(t, 2.0, m.AvgResolutionDays)
}

func TestComputeMetricsEmptySet(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Equal(t, 0, m.TotalCount)
	assert.Equal(t, 0, m.ResolutionRate)
	assert.Equal(t, 0.0, m.AvgResolutionDays)
}

func TestComputeMetricsRounding(t *testing.T) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		resolvedAfter(base, 1.5),
		{Status: domain.ComplaintStatusPending, CreatedAt: base},
		{Status: domain.ComplaintStatusPending, CreatedAt: base},
	}

	m := ComputeMetrics(complaints)
	// 1/3 resolved rounds to 33 percent
	assert.Equal(t, 33, m.ResolutionRate)
	assert.Equal(t, 1.5, m.AvgResolutionDays)
}

func TestStatusBreakdownOmitsZeroCounts(t *testing.T) {
	complaints := []domain.Complaint{
		{Status: domain.ComplaintStatusPending},
		{Status: domain.ComplaintStatusPending},
		{Status: domain.ComplaintStatusResolved},
	}

	breakdown := StatusBreakdown(complaints)
	require.Len(t, breakdown, 2)
	assert.Equal(t, domain.ComplaintStatusPending, breakdown[0].Status)
	assert.Equal(t, 2, breakdown[0].Count)
	assert.Equal(t, domain.ComplaintStatusResolved, breakdown[1].Status)
	assert.Equal(t, 1, breakdown[1].Count)
}

func TestVolumeByMonthKeepsEncounterOrder(t *testing.T) {
	march := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	january := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	complaints := []domain.Complaint{
		{CreatedAt: march},
		{CreatedAt: january},
		{CreatedAt: march},
	}

	volume := VolumeByMonth(complaints)
	require.Len(t, volume, 2)
	assert.Equal(t, MonthCount{Month: "Mar 2026", Count: 2}, volume[0])
	assert.Equal(t, MonthCount{Month: "Jan 2026", Count: 1}, volume[1])
}
