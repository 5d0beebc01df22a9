package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/analytics"
	"github.com/ecocampus/complaint-service/internal/api/dto"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// AnalyticsHandler serves the admin dashboard and its AI-written reports.
type AnalyticsHandler struct {
	service *analytics.Service
	gateway ai.Gateway
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(svc *analytics.Service, gateway ai.Gateway) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, gateway: gateway}
}

// Dashboard GET /admin/analytics.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	year, month := parsePeriod(c)
	dashboard, err := h.service.Dashboard(c.Context(), year, month)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboard})
}

// Summarize POST /admin/analytics/summary.
func (h *AnalyticsHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	year, month := parsePeriod(c)
	dashboard, err := h.service.Dashboard(c.Context(), year, month)
	if err != nil {
		return err
	}

	var data any
	switch strings.ToLower(req.Kind) {
	case "metrics":
		data = dashboard.Metrics
	case "status":
		data = dashboard.StatusBreakdown
	case "volume":
		data = dashboard.VolumeByMonth
	default:
		return apperrors.NewValidationError("kind must be one of metrics, status, volume", nil)
	}

	report, err := h.gateway.Summarize(c.Context(), ai.SummaryRequest{
		Kind:    strings.ToLower(req.Kind),
		Data:    data,
		Filters: describePeriod(year, month),
	})
	if err != nil {
		return apperrors.NewDomainError("AI_UNAVAILABLE", "report generation unavailable", fiber.StatusServiceUnavailable, nil)
	}
	return c.JSON(fiber.Map{"data": dto.ReportResponse{Report: report}})
}

// Report POST /admin/analytics/report.
func (h *AnalyticsHandler) Report(c *fiber.Ctx) error {
	year, month := parsePeriod(c)
	dashboard, err := h.service.Dashboard(c.Context(), year, month)
	if err != nil {
		return err
	}

	report, err := h.gateway.ComprehensiveReport(c.Context(), ai.ReportRequest{
		Metrics:         dashboard.Metrics,
		StatusBreakdown: dashboard.StatusBreakdown,
		VolumeBreakdown: dashboard.VolumeByMonth,
		Filters:         describePeriod(year, month),
	})
	if err != nil {
		return apperrors.NewDomainError("AI_UNAVAILABLE", "report generation unavailable", fiber.StatusServiceUnavailable, nil)
	}
	return c.JSON(fiber.Map{"data": dto.ReportResponse{Report: report}})
}

func parsePeriod(c *fiber.Ctx) (year, month *int) {
	if y := c.QueryInt("year", 0); y > 0 {
		year = &y
	}
	if m := c.QueryInt("month", 0); m >= 1 && m <= 12 {
		month = &m
	}
	return year, month
}

func describePeriod(year, month *int) string {
	switch {
	case year != nil && month != nil:
		return fmt.Sprintf("year=%d month=%d", *year, *month)
	case year != nil:
		return fmt.Sprintf("year=%d", *year)
	default:
		return "all time"
	}
}
