package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ecocampus/complaint-service/internal/api/dto"
	"github.com/ecocampus/complaint-service/internal/auth"
	"github.com/ecocampus/complaint-service/internal/domain"
	"github.com/ecocampus/complaint-service/internal/repository"
	"github.com/ecocampus/complaint-service/internal/service"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// AdminComplaintsHandler manages administrator triage endpoints.
type AdminComplaintsHandler struct {
	service *service.ComplaintService
}

// NewAdminComplaintsHandler constructs handler.
func NewAdminComplaintsHandler(complaintService *service.ComplaintService) *AdminComplaintsHandler {
	return &AdminComplaintsHandler{service: complaintService}
}

// ListAll GET /admin/complaints.
func (h *AdminComplaintsHandler) ListAll(c *fiber.Ctx) error {
	filter := parseAdminComplaintQuery(c)
	complaints, err := h.service.ListAll(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponses(complaints)})
}

// ListBin GET /admin/complaints/bin.
func (h *AdminComplaintsHandler) ListBin(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	complaints, err := h.service.ListBin(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponses(complaints)})
}

// SetStatus PATCH /admin/complaints/:id/status.
func (h *AdminComplaintsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.SetStatus(c.Context(), principal.User.ID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// RunAIVerification POST /admin/complaints/:id/verify/ai.
func (h *AdminComplaintsHandler) RunAIVerification(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.RunAIVerification(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Verify POST /admin/complaints/:id/verify.
func (h *AdminComplaintsHandler) Verify(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AdminVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.ApplyAdminVerification(c.Context(), principal.User.ID, c.Params("id"), req.Result)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// SoftDelete DELETE /admin/complaints/:id.
func (h *AdminComplaintsHandler) SoftDelete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.SoftDelete(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restore POST /admin/complaints/:id/restore.
func (h *AdminComplaintsHandler) Restore(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.service.Restore(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Purge DELETE /admin/complaints/:id/purge. Irreversible; requires an
// explicit confirm flag.
func (h *AdminComplaintsHandler) Purge(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	if !c.QueryBool("confirm") {
		return apperrors.NewValidationError("purge requires confirm=true", nil)
	}
	if err := h.service.Purge(c.Context(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History GET /admin/complaints/:id/history.
func (h *AdminComplaintsHandler) History(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	entries, err := h.service.ListHistory(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintHistoryResponses(entries)})
}

func parseAdminComplaintQuery(c *fiber.Ctx) repository.ComplaintFilter {
	filter := repository.ComplaintFilter{}
	filter.Limit, filter.Offset = parsePagination(c)

	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part != "" {
				filter.Statuses = append(filter.Statuses, domain.ComplaintStatus(part))
			}
		}
	}
	if year := c.QueryInt("year", 0); year > 0 {
		filter.Year = &year
	}
	if month := c.QueryInt("month", 0); month >= 1 && month <= 12 {
		filter.Month = &month
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	return filter
}
