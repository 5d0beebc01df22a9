package handlers

import (
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ecocampus/complaint-service/internal/ai"
	"github.com/ecocampus/complaint-service/internal/api/dto"
	"github.com/ecocampus/complaint-service/internal/auth"
	"github.com/ecocampus/complaint-service/internal/objstore"
	"github.com/ecocampus/complaint-service/internal/service"
	apperrors "github.com/ecocampus/complaint-service/pkg/util"
)

// ComplaintsHandler manages end-user complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
	gateway ai.Gateway
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService, gateway ai.Gateway) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService, gateway: gateway}
}

// Submit POST /complaints. Accepts JSON with a base64 image or
// multipart/form-data with an "image" file part.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	input, err := parseSubmitRequest(c)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input.Description) == "" {
		return apperrors.NewValidationError("description required", nil)
	}

	complaint, err := h.service.Submit(c.Context(), principal.User.ID, *input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

func parseSubmitRequest(c *fiber.Ctx) (*service.SubmitInput, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return parseMultipartSubmit(c)
	}

	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	image, err := req.Image.ToAIImage()
	if err != nil {
		return nil, apperrors.NewValidationError("image must be base64 encoded", nil)
	}
	return &service.SubmitInput{
		Location:    req.Location,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		Image:       image,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}, nil
}

func parseMultipartSubmit(c *fiber.Ctx) (*service.SubmitInput, error) {
	input := &service.SubmitInput{
		Location:    c.FormValue("location"),
		Description: c.FormValue("description"),
		IsPublic:    c.FormValue("is_public") == "true",
	}
	if lat, err := strconv.ParseFloat(c.FormValue("latitude"), 64); err == nil {
		input.Latitude = &lat
	}
	if lng, err := strconv.ParseFloat(c.FormValue("longitude"), 64); err == nil {
		input.Longitude = &lng
	}

	header, err := c.FormFile("image")
	if err != nil {
		return nil, apperrors.NewValidationError("a photo is required to file a complaint", nil)
	}
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("image file unreadable", nil)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, objstore.MaxPhotoSize+1))
	if err != nil {
		return nil, apperrors.NewValidationError("image file unreadable", nil)
	}

	input.Image = &ai.ImagePayload{
		MimeType: header.Header.Get(fiber.HeaderContentType),
		Data:     data,
	}
	return input, nil
}

// ListPublic GET /complaints/public.
func (h *ComplaintsHandler) ListPublic(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	complaints, err := h.service.ListPublic(c.Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponses(complaints)})
}

// ListMine GET /complaints/mine.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePagination(c)
	complaints, err := h.service.ListByOwner(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponses(complaints)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	// only owners and administrators may see private or deleted complaints
	owner := complaint.UserID == principal.User.ID
	if !owner && !principal.IsAdministrator() {
		if !complaint.IsPublic || complaint.IsDeleted() {
			return apperrors.NewNotFound("complaint", nil)
		}
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Vote POST /complaints/:id/vote.
func (h *ComplaintsHandler) Vote(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.CastVote(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// ClassifyImage POST /complaints/classify-image.
func (h *ComplaintsHandler) ClassifyImage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.ClassifyImageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	image, err := req.Image.ToAIImage()
	if err != nil || image == nil || len(image.Data) == 0 {
		return apperrors.NewValidationError("image must be base64 encoded", nil)
	}

	classification := h.gateway.ClassifyImage(c.Context(), *image)
	return c.JSON(fiber.Map{"data": dto.ClassifyImageResponse{Classification: classification}})
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
