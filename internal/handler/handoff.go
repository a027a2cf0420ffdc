package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/amywork777/magicai/internal/model"
	"github.com/amywork777/magicai/internal/service"
	"github.com/amywork777/magicai/pkg/response"
)

type HandoffHandler struct {
	service   service.ArtifactHandoff
	validator *validator.Validate
}

func NewHandoffHandler(svc service.ArtifactHandoff, v *validator.Validate) *HandoffHandler {
	return &HandoffHandler{
		service:   svc,
		validator: v,
	}
}

// CAD handles POST /api/handoff/cad
// @Summary      Hand off artifact to CAD
// @Description  Deliver a completed model to a CAD application listening on the job's channel
// @Tags         Handoff
// @Accept       json
// @Produce      json
// @Param        request body model.HandoffRequest true "Hand-off request"
// @Success      200 {object} model.HandoffResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Failure      409 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/handoff/cad [post]
func (h *HandoffHandler) CAD(c *fiber.Ctx) error {
	var req model.HandoffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Handoff(c.Context(), &req)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		if err.Error() == "job not completed" {
			return response.JobNotReady(c, "Job not completed yet")
		}
		if err.Error() == "job has no artifact" {
			return response.JobFailed(c, "Job completed without an artifact")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}
