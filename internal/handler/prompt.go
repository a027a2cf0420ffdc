package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/amywork777/magicai/internal/model"
	"github.com/amywork777/magicai/internal/service"
	"github.com/amywork777/magicai/pkg/response"
)

type PromptHandler struct {
	service   *service.PromptService
	validator *validator.Validate
}

func NewPromptHandler(svc *service.PromptService, v *validator.Validate) *PromptHandler {
	return &PromptHandler{
		service:   svc,
		validator: v,
	}
}

// Enhance handles POST /api/prompt/enhance
// @Summary      Enhance prompt
// @Description  Expand a short user prompt into a generation-ready description
// @Tags         Prompt
// @Accept       json
// @Produce      json
// @Param        request body model.PromptEnhanceRequest true "Enhance request"
// @Success      200 {object} model.PromptEnhanceResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/prompt/enhance [post]
func (h *PromptHandler) Enhance(c *fiber.Ctx) error {
	var req model.PromptEnhanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Enhance(c.Context(), &req)
	if err != nil {
		return response.AIError(c, err.Error())
	}

	return response.OK(c, result)
}

// Describe handles POST /api/prompt/describe
// @Summary      Describe image
// @Description  Describe an uploaded image as a generation-ready prompt
// @Tags         Prompt
// @Accept       json
// @Produce      json
// @Param        request body model.PromptDescribeRequest true "Describe request"
// @Success      200 {object} model.PromptDescribeResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/prompt/describe [post]
func (h *PromptHandler) Describe(c *fiber.Ctx) error {
	var req model.PromptDescribeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Describe(c.Context(), &req)
	if err != nil {
		return response.AIError(c, err.Error())
	}

	return response.OK(c, result)
}

// formatValidationErrors formats validator errors for response
func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
