package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/amywork777/magicai/internal/service"
	"github.com/amywork777/magicai/pkg/response"
)

const maxUploadSize = 20 * 1024 * 1024 // 20MB

type UploadHandler struct {
	service   *service.UploadService
	validator *validator.Validate
}

func NewUploadHandler(svc *service.UploadService, v *validator.Validate) *UploadHandler {
	return &UploadHandler{
		service:   svc,
		validator: v,
	}
}

// Image handles POST /api/upload/image
// @Summary      Upload source image
// @Description  Upload an image to use as input for image-to-3D generation
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image file (PNG, JPEG, WebP; max 20MB)"
// @Success      201 {object} model.UploadImageResponse
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      429 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/upload/image [post]
func (h *UploadHandler) Image(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	if file.Size > maxUploadSize {
		return response.ValidationError(c, "File size exceeds 20MB limit", map[string]interface{}{
			"maxSize":  maxUploadSize,
			"fileSize": file.Size,
		})
	}

	contentType := file.Header.Get("Content-Type")
	validTypes := map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
		"image/jpg":  true,
		"image/webp": true,
	}

	if !validTypes[contentType] {
		return response.ValidationError(c, "Invalid file type. Supported: PNG, JPEG, WebP", map[string]interface{}{
			"contentType": contentType,
		})
	}

	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	result, err := h.service.UploadImage(c.Context(), contentType, f, file.Size)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, result)
}

// DeleteImage handles DELETE /api/upload/image/:imageId
// @Summary      Delete source image
// @Description  Delete a previously uploaded source image
// @Tags         Upload
// @Produce      json
// @Param        imageId path string true "Image ID"
// @Success      204 "No Content"
// @Failure      400 {object} response.ErrorResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      500 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /api/upload/image/{imageId} [delete]
func (h *UploadHandler) DeleteImage(c *fiber.Ctx) error {
	imageID := c.Params("imageId")
	if imageID == "" {
		return response.ValidationError(c, "Image ID is required", nil)
	}

	err := h.service.DeleteImage(c.Context(), imageID)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.NoContent(c)
}
