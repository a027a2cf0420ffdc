package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/amywork777/magicai/internal/client"
	"github.com/amywork777/magicai/internal/model"
)

// ImageUploader defines the interface for source image uploads
type ImageUploader interface {
	UploadImage(ctx context.Context, contentType string, file io.Reader, fileSize int64) (*model.UploadImageResponse, error)
	DeleteImage(ctx context.Context, imageID string) error
}

// UploadService stores source images for image-to-model generation
type UploadService struct {
	r2Client client.StorageClient
}

// NewUploadService creates a new upload service with R2 client
func NewUploadService(r2Client client.StorageClient) *UploadService {
	return &UploadService{
		r2Client: r2Client,
	}
}

// UploadImage stores a source image and returns the token referenced by
// generate requests.
func (s *UploadService) UploadImage(ctx context.Context, contentType string, file io.Reader, fileSize int64) (*model.UploadImageResponse, error) {
	imageID := uuid.New().String()
	key := imageKey(imageID, contentType)

	// Use mock response if client is not configured
	if s.r2Client == nil {
		return s.uploadMock(imageID), nil
	}

	fileURL, err := s.r2Client.Upload(ctx, key, file, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	return &model.UploadImageResponse{
		ID:        imageID,
		FileURL:   fileURL,
		Size:      fileSize,
		CreatedAt: time.Now(),
	}, nil
}

// DeleteImage removes a source image
func (s *UploadService) DeleteImage(ctx context.Context, imageID string) error {
	if s.r2Client == nil {
		return nil // Mock: no-op
	}
	return s.r2Client.Delete(ctx, imageKey(imageID, "image/png"))
}

// ResolveImageURL maps an image token to its public URL
func (s *UploadService) ResolveImageURL(imageID string) string {
	if s.r2Client == nil {
		return fmt.Sprintf("https://cdn.magicai.dev/images/%s.png", imageID)
	}
	return s.r2Client.GetPublicURL(imageKey(imageID, "image/png"))
}

func imageKey(imageID, contentType string) string {
	ext := "png"
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	}
	return fmt.Sprintf("images/%s.%s", imageID, ext)
}

// Mock implementation for development/testing
func (s *UploadService) uploadMock(imageID string) *model.UploadImageResponse {
	return &model.UploadImageResponse{
		ID:        imageID,
		FileURL:   fmt.Sprintf("https://cdn.magicai.dev/images/%s.png", imageID),
		Size:      204800,
		CreatedAt: time.Now(),
	}
}
