package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/amywork777/magicai/internal/client"
	"github.com/amywork777/magicai/internal/model"
)

const enhanceSystemPrompt = `You write prompts for an image-to-3D generation service.
Expand the user's idea into a single concise description of one printable object:
name the subject, its pose or orientation, surface detail, and overall silhouette.
Do not mention colors, backgrounds, scenes, or multiple objects. Reply with the
description only.`

const describeSystemPrompt = `You describe images for an image-to-3D generation service.
Identify the single main object and describe its shape, proportions, and surface
detail so it can be reconstructed as one printable 3D model. Ignore the background.
Reply with the description only.`

// PromptService enriches generation prompts via the vision API
type PromptService struct {
	visionClient *client.VisionClient
}

func NewPromptService(visionClient *client.VisionClient) *PromptService {
	return &PromptService{
		visionClient: visionClient,
	}
}

// Enhance expands a short user prompt into a generation-ready description
func (s *PromptService) Enhance(ctx context.Context, req *model.PromptEnhanceRequest) (*model.PromptEnhanceResponse, error) {
	if s.visionClient == nil || !s.visionClient.IsConfigured() {
		return s.enhanceMock(req), nil
	}

	user := req.Prompt
	if req.Style != "" {
		user = fmt.Sprintf("%s (style: %s)", req.Prompt, req.Style)
	}

	enhanced, err := s.visionClient.ChatCompletion(ctx, enhanceSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("prompt enhancement failed: %w", err)
	}

	return &model.PromptEnhanceResponse{
		Prompt:   req.Prompt,
		Enhanced: strings.TrimSpace(enhanced),
	}, nil
}

// Describe turns an uploaded image into a text description for generation
func (s *PromptService) Describe(ctx context.Context, req *model.PromptDescribeRequest) (*model.PromptDescribeResponse, error) {
	if s.visionClient == nil || !s.visionClient.IsConfigured() {
		return &model.PromptDescribeResponse{
			Description: "A single solid object with smooth surfaces, suitable for 3D printing.",
		}, nil
	}

	description, err := s.visionClient.DescribeImage(ctx, describeSystemPrompt, req.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("image description failed: %w", err)
	}

	return &model.PromptDescribeResponse{
		Description: strings.TrimSpace(description),
	}, nil
}

// Mock implementation for development/testing
func (s *PromptService) enhanceMock(req *model.PromptEnhanceRequest) *model.PromptEnhanceResponse {
	style := req.Style
	if style == "" {
		style = model.StyleRealistic
	}
	return &model.PromptEnhanceResponse{
		Prompt:   req.Prompt,
		Enhanced: fmt.Sprintf("A %s 3D model of %s, single solid object with clean surfaces and a stable base.", style, req.Prompt),
	}
}
