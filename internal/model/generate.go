package model

import "time"

// GenerateStartRequest starts a new generation job.
// Text jobs need a prompt, image jobs an uploaded image token, image_text both.
type GenerateStartRequest struct {
	Kind       InputKind  `json:"kind" validate:"required,oneof=text image image_text"`
	Prompt     string     `json:"prompt,omitempty" validate:"required_if=Kind text,required_if=Kind image_text,omitempty,max=2000"`
	ImageToken string     `json:"imageToken,omitempty" validate:"required_if=Kind image,required_if=Kind image_text"`
	Style      ModelStyle `json:"style,omitempty" validate:"omitempty,oneof=realistic cartoon low_poly sculpture"`
}

// GenerateStartResponse is returned when a job is accepted
type GenerateStartResponse struct {
	JobID             string    `json:"jobId"`
	Status            JobStatus `json:"status"`
	EstimatedDuration int       `json:"estimatedDuration"` // seconds
	CreatedAt         time.Time `json:"createdAt"`
}

// GenerateStatusResponse reports job progress
type GenerateStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// GenerateResultResponse carries the final artifact of a succeeded job.
// ArtifactURL may be empty when the generation service reported success
// without any output URL; clients must handle that case.
type GenerateResultResponse struct {
	JobID           string         `json:"jobId"`
	ArtifactURL     string         `json:"artifactUrl"`
	PreviewImageURL string         `json:"previewImageUrl,omitempty"`
	Format          ArtifactFormat `json:"format"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// PromptEnhanceRequest asks the vision service to expand a short prompt
type PromptEnhanceRequest struct {
	Prompt string     `json:"prompt" validate:"required,min=1,max=500"`
	Style  ModelStyle `json:"style,omitempty" validate:"omitempty,oneof=realistic cartoon low_poly sculpture"`
}

// PromptEnhanceResponse returns the expanded prompt
type PromptEnhanceResponse struct {
	Prompt   string `json:"prompt"`
	Enhanced string `json:"enhanced"`
}

// PromptDescribeRequest asks the vision service to describe an uploaded image
type PromptDescribeRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,url"`
}

// PromptDescribeResponse returns the description used to seed generation
type PromptDescribeResponse struct {
	Description string `json:"description"`
}
