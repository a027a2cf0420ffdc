package model

import "time"

// Job represents one tracked generation request from submission to terminal outcome
type Job struct {
	ID          string     `json:"id"`
	Kind        InputKind  `json:"kind"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	Attempt     int        `json:"attempt"`
	CurrentStep string     `json:"currentStep,omitempty"`
	TaskID      string     `json:"taskId,omitempty"` // identifier assigned by the generation service
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"-"`                // carried in the queue task, not the job record
	Result      []byte     `json:"result,omitempty"` // stored as JSON
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// GenerateJobPayload contains the data for a generation job
type GenerateJobPayload struct {
	Kind       InputKind  `json:"kind"`
	Prompt     string     `json:"prompt,omitempty"`
	ImageToken string     `json:"imageToken,omitempty"`
	Style      ModelStyle `json:"style,omitempty"`
}
