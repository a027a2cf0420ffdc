package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/amywork777/magicai/internal/model"
)

const (
	TaskTypeGenerate = "generate:process"
)

// GenerateService handles generation job management
type GenerateService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
}

func NewGenerateService(redisClient *redis.Client, asynqClient *asynq.Client) *GenerateService {
	return &GenerateService{
		redis:       redisClient,
		asynqClient: asynqClient,
	}
}

// StartGenerate queues a new generation job
func (s *GenerateService) StartGenerate(ctx context.Context, req *model.GenerateStartRequest) (*model.GenerateStartResponse, error) {
	jobID := uuid.New().String()
	now := time.Now()

	job := &model.Job{
		ID:        jobID,
		Kind:      req.Kind,
		Status:    model.JobStatusIdle,
		Progress:  0,
		CreatedAt: now,
	}

	payload := &model.GenerateJobPayload{
		Kind:       req.Kind,
		Prompt:     req.Prompt,
		ImageToken: req.ImageToken,
		Style:      req.Style,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job.Payload = payloadBytes

	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := NewGenerateTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	// MaxRetry 0: a failed submission is final, the tracker owns all
	// retrying once a task id exists.
	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue("generate"),
		asynq.MaxRetry(0),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.GenerateStartResponse{
		JobID:             jobID,
		Status:            model.JobStatusIdle,
		EstimatedDuration: 90, // seconds - typical full generation round trip
		CreatedAt:         now,
	}, nil
}

// GetStatus returns the current status of a generation job
func (s *GenerateService) GetStatus(ctx context.Context, jobID string) (*model.GenerateStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.GenerateStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}, nil
}

// GetResult returns the result of a completed generation job
func (s *GenerateService) GetResult(ctx context.Context, jobID string) (*model.GenerateResultResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, fmt.Errorf("job not completed")
	}

	var result model.GenerateResultResponse
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// UpdateJobProgress updates job progress (called by worker). Writes against
// a job that already reached a terminal state are dropped: a superseded or
// finished job must never be mutated by a stale poll.
func (s *GenerateService) UpdateJobProgress(ctx context.Context, jobID string, status model.JobStatus, progress int, step string, lastError string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status.IsTerminal() {
		return nil
	}

	if progress > job.Progress {
		job.Progress = progress
	}
	job.CurrentStep = step
	if lastError != "" {
		job.Error = &lastError
	}

	if status != "" {
		job.Status = status
	}
	if job.StartedAt == nil && (status == model.JobStatusSubmitting || status == model.JobStatusPolling) {
		now := time.Now()
		job.StartedAt = &now
	}

	return s.saveJob(ctx, job)
}

// SetTaskID records the generation service's task identifier
func (s *GenerateService) SetTaskID(ctx context.Context, jobID, taskID string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}
	job.TaskID = taskID
	return s.saveJob(ctx, job)
}

// CompleteJob marks job as completed (called by worker)
func (s *GenerateService) CompleteJob(ctx context.Context, jobID string, result interface{}) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.Result = resultBytes
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// FailJob marks job as failed (called by worker)
func (s *GenerateService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}

	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	now := time.Now()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// Helper methods

func (s *GenerateService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, fmt.Sprintf("job:%s", job.ID), data, 24*time.Hour).Err()
}

func (s *GenerateService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("job:%s", jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("job not found")
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

type generateTaskPayload struct {
	JobID   string          `json:"jobId"`
	Payload json.RawMessage `json:"payload"`
}

// NewGenerateTask wraps a job id and its JSON payload in an asynq task.
// The payload is embedded as raw JSON, not as a byte slice: a []byte would
// marshal to a base64 string and the worker could no longer decode it.
func NewGenerateTask(jobID string, payload []byte) (*asynq.Task, error) {
	data, err := json.Marshal(generateTaskPayload{
		JobID:   jobID,
		Payload: json.RawMessage(payload),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeGenerate, data), nil
}
