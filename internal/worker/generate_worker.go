package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/amywork777/magicai/internal/client"
	"github.com/amywork777/magicai/internal/config"
	"github.com/amywork777/magicai/internal/model"
	"github.com/amywork777/magicai/internal/service"
	"github.com/amywork777/magicai/internal/tracker"
	"github.com/amywork777/magicai/internal/websocket"
)

const describeForGenerationPrompt = `You describe images for an image-to-3D generation service.
Identify the single main object and describe its shape, proportions, and surface
detail so it can be reconstructed as one printable 3D model. Ignore the background.
Reply with the description only.`

// GenerateWorker processes generation jobs: it submits them to the
// generation service and drives the poll loop to a terminal state.
type GenerateWorker struct {
	generateService *service.GenerateService
	uploadService   *service.UploadService
	tripoClient     client.ModelGenerator
	visionClient    *client.VisionClient
	r2Client        client.StorageClient
	trackerCfg      tracker.Config
	hub             *websocket.Hub
}

// NewGenerateWorker creates a new generation worker
func NewGenerateWorker(
	generateService *service.GenerateService,
	uploadService *service.UploadService,
	tripoClient client.ModelGenerator,
	visionClient *client.VisionClient,
	r2Client client.StorageClient,
	trackerCfg *config.TrackerConfig,
	hub *websocket.Hub,
) *GenerateWorker {
	cfg := tracker.DefaultConfig()
	if trackerCfg != nil {
		cfg.MaxRetries = trackerCfg.MaxRetries
		if trackerCfg.PollInterval > 0 {
			cfg.PollInterval = trackerCfg.PollInterval
		}
		if trackerCfg.RetryInterval > 0 {
			cfg.RetryInterval = trackerCfg.RetryInterval
		}
		if trackerCfg.RecheckInterval > 0 {
			cfg.RecheckInterval = trackerCfg.RecheckInterval
		}
		cfg.MaxWait = trackerCfg.MaxWait
	}

	return &GenerateWorker{
		generateService: generateService,
		uploadService:   uploadService,
		tripoClient:     tripoClient,
		visionClient:    visionClient,
		r2Client:        r2Client,
		trackerCfg:      cfg,
		hub:             hub,
	}
}

// ProcessTask handles generation task processing
func (w *GenerateWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting generation job: %s", jobID)

	var payload model.GenerateJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal generation payload: %w", err)
	}

	// Without a configured generation backend, run the staged mock so the
	// rest of the pipeline can be exercised locally.
	if w.tripoClient == nil || !w.tripoClient.IsConfigured() {
		return w.processWithMock(ctx, jobID, &payload)
	}

	genReq := w.buildGenerateRequest(ctx, &payload)

	trk := tracker.New(w.tripoClient, w.trackerCfg, func(job *tracker.Job) {
		w.publishProgress(ctx, jobID, job)
	})

	job, err := trk.Submit(ctx, payload.Kind, genReq)
	if err != nil {
		w.failJob(ctx, jobID, job.LastError)
		return err
	}

	if err := w.generateService.SetTaskID(ctx, jobID, job.ID); err != nil {
		log.Printf("Failed to record task id for job %s: %v", jobID, err)
	}

	if err := trk.Track(ctx, job); err != nil {
		// Only context cancellation reaches here; the job stays non-terminal
		// and a restarted worker would re-submit it.
		log.Printf("Generation job %s interrupted: %v", jobID, err)
		return err
	}

	if job.State == model.JobStatusFailed {
		w.failJob(ctx, jobID, job.LastError)
		return nil
	}

	result := w.buildResult(ctx, jobID, job)

	if err := w.generateService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, result)

	log.Printf("Generation job %s completed", jobID)
	return nil
}

// buildGenerateRequest maps a job payload onto the generation API's request.
// For combined image+text jobs the vision service contributes a description
// of the image; a failed description is logged and skipped.
func (w *GenerateWorker) buildGenerateRequest(ctx context.Context, payload *model.GenerateJobPayload) *client.GenerateModelRequest {
	req := &client.GenerateModelRequest{
		Kind:       string(payload.Kind),
		Prompt:     payload.Prompt,
		ImageToken: payload.ImageToken,
		Style:      string(payload.Style),
	}

	if payload.Kind == model.InputKindImageText && w.visionClient != nil && w.visionClient.IsConfigured() {
		imageURL := w.uploadService.ResolveImageURL(payload.ImageToken)
		description, err := w.visionClient.DescribeImage(ctx, describeForGenerationPrompt, imageURL)
		if err != nil {
			log.Printf("Image description failed, using prompt as-is: %v", err)
		} else if description != "" {
			req.Prompt = fmt.Sprintf("%s. Reference image: %s", payload.Prompt, strings.TrimSpace(description))
		}
	}

	return req
}

// publishProgress bridges tracker observations into the job store and onto
// the WebSocket channel. Terminal transitions are left to CompleteJob and
// FailJob, which also stamp the completion time.
func (w *GenerateWorker) publishProgress(ctx context.Context, jobID string, job *tracker.Job) {
	if job.State.IsTerminal() {
		return
	}

	step := stepLabel(job)

	if err := w.generateService.UpdateJobProgress(ctx, jobID, job.State, job.Progress, step, job.LastError); err != nil {
		log.Printf("Failed to update progress for job %s: %v", jobID, err)
	}

	w.hub.BroadcastProgress(jobID, job.Progress, job.State, step)
}

func stepLabel(job *tracker.Job) string {
	switch job.State {
	case model.JobStatusSubmitting:
		return "Submitting generation request..."
	case model.JobStatusPolling:
		if job.Attempt > 0 {
			return "Generating 3D model (reconnecting)..."
		}
		return "Generating 3D model..."
	case model.JobStatusSucceeded:
		return "Done"
	default:
		return ""
	}
}

// buildResult converts a succeeded tracker job into the API result. When
// storage is configured the artifact is re-homed to R2 because the
// generation service's output URLs expire.
func (w *GenerateWorker) buildResult(ctx context.Context, jobID string, job *tracker.Job) *model.GenerateResultResponse {
	artifactURL := ""
	previewURL := ""
	if job.Result != nil {
		artifactURL = job.Result.ArtifactURL
		previewURL = job.Result.PreviewURL
	}

	if artifactURL != "" && w.r2Client != nil {
		key := fmt.Sprintf("models/%s.glb", jobID)
		stored, err := w.r2Client.CopyFromURL(ctx, artifactURL, key, "model/gltf-binary")
		if err != nil {
			log.Printf("Failed to re-home artifact for job %s, keeping source URL: %v", jobID, err)
		} else {
			artifactURL = stored
		}
	}

	return &model.GenerateResultResponse{
		JobID:           jobID,
		ArtifactURL:     artifactURL,
		PreviewImageURL: previewURL,
		Format:          model.FormatGLB,
		CreatedAt:       time.Now(),
	}
}

func (w *GenerateWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if errMsg == "" {
		errMsg = "Generation failed"
	}
	if err := w.generateService.FailJob(ctx, jobID, errMsg); err != nil {
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "GENERATION_FAILED", errMsg)
}

// processWithMock walks a fixed progress schedule and completes with a
// placeholder artifact.
func (w *GenerateWorker) processWithMock(ctx context.Context, jobID string, payload *model.GenerateJobPayload) error {
	steps := []struct {
		progress int
		step     string
		duration time.Duration
	}{
		{10, "Submitting generation request...", 1 * time.Second},
		{25, "Interpreting input...", 2 * time.Second},
		{45, "Building rough geometry...", 3 * time.Second},
		{70, "Refining mesh...", 3 * time.Second},
		{90, "Texturing...", 2 * time.Second},
		{98, "Finalizing...", 1 * time.Second},
	}

	for _, step := range steps {
		select {
		case <-ctx.Done():
			log.Printf("Generation job %s cancelled", jobID)
			return ctx.Err()
		default:
		}

		if err := w.generateService.UpdateJobProgress(ctx, jobID, model.JobStatusPolling, step.progress, step.step, ""); err != nil {
			log.Printf("Failed to update progress: %v", err)
		}

		w.hub.BroadcastProgress(jobID, step.progress, model.JobStatusPolling, step.step)

		time.Sleep(step.duration)
	}

	result := &model.GenerateResultResponse{
		JobID:           jobID,
		ArtifactURL:     fmt.Sprintf("https://cdn.magicai.dev/models/%s.glb", jobID),
		PreviewImageURL: fmt.Sprintf("https://cdn.magicai.dev/previews/%s.webp", jobID),
		Format:          model.FormatGLB,
		CreatedAt:       time.Now(),
	}

	if err := w.generateService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, result)

	log.Printf("Generation job %s completed (mock)", jobID)
	return nil
}
