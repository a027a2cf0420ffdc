package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/amywork777/magicai/internal/client"
	"github.com/amywork777/magicai/internal/model"
	"github.com/amywork777/magicai/internal/websocket"
)

// ArtifactHandoff defines the interface for delivering artifacts to CAD
type ArtifactHandoff interface {
	Handoff(ctx context.Context, req *model.HandoffRequest) (*model.HandoffResponse, error)
}

// HandoffService delivers completed artifacts to a CAD application listening
// on the job's channel. Delivery is best-effort: it never blocks or fails
// the job lifecycle, and a lost message is the receiver's problem to retry.
type HandoffService struct {
	generateService *GenerateService
	convertClient   client.MeshConverter
	r2Client        client.StorageClient
	hub             *websocket.Hub
}

func NewHandoffService(generateService *GenerateService, convertClient client.MeshConverter, r2Client client.StorageClient, hub *websocket.Hub) *HandoffService {
	return &HandoffService{
		generateService: generateService,
		convertClient:   convertClient,
		r2Client:        r2Client,
		hub:             hub,
	}
}

// Handoff builds the versioned hand-off message for a succeeded job and
// broadcasts it to the job's subscribers.
func (s *HandoffService) Handoff(ctx context.Context, req *model.HandoffRequest) (*model.HandoffResponse, error) {
	result, err := s.generateService.GetResult(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	if result.ArtifactURL == "" {
		return nil, fmt.Errorf("job has no artifact")
	}

	format := req.Format
	if format == "" {
		format = result.Format
	}

	artifactURL := result.ArtifactURL
	if format != result.Format {
		converted, err := s.convert(ctx, result.ArtifactURL, format)
		if err != nil {
			// Best-effort: hand off the original format rather than
			// blocking on the converter.
			log.Printf("Handoff conversion failed for job %s, delivering %s: %v", req.JobID, result.Format, err)
			format = result.Format
		} else {
			artifactURL = converted
		}
	}

	filename := req.Filename
	if filename == "" {
		filename = fmt.Sprintf("model-%s.%s", req.JobID, format)
	}

	msg := model.HandoffMessage{
		SchemaVersion: model.HandoffSchemaVersion,
		JobID:         req.JobID,
		ArtifactURL:   artifactURL,
		Format:        format,
		Filename:      filename,
		CreatedAt:     time.Now(),
	}

	delivered := false
	if s.hub != nil {
		s.hub.BroadcastHandoff(req.JobID, msg)
		delivered = true
	}

	return &model.HandoffResponse{
		Delivered: delivered,
		Message:   msg,
	}, nil
}

// convert re-encodes the artifact and stores it under our own key
func (s *HandoffService) convert(ctx context.Context, inputURL string, format model.ArtifactFormat) (string, error) {
	if s.convertClient == nil || !s.convertClient.IsConfigured() {
		return "", fmt.Errorf("converter not configured")
	}

	outputKey := fmt.Sprintf("handoff/%s.%s", uuid.New().String(), format)

	resp, err := s.convertClient.Convert(ctx, &client.ConvertRequest{
		InputURL:  inputURL,
		Format:    string(format),
		OutputKey: outputKey,
	})
	if err != nil {
		return "", err
	}

	return resp.OutputURL, nil
}
