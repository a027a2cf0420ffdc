package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/amywork777/magicai/internal/config"
)

// ModelGenerator defines the interface for 3D model generation operations
type ModelGenerator interface {
	StartGeneration(ctx context.Context, req *GenerateModelRequest) (*GenerateModelResponse, error)
	CheckStatus(ctx context.Context, taskID string) (*RawStatus, error)
	IsConfigured() bool
}

// TripoClient implements ModelGenerator for the Tripo API
type TripoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// GenerateModelRequest represents the request for model generation
type GenerateModelRequest struct {
	Kind       string `json:"kind"` // "text" or "image"
	Prompt     string `json:"prompt,omitempty"`
	ImageToken string `json:"image_token,omitempty"`
	Style      string `json:"style,omitempty"`
}

// GenerateModelResponse represents the response from model generation
type GenerateModelResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// RawStatus is an unparsed status reply. The body is returned even for
// non-2xx responses because the endpoint sometimes puts a usable
// status/progress pair in error replies; interpretation belongs to the
// tracker, not the transport.
type RawStatus struct {
	HTTPStatus int
	Body       []byte
}

// NewTripoClient creates a new Tripo API client
func NewTripoClient(cfg *config.TripoConfig) *TripoClient {
	return &TripoClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// StartGeneration initiates model generation. The call is never retried;
// a failed submission fails the job.
func (c *TripoClient) StartGeneration(ctx context.Context, genReq *GenerateModelRequest) (*GenerateModelResponse, error) {
	bodyBytes, err := json.Marshal(genReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/models/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[Tripo API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Tripo API] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Tripo API] ← %d %s %s", resp.StatusCode, req.Method, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tripo API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result GenerateModelResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.TaskID == "" {
		return nil, fmt.Errorf("tripo API returned no task_id")
	}

	return &result, nil
}

// CheckStatus fetches the raw status of a generation task. Only transport
// failures return an error; any HTTP response, whatever its status code,
// is handed back whole.
func (c *TripoClient) CheckStatus(ctx context.Context, taskID string) (*RawStatus, error) {
	endpoint := fmt.Sprintf("%s/v1/models/status/%s", c.baseURL, taskID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Tripo API] ✗ GET %s — request failed: %v", endpoint, err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[Tripo API] ✗ GET %s — failed to read response: %v", endpoint, err)
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Printf("[Tripo API] ← %d GET %s — %s", resp.StatusCode, endpoint, string(respBody))

	return &RawStatus{
		HTTPStatus: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *TripoClient) IsConfigured() bool {
	return c.apiKey != ""
}
