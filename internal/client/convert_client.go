package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amywork777/magicai/internal/config"
)

// MeshConverter defines the interface for mesh conversion operations
type MeshConverter interface {
	Convert(ctx context.Context, req *ConvertRequest) (*ConvertResponse, error)
	HealthCheck(ctx context.Context) error
	IsConfigured() bool
}

// ConvertClient implements MeshConverter for the conversion microservice
type ConvertClient struct {
	httpClient *http.Client
	baseURL    string
}

// ConvertRequest represents the request for mesh conversion
type ConvertRequest struct {
	InputURL  string  `json:"input_url"`
	Format    string  `json:"format"` // "stl", "obj", "glb"
	Scale     float64 `json:"scale,omitempty"`
	OutputKey string  `json:"output_key"`
}

// ConvertResponse represents the response from mesh conversion
type ConvertResponse struct {
	OutputURL string `json:"output_url"`
	Format    string `json:"format"`
	Size      int64  `json:"size"`
	Triangles int    `json:"triangles,omitempty"`
}

// NewConvertClient creates a new mesh conversion client
func NewConvertClient(cfg *config.ConvertConfig) *ConvertClient {
	return &ConvertClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		baseURL: cfg.ServiceURL,
	}
}

// Convert sends a mesh to the conversion endpoint
func (c *ConvertClient) Convert(ctx context.Context, req *ConvertRequest) (*ConvertResponse, error) {
	var result ConvertResponse
	if err := c.post(ctx, "/convert", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// HealthCheck checks if the conversion service is available
func (c *ConvertClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("convert service unhealthy: status %d", resp.StatusCode)
	}

	return nil
}

// post sends a POST request with JSON body and parses the response
func (c *ConvertClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("convert service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *ConvertClient) IsConfigured() bool {
	return c.baseURL != ""
}
