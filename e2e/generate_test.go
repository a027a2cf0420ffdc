package e2e

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func validGenerateStartBody() string {
	return `{
		"kind": "text",
		"prompt": "a small dragon perched on a rock",
		"style": "realistic"
	}`
}

func TestGenerateStart_Success(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/start", validGenerateStartBody())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	if result["jobId"] == nil || result["jobId"] == "" {
		t.Error("expected 'jobId' in response")
	}
	if result["status"] != "idle" {
		t.Errorf("expected status 'idle', got %v", result["status"])
	}
}

func TestGenerateStart_NoAuth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/generate/start", validGenerateStartBody(), nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestGenerateStart_TextWithoutPrompt(t *testing.T) {
	ta := setupApp(t)

	body := `{"kind": "text"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/start", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestGenerateStart_ImageWithoutToken(t *testing.T) {
	ta := setupApp(t)

	body := `{"kind": "image"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/start", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestGenerateStart_InvalidKind(t *testing.T) {
	ta := setupApp(t)

	body := `{"kind": "video", "prompt": "a dragon"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/start", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestGenerateStatus_Success(t *testing.T) {
	ta := setupApp(t)

	// First, start a generation to get a jobId
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/start", validGenerateStartBody())
	if err != nil {
		t.Fatalf("start request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	startResult := parseJSON(t, resp)
	jobID := startResult["jobId"].(string)

	// Now check status
	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/status/"+jobID, "")
	if err != nil {
		t.Fatalf("status request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	statusResult := parseJSON(t, resp)
	if statusResult["jobId"] != jobID {
		t.Errorf("expected jobId %s, got %v", jobID, statusResult["jobId"])
	}
	if statusResult["status"] == nil {
		t.Error("expected 'status' field in response")
	}
	progress, ok := statusResult["progress"].(float64)
	if !ok {
		t.Fatalf("expected numeric 'progress', got %v", statusResult["progress"])
	}
	if progress < 0 || progress > 100 {
		t.Errorf("progress out of range: %v", progress)
	}
}

func TestGenerateStatus_NotFound(t *testing.T) {
	ta := setupApp(t)

	fakeJobID := uuid.New().String()
	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/status/"+fakeJobID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("expected error code NOT_FOUND, got %v", errObj["code"])
	}
}

func TestGenerateResult_NotFound(t *testing.T) {
	ta := setupApp(t)

	fakeJobID := uuid.New().String()
	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/result/"+fakeJobID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestGenerateResult_NotCompleted(t *testing.T) {
	ta := setupApp(t)

	// Start a job; without a worker running it stays queued
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generate/start", validGenerateStartBody())
	if err != nil {
		t.Fatalf("start request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)
	startResult := parseJSON(t, resp)
	jobID := startResult["jobId"].(string)

	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/api/generate/result/"+jobID, "")
	if err != nil {
		t.Fatalf("result request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusConflict)

	result := parseJSON(t, resp)
	errObj := result["error"].(map[string]interface{})
	if errObj["code"] != "JOB_NOT_READY" {
		t.Errorf("expected error code JOB_NOT_READY, got %v", errObj["code"])
	}
}
