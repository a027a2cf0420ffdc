package e2e

import (
	"net/http"
	"testing"
)

func TestPromptEnhance_Success(t *testing.T) {
	ta := setupApp(t)

	body := `{"prompt": "a dragon", "style": "low_poly"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/prompt/enhance", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["prompt"] != "a dragon" {
		t.Errorf("expected original prompt echoed back, got %v", result["prompt"])
	}
	enhanced, ok := result["enhanced"].(string)
	if !ok || enhanced == "" {
		t.Error("expected non-empty 'enhanced' in response")
	}
}

func TestPromptEnhance_MissingPrompt(t *testing.T) {
	ta := setupApp(t)

	body := `{"style": "realistic"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/prompt/enhance", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestPromptEnhance_InvalidStyle(t *testing.T) {
	ta := setupApp(t)

	body := `{"prompt": "a dragon", "style": "photorealistic"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/prompt/enhance", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestPromptEnhance_NoAuth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/prompt/enhance", `{"prompt": "a dragon"}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestPromptDescribe_Success(t *testing.T) {
	ta := setupApp(t)

	body := `{"imageUrl": "https://example.com/photo.png"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/prompt/describe", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	description, ok := result["description"].(string)
	if !ok || description == "" {
		t.Error("expected non-empty 'description' in response")
	}
}

func TestPromptDescribe_InvalidURL(t *testing.T) {
	ta := setupApp(t)

	body := `{"imageUrl": "not-a-url"}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/prompt/describe", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}
