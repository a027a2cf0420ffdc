package tracker

import (
	"encoding/json"
	"strconv"
	"strings"
)

// UpdateKind tags the recognized variants of a status reply
type UpdateKind int

const (
	UpdateUnrecognized UpdateKind = iota
	UpdateRunning
	UpdateSucceeded
	UpdateFailed
	UpdateUnauthorized
)

// Update is the normalized form of one status reply. Normalization is total:
// every (httpStatus, body) pair maps to some Update, malformed input to the
// unrecognized variant, so the poll loop can never be interrupted by a
// decode failure.
type Update struct {
	Kind        UpdateKind
	Status      string
	Progress    int // 0–100, 0 when absent or non-numeric
	HasProgress bool
	ArtifactURL string // primary output, promoted from base model when absent
	PreviewURL  string
	Soft        bool // usable data arrived on a non-2xx reply
}

// statusPayload covers the shapes the endpoint has been seen to produce,
// flat and wrapped in a data envelope.
type statusPayload struct {
	Status   string          `json:"status"`
	Progress json.RawMessage `json:"progress"`
	Output   *statusOutput   `json:"output"`
	Data     *statusPayload  `json:"data"`
}

type statusOutput struct {
	Model        string `json:"model"`
	BaseModel    string `json:"base_model"`
	PreviewImage string `json:"preview_image"`
}

// Normalize maps a raw status reply to a tagged update.
func Normalize(httpStatus int, body []byte) Update {
	ok := httpStatus >= 200 && httpStatus < 300

	var p statusPayload
	if err := json.Unmarshal(body, &p); err == nil {
		if p.Status == "" && p.Data != nil {
			p = *p.Data
		}
		if u, usable := classify(&p); usable {
			u.Soft = !ok
			return u
		}
	}

	// No usable status in the body; classify by transport alone.
	if httpStatus == 401 || httpStatus == 403 {
		return Update{Kind: UpdateUnauthorized}
	}
	return Update{Kind: UpdateUnrecognized}
}

func classify(p *statusPayload) (Update, bool) {
	status := strings.ToLower(strings.TrimSpace(p.Status))
	if status == "" {
		return Update{}, false
	}

	u := Update{Status: status}
	u.Progress, u.HasProgress = parseProgress(p.Progress)

	switch status {
	case "success", "succeeded", "completed", "complete", "done":
		u.Kind = UpdateSucceeded
		u.Progress = 100
		u.HasProgress = true
		if p.Output != nil {
			u.ArtifactURL = p.Output.Model
			if u.ArtifactURL == "" {
				u.ArtifactURL = p.Output.BaseModel
			}
			u.PreviewURL = p.Output.PreviewImage
		}
	case "failed", "error", "cancelled", "canceled", "unknown":
		u.Kind = UpdateFailed
	case "running", "queued", "pending", "generating", "processing", "in_progress":
		u.Kind = UpdateRunning
	default:
		// A status string we have never seen is not a terminal signal.
		u.Kind = UpdateUnrecognized
	}

	return u, true
}

// parseProgress accepts a JSON number or a numeric string, clamped to 0–100.
func parseProgress(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	}

	p := int(f)
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return p, true
}
