package model

import "time"

// HandoffRequest asks for a completed artifact to be delivered to the CAD
// application subscribed to the job's channel.
type HandoffRequest struct {
	JobID    string         `json:"jobId" validate:"required"`
	Format   ArtifactFormat `json:"format,omitempty" validate:"omitempty,oneof=glb stl obj"`
	Filename string         `json:"filename,omitempty" validate:"omitempty,max=255"`
}

// HandoffSchemaVersion is the single message schema delivered to receivers.
const HandoffSchemaVersion = "1"

// HandoffMessage is the versioned artifact hand-off payload
type HandoffMessage struct {
	SchemaVersion string         `json:"schemaVersion"`
	JobID         string         `json:"jobId"`
	ArtifactURL   string         `json:"artifactUrl"`
	Format        ArtifactFormat `json:"format"`
	Filename      string         `json:"filename"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// HandoffResponse reports a best-effort delivery. Delivered only reflects
// that the message was queued to subscribers, not that a receiver accepted it.
type HandoffResponse struct {
	Delivered bool           `json:"delivered"`
	Message   HandoffMessage `json:"message"`
}
