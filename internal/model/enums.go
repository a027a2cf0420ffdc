package model

// Input kinds — which submission path created a job
type InputKind string

const (
	InputKindText      InputKind = "text"
	InputKindImage     InputKind = "image"
	InputKindImageText InputKind = "image_text"
)

var ValidInputKinds = []InputKind{
	InputKindText, InputKindImage, InputKindImageText,
}

// Job status
type JobStatus string

const (
	JobStatusIdle       JobStatus = "idle"
	JobStatusSubmitting JobStatus = "submitting"
	JobStatusPolling    JobStatus = "polling"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether a job in this status can still change
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// Artifact formats
type ArtifactFormat string

const (
	FormatGLB ArtifactFormat = "glb"
	FormatSTL ArtifactFormat = "stl"
	FormatOBJ ArtifactFormat = "obj"
)

var ValidArtifactFormats = []ArtifactFormat{
	FormatGLB, FormatSTL, FormatOBJ,
}

// Model styles accepted by the generation service
type ModelStyle string

const (
	StyleRealistic ModelStyle = "realistic"
	StyleCartoon   ModelStyle = "cartoon"
	StyleLowPoly   ModelStyle = "low_poly"
	StyleSculpture ModelStyle = "sculpture"
)
