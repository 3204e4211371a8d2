package types

import "time"

// SubmissionMetadata is the request context captured with every submission.
type SubmissionMetadata struct {
	UserAgent string    `json:"userAgent"`
	IPAddress string    `json:"ipAddress"`
	Referer   string    `json:"referer"`
	Timestamp time.Time `json:"timestamp"`
	EmbedKey  string    `json:"embedKey,omitempty"`
}

// Submission is an accepted visitor response. It is never updated.
type Submission struct {
	ID          string                 `json:"id"`
	FormID      string                 `json:"formId"`
	Data        map[string]interface{} `json:"data"`
	Metadata    SubmissionMetadata     `json:"metadata"`
	SubmitterIP string                 `json:"submitterIp"`
	SubmittedAt time.Time              `json:"submittedAt"`
}

// SubmitRequest is the body of POST /api/forms/submit.
type SubmitRequest struct {
	FormID   string                 `json:"formId"`
	EmbedKey string                 `json:"embedKey,omitempty"`
	Data     map[string]interface{} `json:"data"`
}

// SubmitResult is returned for an accepted submission. Replayed is set when
// an idempotency key matched an earlier request.
type SubmitResult struct {
	SubmissionID string `json:"submissionId"`
	Replayed     bool   `json:"replayed,omitempty"`
}

// UploadedFile is the value a file field carries after an upload.
type UploadedFile struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Path     string `json:"path"`
}
