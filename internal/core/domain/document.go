package domain

import "time"

type DocumentStatus string

const (
	// StatusUploaded is the initial state set by the upload handler.
	StatusUploaded DocumentStatus = "uploaded"
	// StatusProcessing is entered synchronously before any blocking work starts.
	StatusProcessing DocumentStatus = "processing"
	// StatusIndexed means extraction succeeded and chunks are searchable.
	StatusIndexed DocumentStatus = "indexed"
	// StatusProcessed means extraction succeeded but indexing was given up on
	// after retries; the content is usable, just not searchable.
	StatusProcessed DocumentStatus = "processed"
	// StatusFailed means extraction or validation failed.
	StatusFailed DocumentStatus = "failed"
)

// Terminal reports whether no further automatic transition leaves the status.
func (s DocumentStatus) Terminal() bool {
	switch s {
	case StatusIndexed, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// ProgressMessage is the human-readable description shown by the status endpoint.
func (s DocumentStatus) ProgressMessage() string {
	switch s {
	case StatusUploaded:
		return "Document uploaded, waiting to be processed"
	case StatusProcessing:
		return "Extracting text and indexing document"
	case StatusIndexed:
		return "Document fully processed and indexed"
	case StatusProcessed:
		return "Document processed (indexing unavailable)"
	case StatusFailed:
		return "Processing failed"
	}
	return "Unknown status"
}

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Content     string         `json:"content,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ContentPreview returns at most limit bytes of extracted content,
// with an ellipsis when truncated.
func (d *Document) ContentPreview(limit int) string {
	if limit <= 0 || len(d.Content) <= limit {
		return d.Content
	}
	return d.Content[:limit] + "..."
}
