package model

import "time"

// Attachment represents an uploaded file whose extracted text informs
// section generation.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
type Attachment struct {
	ID       string `json:"file_id"`
	Filename string `json:"filename"`
	// StoragePath is the internal object key; it never leaves the API.
	StoragePath   string    `json:"-"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"content_type"`
	ExtractedText string    `json:"extracted_text,omitempty"`
	CreatedAt     time.Time `json:"-"`
}
