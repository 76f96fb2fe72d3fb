package models

import (
	"time"

	"github.com/google/uuid"
)

// Media is an uploaded file stored in S3-compatible object storage.
// Posts reference media by ID; public URLs are resolved through the
// storage client's path helper, never stored denormalized.
type Media struct {
	ID         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	StorageKey string    `json:"storage_key"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
