// Package attachments implements evidence file handling for workflow
// documents. Files are uploaded to blob storage, registered with their
// metadata, and referenced from observations by attachment ID.
package attachments

import (
	"time"

	"github.com/google/uuid"
)

// Attachment represents an uploaded evidence file with its metadata and blob
// storage reference. DocumentID links the attachment to the workflow document
// it supports; unlinked uploads carry a nil DocumentID until referenced.
type Attachment struct {
	ID          uuid.UUID  `json:"id"`
	DocumentID  *uuid.UUID `json:"document_id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	PageCount   *int       `json:"page_count"`
	StorageKey  string     `json:"storage_key"`
	UploadedAt  time.Time  `json:"uploaded_at"`
}

// CreateCommand carries the data needed to upload and register an attachment.
// Data holds the raw file bytes. PageCount is optional and may be extracted
// by the caller via pdfcpu; nil values are stored as NULL.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	DocumentID  *uuid.UUID
	PageCount   *int
}
