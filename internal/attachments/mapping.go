package attachments

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/initra/procflow/pkg/query"
	"github.com/initra/procflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "attachments", "a").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("uploaded_at", "UploadedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for attachment queries.
// Nil fields are ignored. DocumentID and ContentType use exact matching.
// Filename uses case-insensitive contains matching.
type Filters struct {
	DocumentID  *uuid.UUID `json:"document_id,omitempty"`
	Filename    *string    `json:"filename,omitempty"`
	ContentType *string    `json:"content_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if d := values.Get("document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.DocumentID = &id
		}
	}
	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}
	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	return f
}

func scanAttachment(s repository.Scanner) (Attachment, error) {
	var a Attachment
	err := s.Scan(
		&a.ID,
		&a.DocumentID,
		&a.Filename,
		&a.ContentType,
		&a.SizeBytes,
		&a.PageCount,
		&a.StorageKey,
		&a.UploadedAt,
	)
	return a, err
}
