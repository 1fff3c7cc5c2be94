package repository

import (
	"context"
	"time"

	"proposalapi/internal/model"
)

// AttachmentRepository defines data access for attachment metadata using SQL
// queries only. No business logic here — strictly persistence operations.
type AttachmentRepository interface {
	// Create inserts a new attachment record and returns the stored row
	// (may include values set by the DB).
	Create(ctx context.Context, att *model.Attachment) (*model.Attachment, error)

	// FindByID returns an attachment by its ID.
	FindByID(ctx context.Context, id string) (*model.Attachment, error)

	// Delete removes an attachment by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// ListExpired returns attachments created before the cutoff, oldest first.
	// Used by the retention sweep.
	ListExpired(ctx context.Context, cutoff time.Time) ([]model.Attachment, error)

	// Stats returns aggregate numbers over all stored attachments.
	Stats(ctx context.Context) (*Stats, error)
}

// Stats holds aggregate attachment storage numbers.
type Stats struct {
	TotalFiles int
	TotalSize  int64
	OldestAt   time.Time
	NewestAt   time.Time
}
