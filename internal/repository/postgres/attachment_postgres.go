package postgres

import (
	"context"
	"database/sql"
	"time"

	"proposalapi/internal/model"
	"proposalapi/internal/repository"
)

// AttachmentPostgres is a PostgreSQL implementation of repository.AttachmentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

const attachmentColumns = `id, filename, storage_path, size, content_type, extracted_text, created_at`

func scanAttachment(row interface{ Scan(...any) error }) (*model.Attachment, error) {
	var a model.Attachment
	if err := row.Scan(
		&a.ID,
		&a.Filename,
		&a.StoragePath,
		&a.Size,
		&a.ContentType,
		&a.ExtractedText,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new attachment row and returns the stored record.
func (r *AttachmentPostgres) Create(ctx context.Context, att *model.Attachment) (*model.Attachment, error) {
	const q = `
		INSERT INTO attachments (id, filename, storage_path, size, content_type, extracted_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + attachmentColumns
	row := r.db.QueryRowContext(ctx, q,
		att.ID,
		att.Filename,
		att.StoragePath,
		att.Size,
		att.ContentType,
		att.ExtractedText,
		att.CreatedAt,
	)
	return scanAttachment(row)
}

// FindByID fetches a single attachment by its ID.
func (r *AttachmentPostgres) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	const q = `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE id = $1
	`
	return scanAttachment(r.db.QueryRowContext(ctx, q, id))
}

// Delete removes an attachment by ID. It does not return an error if the row does not exist.
func (r *AttachmentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM attachments WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// ListExpired returns attachments created before the cutoff, oldest first.
func (r *AttachmentPostgres) ListExpired(ctx context.Context, cutoff time.Time) ([]model.Attachment, error) {
	const q = `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE created_at < $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Stats returns count, total size, and the oldest/newest creation timestamps.
// Timestamps are zero when the table is empty.
func (r *AttachmentPostgres) Stats(ctx context.Context) (*repository.Stats, error) {
	const q = `
		SELECT COUNT(*), COALESCE(SUM(size), 0), MIN(created_at), MAX(created_at)
		FROM attachments
	`
	var (
		st     repository.Stats
		oldest sql.NullTime
		newest sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q).Scan(&st.TotalFiles, &st.TotalSize, &oldest, &newest); err != nil {
		return nil, err
	}
	if oldest.Valid {
		st.OldestAt = oldest.Time
	}
	if newest.Valid {
		st.NewestAt = newest.Time
	}
	return &st, nil
}
