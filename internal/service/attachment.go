package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"proposalapi/internal/extract"
	"proposalapi/internal/model"
	"proposalapi/internal/repository"
	"proposalapi/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("attachment not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrFilenameRequired = errors.New("filename is required")
	ErrFileTypeInvalid  = errors.New("file type not allowed, only .pdf is supported")
	ErrFileTooLarge     = errors.New("file too large")
)

// AttachmentService defines the use cases for uploaded attachments.
type AttachmentService interface {
	// Upload stores the PDF in object storage, extracts its text, and
	// persists the metadata row. Storage is rolled back if the DB save fails.
	// A PDF whose text cannot be extracted is still stored with empty text.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Attachment, error)

	// GetContent returns the extracted text for a stored attachment. When the
	// upload-time extraction yielded nothing, it retries against the stored blob.
	GetContent(ctx context.Context, id string) (string, error)

	// DownloadURL returns a time-limited pre-signed URL for the original blob.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Delete removes an attachment from both storage and repository.
	Delete(ctx context.Context, id string) error
}

// downloadURLExpiry bounds how long a pre-signed attachment URL stays valid.
const downloadURLExpiry = 15 * time.Minute

// attachmentService is a concrete implementation of AttachmentService.
type attachmentService struct {
	store   storage.Storage
	repo    repository.AttachmentRepository
	maxSize int64
}

// NewAttachmentService constructs a new AttachmentService.
func NewAttachmentService(store storage.Storage, repo repository.AttachmentRepository, maxSize int64) AttachmentService {
	return &attachmentService{store: store, repo: repo, maxSize: maxSize}
}

func (s *attachmentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Attachment, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if originalFilename == "" {
		return nil, ErrFilenameRequired
	}
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext != ".pdf" {
		return nil, ErrFileTypeInvalid
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, s.maxSize)
	}

	// The blob is needed twice (storage upload and text extraction), so
	// buffer it once. Read one byte past the cap so a lying declared size
	// is still caught.
	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxSize > 0 && int64(len(content)) > s.maxSize {
		return nil, fmt.Errorf("%w: over %d bytes", ErrFileTooLarge, s.maxSize)
	}

	if contentType == "" {
		contentType = "application/pdf"
	}

	id := uuid.New().String()
	key := filepath.ToSlash(filepath.Join("attachments", id+ext))

	// Upload to object storage
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	// A scanned or malformed PDF yields no text; the upload still succeeds
	// and the attachment is stored with empty extracted text.
	text, err := extract.PDFBytes(content)
	if err != nil {
		text = ""
	}

	att := &model.Attachment{
		ID:            id,
		Filename:      originalFilename,
		StoragePath:   objInfo.Key,
		Size:          objInfo.Size,
		ContentType:   contentType,
		ExtractedText: text,
		CreatedAt:     time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, att)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// GetContent returns the extracted text stored for an attachment.
func (s *attachmentService) GetContent(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if att.ExtractedText != "" {
		return att.ExtractedText, nil
	}
	return s.reextract(ctx, att.StoragePath), nil
}

// reextract retries text extraction against the stored blob. Best effort:
// the row legitimately carries empty text for scanned PDFs, so any failure
// here yields empty text rather than an error.
func (s *attachmentService) reextract(ctx context.Context, key string) string {
	rc, _, err := s.store.Get(ctx, key)
	if err != nil {
		return ""
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return ""
	}
	text, err := extract.PDFBytes(content)
	if err != nil {
		return ""
	}
	return text
}

// DownloadURL returns a pre-signed URL for the original uploaded file.
func (s *attachmentService) DownloadURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	url, err := s.store.PresignGet(ctx, att.StoragePath, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return url, nil
}

// Delete removes an attachment from storage, then deletes its record.
func (s *attachmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	// Find the attachment to get its storage path
	att, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Delete from storage first; if this fails, keep the DB row so the
	// retention sweep can retry the blob later.
	if err := s.store.Delete(ctx, att.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	// Delete DB row (repository ignores missing row errors as per contract)
	return s.repo.Delete(ctx, id)
}
