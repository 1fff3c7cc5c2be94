package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"proposalapi/internal/config"
	"proposalapi/internal/repository"
	"proposalapi/internal/storage"
)

// CleanupStats reports the outcome of one retention sweep.
type CleanupStats struct {
	DeletedFiles   int       `json:"deleted_files"`
	Errors         int       `json:"errors"`
	TotalSizeFreed int64     `json:"total_size_freed"`
	RetentionHours int       `json:"retention_hours"`
	CleanupTime    time.Time `json:"cleanup_time"`
}

// StorageStats reports the current attachment inventory.
type StorageStats struct {
	TotalFiles         int     `json:"total_files"`
	TotalSize          int64   `json:"total_size"`
	TotalSizeMB        float64 `json:"total_size_mb"`
	OldestFileAgeHours float64 `json:"oldest_file_age_hours"`
	NewestFileAgeHours float64 `json:"newest_file_age_hours"`
	RetentionHours     int     `json:"retention_hours"`
}

// MaintenanceConfig is the read-only view of the retention settings.
type MaintenanceConfig struct {
	RetentionHours         int   `json:"retention_hours"`
	CleanupIntervalMinutes int   `json:"cleanup_interval_minutes"`
	MaxFileSizeBytes       int64 `json:"max_file_size_bytes"`
}

// MaintenanceService removes attachments older than the retention window
// and reports storage statistics.
type MaintenanceService interface {
	// Cleanup deletes every attachment past the retention window, first the
	// blob and then the metadata row, and reports what it removed.
	Cleanup(ctx context.Context) (*CleanupStats, error)

	// Statistics reports the current attachment inventory.
	Statistics(ctx context.Context) (*StorageStats, error)

	// Config returns the active retention settings.
	Config() MaintenanceConfig

	// Run sweeps on the configured interval until the context is cancelled.
	Run(ctx context.Context)
}

type maintenanceService struct {
	repo  repository.AttachmentRepository
	store storage.Storage
	cfg   config.UploadConfig
	now   func() time.Time
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(repo repository.AttachmentRepository, store storage.Storage, cfg config.UploadConfig) MaintenanceService {
	return &maintenanceService{repo: repo, store: store, cfg: cfg, now: time.Now}
}

func (s *maintenanceService) Cleanup(ctx context.Context) (*CleanupStats, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.cfg.Retention())

	expired, err := s.repo.ListExpired(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired attachments: %w", err)
	}

	stats := &CleanupStats{
		RetentionHours: s.cfg.RetentionHours,
		CleanupTime:    now,
	}
	for _, att := range expired {
		// Keep the row when the blob delete fails so the next sweep retries.
		if err := s.store.Delete(ctx, att.StoragePath); err != nil {
			stats.Errors++
			continue
		}
		if err := s.repo.Delete(ctx, att.ID); err != nil {
			stats.Errors++
			continue
		}
		stats.DeletedFiles++
		stats.TotalSizeFreed += att.Size
	}
	return stats, nil
}

func (s *maintenanceService) Statistics(ctx context.Context) (*StorageStats, error) {
	repoStats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("attachment stats: %w", err)
	}

	stats := &StorageStats{
		TotalFiles:     repoStats.TotalFiles,
		TotalSize:      repoStats.TotalSize,
		TotalSizeMB:    float64(repoStats.TotalSize) / (1024 * 1024),
		RetentionHours: s.cfg.RetentionHours,
	}
	now := s.now().UTC()
	if !repoStats.OldestAt.IsZero() {
		stats.OldestFileAgeHours = now.Sub(repoStats.OldestAt).Hours()
	}
	if !repoStats.NewestAt.IsZero() {
		stats.NewestFileAgeHours = now.Sub(repoStats.NewestAt).Hours()
	}
	return stats, nil
}

func (s *maintenanceService) Config() MaintenanceConfig {
	return MaintenanceConfig{
		RetentionHours:         s.cfg.RetentionHours,
		CleanupIntervalMinutes: s.cfg.CleanupIntervalMinutes,
		MaxFileSizeBytes:       s.cfg.MaxSizeBytes,
	}
}

func (s *maintenanceService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := s.Cleanup(ctx)
			if err != nil {
				logJSON(map[string]any{"level": "error", "msg": "cleanup sweep failed", "error": err.Error()})
				continue
			}
			logJSON(map[string]any{
				"level":            "info",
				"msg":              "cleanup sweep finished",
				"deleted_files":    stats.DeletedFiles,
				"errors":           stats.Errors,
				"total_size_freed": stats.TotalSizeFreed,
			})
		}
	}
}

func logJSON(fields map[string]any) {
	fields["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(fields)
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stdout, string(b))
}
