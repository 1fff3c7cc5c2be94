package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"proposalapi/internal/llm"
	"proposalapi/internal/model"
	"proposalapi/internal/service"
)

// maxConcurrentExtractions bounds parallel URL fetches in a batch request.
const maxConcurrentExtractions = 4

// Services groups the dependencies the routes need.
type Services struct {
	Templates   service.TemplateService
	Proposals   service.ProposalService
	Attachments service.AttachmentService
	Extractor   service.URLExtractor
	Maintenance service.MaintenanceService
}

// RegisterRoutes attaches the HTTP routes to the provided Fiber app.
// Handlers stay thin: decode, call the service, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	v1 := app.Group("/api/v1")
	v1.Get("/templates", ListTemplates(svcs.Templates))
	v1.Get("/templates/:id", GetTemplate(svcs.Templates))
	v1.Get("/models", ListModels())
	v1.Post("/generate-sections", GenerateSections(svcs.Proposals))

	maint := v1.Group("/maintenance")
	maint.Post("/cleanup", MaintenanceCleanup(svcs.Maintenance))
	maint.Get("/statistics", MaintenanceStatistics(svcs.Maintenance))
	maint.Get("/config", MaintenanceConfig(svcs.Maintenance))

	files := app.Group("/api/files")
	files.Post("/upload", UploadFile(svcs.Attachments))
	files.Get("/:id/download", DownloadFile(svcs.Attachments))
	files.Get("/:id", GetFileContent(svcs.Attachments))
	files.Delete("/:id", DeleteFile(svcs.Attachments))

	urls := app.Group("/api/urls")
	urls.Post("/extract", ExtractURL(svcs.Extractor))
	urls.Post("/extract-batch", ExtractURLBatch(svcs.Extractor))
}

// HealthCheck reports whether the database dependency is reachable.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListTemplates lists the available proposal templates.
func ListTemplates(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"templates": items})
	}
}

// GetTemplate loads one template with all its sections.
func GetTemplate(svc service.TemplateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tpl, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrTemplateNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "template not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(tpl)
	}
}

// ListModels serves the static catalog of supported LLM models.
func ListModels() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"models":        llm.Catalog(),
			"default_model": llm.DefaultModel,
		})
	}
}

// GenerateSections runs LLM generation for every requested section.
func GenerateSections(svc service.ProposalService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.GenerationRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		resp, err := svc.Generate(c.UserContext(), &req)
		if err != nil {
			if errors.Is(err, llm.ErrUnsupportedModel) {
				return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_MODEL", "unsupported model id")
			}
			if errors.Is(err, service.ErrNoSections) {
				return writeError(c, fiber.StatusBadRequest, "NO_SECTIONS", "at least one section is required")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(resp)
	}
}

// UploadFile accepts a PDF attachment (multipart/form-data, field name: file).
func UploadFile(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		att, err := svc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrFileTypeInvalid):
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", "only PDF files are supported")
			case errors.Is(err, service.ErrFileTooLarge):
				return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the size limit")
			case errors.Is(err, service.ErrFilenameRequired):
				return writeError(c, fiber.StatusBadRequest, "FILENAME_REQUIRED", "filename is required")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.Status(fiber.StatusCreated).JSON(att)
	}
}

// GetFileContent returns the extracted text of an attachment. A malformed id
// cannot match any stored file, so it reports not-found like an unknown one.
func GetFileContent(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}
		content, err := svc.GetContent(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"file_id": id, "content": content})
	}
}

// DownloadFile returns a time-limited pre-signed URL for the original PDF.
func DownloadFile(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}
		url, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"file_id": id, "download_url": url})
	}
}

// DeleteFile removes an attachment (blob and metadata).
func DeleteFile(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ExtractURL extracts readable content from one URL. Fetch or parse problems
// are reported via the per-item status, not an HTTP error.
func ExtractURL(ex service.URLExtractor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			URL string `json:"url"`
		}
		if err := c.BodyParser(&req); err != nil || req.URL == "" {
			return writeError(c, fiber.StatusBadRequest, "URL_REQUIRED", "url is required")
		}
		return c.JSON(ex.Extract(c.UserContext(), req.URL))
	}
}

// ExtractURLBatch extracts several URLs; one failure never aborts the batch.
func ExtractURLBatch(ex service.URLExtractor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			URLs []string `json:"urls"`
		}
		if err := c.BodyParser(&req); err != nil || len(req.URLs) == 0 {
			return writeError(c, fiber.StatusBadRequest, "URLS_REQUIRED", "urls is required")
		}

		results := make([]model.URLContent, len(req.URLs))
		g, gctx := errgroup.WithContext(c.UserContext())
		g.SetLimit(maxConcurrentExtractions)
		for i, rawURL := range req.URLs {
			i, rawURL := i, rawURL
			g.Go(func() error {
				results[i] = ex.Extract(gctx, rawURL)
				return nil
			})
		}
		_ = g.Wait()

		return c.JSON(fiber.Map{"results": results})
	}
}

// MaintenanceCleanup triggers a retention sweep.
func MaintenanceCleanup(svc service.MaintenanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Cleanup(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(stats)
	}
}

// MaintenanceStatistics reports the attachment inventory totals.
func MaintenanceStatistics(svc service.MaintenanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Statistics(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(stats)
	}
}

// MaintenanceConfig reports the active retention settings.
func MaintenanceConfig(svc service.MaintenanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Config())
	}
}
