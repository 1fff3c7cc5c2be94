package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"proposalapi/internal/llm"
	"proposalapi/internal/model"
	"proposalapi/internal/service"
	serviceMocks "proposalapi/internal/service/mocks"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTemplates(t *testing.T) {
	mockSvc := new(serviceMocks.MockTemplateService)
	app := fiber.New()
	app.Get("/api/v1/templates", ListTemplates(mockSvc))

	t.Run("success", func(t *testing.T) {
		items := []model.TemplateListItem{
			{ID: "digi4wirtschaft", Name: "Digi4Wirtschaft WKNOE"},
		}
		mockSvc.On("List", mock.Anything).Return(items, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Templates []model.TemplateListItem `json:"templates"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		require.Len(t, body.Templates, 1)
		assert.Equal(t, "digi4wirtschaft", body.Templates[0].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("io error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetTemplate(t *testing.T) {
	mockSvc := new(serviceMocks.MockTemplateService)
	app := fiber.New()
	app.Get("/api/v1/templates/:id", GetTemplate(mockSvc))

	t.Run("success", func(t *testing.T) {
		tpl := &model.Template{Sections: map[string]model.TemplateSection{
			"ziele": {Title: "Projektziele", Questions: "Was sind die Ziele?"},
		}}
		mockSvc.On("Get", mock.Anything, "digi4wirtschaft").Return(tpl, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/templates/digi4wirtschaft", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Template
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "Projektziele", result.Sections["ziele"].Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "unknown").Return(nil, service.ErrTemplateNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/templates/unknown", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestListModels(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/models", ListModels())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/models", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Models       []llm.ModelInfo `json:"models"`
		DefaultModel string          `json:"default_model"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Len(t, body.Models, 5)
	assert.Equal(t, "gpt-4o-mini", body.DefaultModel)
}

func TestGenerateSections(t *testing.T) {
	mockSvc := new(serviceMocks.MockProposalService)
	app := fiber.New()
	app.Post("/api/v1/generate-sections", GenerateSections(mockSvc))

	postJSON := func(payload string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-sections", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req, 5000)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		expected := &model.GenerationResponse{
			Sections: map[string]model.SectionResult{
				"ziele": {Title: "Projektziele", GeneratedContent: "Text", Status: model.StatusSuccess},
			},
			Status: model.StatusSuccess,
		}
		mockSvc.On("Generate", mock.Anything, mock.AnythingOfType("*model.GenerationRequest")).
			Return(expected, nil).Once()

		resp := postJSON(`{"model":"gpt-4o-mini","sections":{"ziele":{"title":"Projektziele","user_input":"Input"}}}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.GenerationResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StatusSuccess, result.Status)
		assert.Equal(t, "Text", result.Sections["ziele"].GeneratedContent)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unsupported model", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, mock.Anything).
			Return(nil, llm.ErrUnsupportedModel).Once()

		resp := postJSON(`{"model":"llama-70b","sections":{"s":{"title":"T","user_input":"x"}}}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_MODEL", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no sections", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, mock.Anything).
			Return(nil, service.ErrNoSections).Once()

		resp := postJSON(`{"model":"gpt-4o-mini","sections":{}}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NO_SECTIONS", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp := postJSON(`{not json`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_BODY", res.Error.Code)
	})
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Post("/api/files/upload", UploadFile(mockSvc))

	newUpload := func(filename string) *http.Request {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", filename)
		part.Write([]byte("%PDF-1.4 fake"))
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req
	}

	t.Run("success", func(t *testing.T) {
		expected := &model.Attachment{
			ID:          uuid.New().String(),
			Filename:    "bericht.pdf",
			StoragePath: "attachments/internal-key.pdf",
			Size:        13,
			CreatedAt:   time.Now(),
		}
		mockSvc.On("Upload", mock.Anything, mock.Anything, "bericht.pdf", mock.Anything, mock.Anything).
			Return(expected, nil).Once()

		resp, _ := app.Test(newUpload("bericht.pdf"))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result["file_id"])
		assert.Equal(t, "bericht.pdf", result["filename"])
		// Internal fields stay out of the response.
		assert.NotContains(t, result, "storage_path")
		assert.NotContains(t, result, "created_at")
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/files/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("invalid file type", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything, "report.docx", mock.Anything, mock.Anything).
			Return(nil, service.ErrFileTypeInvalid).Once()

		resp, _ := app.Test(newUpload("report.docx"))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FILE_TYPE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("file too large", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything, "big.pdf", mock.Anything, mock.Anything).
			Return(nil, service.ErrFileTooLarge).Once()

		resp, _ := app.Test(newUpload("big.pdf"))

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything, "bericht.pdf", mock.Anything, mock.Anything).
			Return(nil, errors.New("minio down")).Once()

		resp, _ := app.Test(newUpload("bericht.pdf"))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetFileContent(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Get("/api/files/:id", GetFileContent(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("GetContent", mock.Anything, id).Return("Seite 1 Inhalt", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, id, body["file_id"])
		assert.Equal(t, "Seite 1 Inhalt", body["content"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("GetContent", mock.Anything, id).Return("", service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})
}

func TestDownloadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Get("/api/files/:id/download", DownloadFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("DownloadURL", mock.Anything, id).
			Return("https://minio.local/bucket/attachments/"+id+".pdf?X-Amz-Expires=900", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, id, body["file_id"])
		assert.Contains(t, body["download_url"], "X-Amz-Expires")
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("DownloadURL", mock.Anything, id).Return("", service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/files/"+id+"/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files/not-a-uuid/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockAttachmentService)
	app := fiber.New()
	app.Delete("/api/files/:id", DeleteFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/files/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestExtractURL(t *testing.T) {
	mockEx := new(serviceMocks.MockURLExtractor)
	app := fiber.New()
	app.Post("/api/urls/extract", ExtractURL(mockEx))

	postJSON := func(payload string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/urls/extract", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockEx.On("Extract", mock.Anything, "https://example.com").Return(model.URLContent{
			URL:     "https://example.com",
			Title:   "Beispielseite",
			Content: "Inhalt",
			Status:  model.StatusSuccess,
		}).Once()

		resp := postJSON(`{"url":"https://example.com"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.URLContent
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "Beispielseite", result.Title)
		assert.Equal(t, model.StatusSuccess, result.Status)
		mockEx.AssertExpectations(t)
	})

	t.Run("unreachable url is still 200", func(t *testing.T) {
		mockEx.On("Extract", mock.Anything, "https://unreachable.invalid").Return(model.URLContent{
			URL:    "https://unreachable.invalid",
			Status: model.StatusError,
		}).Once()

		resp := postJSON(`{"url":"https://unreachable.invalid"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.URLContent
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.StatusError, result.Status)
		mockEx.AssertExpectations(t)
	})

	t.Run("missing url", func(t *testing.T) {
		resp := postJSON(`{}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "URL_REQUIRED", res.Error.Code)
	})
}

func TestExtractURLBatch(t *testing.T) {
	mockEx := new(serviceMocks.MockURLExtractor)
	app := fiber.New()
	app.Post("/api/urls/extract-batch", ExtractURLBatch(mockEx))

	postJSON := func(payload string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/urls/extract-batch", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("mixed results keep their order", func(t *testing.T) {
		mockEx.On("Extract", mock.Anything, "https://a.example").Return(model.URLContent{
			URL: "https://a.example", Content: "A", Status: model.StatusSuccess,
		}).Once()
		mockEx.On("Extract", mock.Anything, "https://b.invalid").Return(model.URLContent{
			URL: "https://b.invalid", Status: model.StatusError,
		}).Once()

		resp := postJSON(`{"urls":["https://a.example","https://b.invalid"]}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Results []model.URLContent `json:"results"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		require.Len(t, body.Results, 2)
		assert.Equal(t, model.StatusSuccess, body.Results[0].Status)
		assert.Equal(t, model.StatusError, body.Results[1].Status)
		mockEx.AssertExpectations(t)
	})

	t.Run("empty list", func(t *testing.T) {
		resp := postJSON(`{"urls":[]}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "URLS_REQUIRED", res.Error.Code)
	})
}

func TestMaintenanceEndpoints(t *testing.T) {
	mockSvc := new(serviceMocks.MockMaintenanceService)
	app := fiber.New()
	app.Post("/api/v1/maintenance/cleanup", MaintenanceCleanup(mockSvc))
	app.Get("/api/v1/maintenance/statistics", MaintenanceStatistics(mockSvc))
	app.Get("/api/v1/maintenance/config", MaintenanceConfig(mockSvc))

	t.Run("cleanup", func(t *testing.T) {
		mockSvc.On("Cleanup", mock.Anything).Return(&service.CleanupStats{
			DeletedFiles:   2,
			TotalSizeFreed: 350,
			RetentionHours: 24,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/cleanup", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var stats service.CleanupStats
		json.NewDecoder(resp.Body).Decode(&stats)
		assert.Equal(t, 2, stats.DeletedFiles)
		mockSvc.AssertExpectations(t)
	})

	t.Run("cleanup failure", func(t *testing.T) {
		mockSvc.On("Cleanup", mock.Anything).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/maintenance/cleanup", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("statistics", func(t *testing.T) {
		mockSvc.On("Statistics", mock.Anything).Return(&service.StorageStats{
			TotalFiles: 3,
			TotalSize:  3 * 1024 * 1024,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/maintenance/statistics", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var stats service.StorageStats
		json.NewDecoder(resp.Body).Decode(&stats)
		assert.Equal(t, 3, stats.TotalFiles)
		mockSvc.AssertExpectations(t)
	})

	t.Run("config", func(t *testing.T) {
		mockSvc.On("Config").Return(service.MaintenanceConfig{
			RetentionHours:         24,
			CleanupIntervalMinutes: 60,
		}).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/maintenance/config", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var cfg service.MaintenanceConfig
		json.NewDecoder(resp.Body).Decode(&cfg)
		assert.Equal(t, 24, cfg.RetentionHours)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, nil, Services{
		Templates:   new(serviceMocks.MockTemplateService),
		Proposals:   new(serviceMocks.MockProposalService),
		Attachments: new(serviceMocks.MockAttachmentService),
		Extractor:   new(serviceMocks.MockURLExtractor),
		Maintenance: new(serviceMocks.MockMaintenanceService),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
