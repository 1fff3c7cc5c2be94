package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"proposalapi/internal/model"
	"proposalapi/internal/service"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64) (*model.Attachment, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) GetContent(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentService) DownloadURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProposalService struct {
	mock.Mock
}

func (m *MockProposalService) Generate(ctx context.Context, req *model.GenerationRequest) (*model.GenerationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GenerationResponse), args.Error(1)
}

type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) List(ctx context.Context) ([]model.TemplateListItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TemplateListItem), args.Error(1)
}

func (m *MockTemplateService) Get(ctx context.Context, id string) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

type MockMaintenanceService struct {
	mock.Mock
}

func (m *MockMaintenanceService) Cleanup(ctx context.Context) (*service.CleanupStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CleanupStats), args.Error(1)
}

func (m *MockMaintenanceService) Statistics(ctx context.Context) (*service.StorageStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StorageStats), args.Error(1)
}

func (m *MockMaintenanceService) Config() service.MaintenanceConfig {
	args := m.Called()
	return args.Get(0).(service.MaintenanceConfig)
}

func (m *MockMaintenanceService) Run(ctx context.Context) {
	m.Called(ctx)
}

type MockURLExtractor struct {
	mock.Mock
}

func (m *MockURLExtractor) Extract(ctx context.Context, rawURL string) model.URLContent {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(model.URLContent)
}
