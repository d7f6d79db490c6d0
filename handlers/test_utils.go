package handlers

import (
	"context"

	"ir-query-processor/models"

	"github.com/stretchr/testify/mock"
)

// MockReportStore for testing handlers
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) FetchReports(ctx context.Context, filter *models.ReportFilter) ([]models.Report, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockReportStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportStore) CountReports(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockReportStore) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockChatbotService for testing handlers
type MockChatbotService struct {
	mock.Mock
}

func (m *MockChatbotService) ParseQuery(query string) models.QueryIntent {
	args := m.Called(query)
	return args.Get(0).(models.QueryIntent)
}

func (m *MockChatbotService) GenerateSuggestions(query string, corpus []models.Report) []models.Suggestion {
	args := m.Called(query, corpus)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Suggestion)
}

func (m *MockChatbotService) GenerateFieldSuggestions(query string, fieldType models.FieldType, corpus []models.Report) []models.Suggestion {
	args := m.Called(query, fieldType, corpus)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Suggestion)
}

func (m *MockChatbotService) ProcessQuery(ctx context.Context, query, sessionID string) (*models.ChatQueryResponse, error) {
	args := m.Called(ctx, query, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatQueryResponse), args.Error(1)
}
