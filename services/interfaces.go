package services

import (
	"context"

	"ir-query-processor/models"
)

// ReportStore is the single capability this service consumes from the
// document store: fetch a snapshot of reports matching a coarse filter.
// The pipeline narrows the snapshot further in memory and never writes back.
type ReportStore interface {
	FetchReports(ctx context.Context, filter *models.ReportFilter) ([]models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	CountReports(ctx context.Context) (int, error)

	// Health check
	HealthCheck(ctx context.Context) error
}

// ChatbotService exposes the query-understanding pipeline.
//
// ProcessQuery never returns a non-nil error for any query input: store
// failures are absorbed into an apology response with empty sources. The
// error slot exists for decorators and future transport concerns.
type ChatbotService interface {
	ParseQuery(query string) models.QueryIntent
	GenerateSuggestions(query string, corpus []models.Report) []models.Suggestion
	GenerateFieldSuggestions(query string, fieldType models.FieldType, corpus []models.Report) []models.Suggestion
	ProcessQuery(ctx context.Context, query, sessionID string) (*models.ChatQueryResponse, error)
}

// LLMService optionally rewrites the deterministic formatter output into a
// more conversational answer. Implementations must be safe to skip: when
// Enabled returns false or GenerateResponse fails, callers serve the
// heuristic text unchanged.
type LLMService interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}
