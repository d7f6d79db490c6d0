package models

import "time"

// API Response structures

// ChatQueryResponse wraps a ChatbotResponse with the conversational extras
// the UI consumes: the session handle and follow-up suggestion prompts.
type ChatQueryResponse struct {
	Response            string      `json:"response"`
	Sources             []Source    `json:"sources"`
	Intent              QueryIntent `json:"intent"`
	SessionID           string      `json:"sessionId"`
	FollowUpSuggestions []string    `json:"followUpSuggestions,omitempty"`
}

// SuggestionsResponse is the body of GET /api/v1/chat/suggestions.
type SuggestionsResponse struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
}

// ReportSummary is the listing projection of a report.
type ReportSummary struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	SubjectName      string    `json:"subject_name,omitempty"`
	AreaCommittee    string    `json:"area_committee,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// ReportListResponse is the body of GET /api/v1/reports.
type ReportListResponse struct {
	Reports    []ReportSummary `json:"reports"`
	Pagination Pagination      `json:"pagination"`
}

// APIError represents standardized error response
type APIError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
