package models

// API Request structures

// ChatQueryRequest is the body of POST /api/v1/chat/query.
type ChatQueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId,omitempty"`
}

// Pagination for list queries
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}
