package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"ir-query-processor/errors"
	"ir-query-processor/models"
	"ir-query-processor/services"
)

// ChatHandler serves the investigator-facing query endpoints: full query
// processing, typeahead suggestions, and intent inspection.
type ChatHandler struct {
	chatbot services.ChatbotService
	store   services.ReportStore
}

// NewChatHandler creates a chat handler
func NewChatHandler(chatbot services.ChatbotService, store services.ReportStore) *ChatHandler {
	return &ChatHandler{
		chatbot: chatbot,
		store:   store,
	}
}

// ProcessQuery handles POST /api/v1/chat/query
// Runs the full pipeline: intent parsing, retrieval, scoring, formatting
// and optional LLM polish. Always answers 200 once the request validates;
// pipeline degradation is reported inside the response body.
func (h *ChatHandler) ProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req models.ChatQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppErrorResponse(w, errors.NewValidationError(
			errors.ErrCodeInvalidFormat,
			"Request body must be valid JSON",
			err,
		))
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeAppErrorResponse(w, errors.NewValidationError(
			errors.ErrCodeEmptyQuery,
			"Query cannot be empty",
			nil,
		))
		return
	}

	response, err := h.chatbot.ProcessQuery(r.Context(), req.Query, req.SessionID)
	if err != nil {
		// The pipeline converts store failures into an apology response,
		// so an error here means a decorator or a future backend failed.
		handleError(w, err, "process chat query")
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// GetSuggestions handles GET /api/v1/chat/suggestions?q=<prefix>&field=<type>
// Suggestions degrade to an empty list when the report corpus is
// unavailable; typeahead must never surface a hard failure.
func (h *ChatHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	fieldType := r.URL.Query().Get("field")

	corpus, err := h.store.FetchReports(r.Context(), nil)
	if err != nil {
		writeWarningLog("fetch report corpus for suggestions", err)
		corpus = nil
	}

	var suggestions []models.Suggestion
	if fieldType != "" {
		suggestions = h.chatbot.GenerateFieldSuggestions(query, models.FieldType(fieldType), corpus)
	} else {
		suggestions = h.chatbot.GenerateSuggestions(query, corpus)
	}
	if suggestions == nil {
		suggestions = []models.Suggestion{}
	}

	writeJSONResponse(w, http.StatusOK, models.SuggestionsResponse{
		Query:       query,
		Suggestions: suggestions,
	})
}

// ParseQuery handles GET /api/v1/chat/parse?q=<query>
// Exposes the intent parser directly so clients can preview how a query
// will be interpreted before submitting it.
func (h *ChatHandler) ParseQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if err := validateRequired(map[string]interface{}{"q": query}); err != nil {
		writeAppErrorResponse(w, err)
		return
	}

	intent := h.chatbot.ParseQuery(query)
	writeJSONResponse(w, http.StatusOK, intent)
}
