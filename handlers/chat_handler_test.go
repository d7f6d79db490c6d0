package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ir-query-processor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestChatHandler_ProcessQuery(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    models.ChatQueryRequest
		mockResponse   *models.ChatQueryResponse
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:        "successful query",
			requestBody: models.ChatQueryRequest{Query: "Tell me about Hidma", SessionID: "session-1"},
			mockResponse: &models.ChatQueryResponse{
				Response:  "I found 2 reports related to your query.",
				Sources:   []models.Source{{ReportID: "r1", ReportName: "IR_Basaguda.pdf", Confidence: 0.9}},
				SessionID: "session-1",
			},
			mockError:      nil,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty query",
			requestBody:    models.ChatQueryRequest{Query: "   "},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "EMPTY_QUERY",
		},
		{
			name:           "pipeline failure",
			requestBody:    models.ChatQueryRequest{Query: "Tell me about Hidma"},
			mockResponse:   nil,
			mockError:      fmt.Errorf("decorator failed"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockChatbot := new(MockChatbotService)
			mockStore := new(MockReportStore)
			handler := NewChatHandler(mockChatbot, mockStore)

			// Setup mock expectations
			if strings.TrimSpace(tt.requestBody.Query) != "" {
				mockChatbot.On("ProcessQuery", mock.Anything, tt.requestBody.Query, tt.requestBody.SessionID).
					Return(tt.mockResponse, tt.mockError)
			}

			// Create request
			body, _ := json.Marshal(tt.requestBody)
			req := httptest.NewRequest("POST", "/api/v1/chat/query", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			// Execute
			handler.ProcessQuery(w, req)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response models.ChatQueryResponse
				err := json.Unmarshal(w.Body.Bytes(), &response)
				assert.NoError(t, err)
				assert.Equal(t, tt.mockResponse.Response, response.Response)
				assert.Equal(t, tt.mockResponse.SessionID, response.SessionID)
				assert.Len(t, response.Sources, len(tt.mockResponse.Sources))
			}

			if tt.expectedCode != "" {
				var apiErr models.APIError
				err := json.Unmarshal(w.Body.Bytes(), &apiErr)
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedCode, apiErr.Code)
			}

			mockChatbot.AssertExpectations(t)
		})
	}
}

func TestChatHandler_ProcessQueryInvalidJSON(t *testing.T) {
	// Setup
	mockChatbot := new(MockChatbotService)
	mockStore := new(MockReportStore)
	handler := NewChatHandler(mockChatbot, mockStore)

	// Create request with a malformed body
	req := httptest.NewRequest("POST", "/api/v1/chat/query", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	// Execute
	handler.ProcessQuery(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr models.APIError
	err := json.Unmarshal(w.Body.Bytes(), &apiErr)
	assert.NoError(t, err)
	assert.Equal(t, "INVALID_FORMAT", apiErr.Code)

	mockChatbot.AssertNotCalled(t, "ProcessQuery", mock.Anything, mock.Anything, mock.Anything)
}

func TestChatHandler_GetSuggestions(t *testing.T) {
	corpus := []models.Report{{ID: "r1"}, {ID: "r2"}}
	suggestions := []models.Suggestion{
		{FieldType: models.FieldName, Value: "Hidma", Label: "Hidma (person)", Count: 2},
	}

	tests := []struct {
		name          string
		url           string
		fieldType     string
		storeError    error
		expectedCount int
	}{
		{
			name:          "global suggestions",
			url:           "/api/v1/chat/suggestions?q=hid",
			expectedCount: 1,
		},
		{
			name:          "field scoped suggestions",
			url:           "/api/v1/chat/suggestions?q=hid&field=village",
			fieldType:     "village",
			expectedCount: 1,
		},
		{
			name:          "store failure degrades to empty list",
			url:           "/api/v1/chat/suggestions?q=hid",
			storeError:    fmt.Errorf("store offline"),
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockChatbot := new(MockChatbotService)
			mockStore := new(MockReportStore)
			handler := NewChatHandler(mockChatbot, mockStore)

			// Setup mock expectations
			if tt.storeError != nil {
				mockStore.On("FetchReports", mock.Anything, mock.Anything).Return(nil, tt.storeError)
				mockChatbot.On("GenerateSuggestions", "hid", mock.Anything).Return(nil)
			} else {
				mockStore.On("FetchReports", mock.Anything, mock.Anything).Return(corpus, nil)
				if tt.fieldType != "" {
					mockChatbot.On("GenerateFieldSuggestions", "hid", models.FieldType(tt.fieldType), corpus).
						Return(suggestions)
				} else {
					mockChatbot.On("GenerateSuggestions", "hid", corpus).Return(suggestions)
				}
			}

			// Create request
			req := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()

			// Execute
			handler.GetSuggestions(w, req)

			// Assert
			assert.Equal(t, http.StatusOK, w.Code)

			var response models.SuggestionsResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)
			assert.Equal(t, "hid", response.Query)
			assert.NotNil(t, response.Suggestions)
			assert.Len(t, response.Suggestions, tt.expectedCount)

			mockChatbot.AssertExpectations(t)
			mockStore.AssertExpectations(t)
		})
	}
}

func TestChatHandler_ParseQuery(t *testing.T) {
	// Setup
	mockChatbot := new(MockChatbotService)
	mockStore := new(MockReportStore)
	handler := NewChatHandler(mockChatbot, mockStore)

	intent := models.QueryIntent{
		Category:      models.IntentPerson,
		Entities:      map[models.IntentCategory][]string{models.IntentPerson: {"Hidma"}},
		Confidence:    0.8,
		OriginalQuery: "Tell me about Hidma",
	}

	// Setup mock expectations
	mockChatbot.On("ParseQuery", "Tell me about Hidma").Return(intent)

	// Create request
	req := httptest.NewRequest("GET", "/api/v1/chat/parse?q=Tell+me+about+Hidma", nil)
	w := httptest.NewRecorder()

	// Execute
	handler.ParseQuery(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response models.QueryIntent
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, models.IntentPerson, response.Category)
	assert.Equal(t, []string{"Hidma"}, response.Entities[models.IntentPerson])

	mockChatbot.AssertExpectations(t)
}

func TestChatHandler_ParseQueryMissingParam(t *testing.T) {
	// Setup
	mockChatbot := new(MockChatbotService)
	mockStore := new(MockReportStore)
	handler := NewChatHandler(mockChatbot, mockStore)

	// Create request without the q parameter
	req := httptest.NewRequest("GET", "/api/v1/chat/parse", nil)
	w := httptest.NewRecorder()

	// Execute
	handler.ParseQuery(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr models.APIError
	err := json.Unmarshal(w.Body.Bytes(), &apiErr)
	assert.NoError(t, err)
	assert.Equal(t, "MISSING_FIELD", apiErr.Code)

	mockChatbot.AssertNotCalled(t, "ParseQuery", mock.Anything)
}
