package handlers

import (
	"ir-query-processor/errors"
	"ir-query-processor/models"
	"ir-query-processor/services"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportHandler handles report listing and retrieval requests
type ReportHandler struct {
	store services.ReportStore
}

// NewReportHandler creates a new report handler
func NewReportHandler(store services.ReportStore) *ReportHandler {
	return &ReportHandler{
		store: store,
	}
}

// ListReports handles GET /api/v1/reports
// Optional query parameters: q (filename or subject search term),
// area_committee, page, page_size. Pagination slices the filtered
// snapshot in memory; the store already caps the snapshot size.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	page := parsePositiveInt(params.Get("page"), 1)
	pageSize := parsePositiveInt(params.Get("page_size"), defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := &models.ReportFilter{
		SearchTerm:    params.Get("q"),
		AreaCommittee: params.Get("area_committee"),
	}

	reports, err := h.store.FetchReports(r.Context(), filter)
	if err != nil {
		handleError(w, err, "failed to list reports")
		return
	}

	total := len(reports)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	summaries := make([]models.ReportSummary, 0, end-start)
	for _, report := range reports[start:end] {
		summaries = append(summaries, toReportSummary(report))
	}

	writeJSONResponse(w, http.StatusOK, models.ReportListResponse{
		Reports: summaries,
		Pagination: models.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// GetReport handles GET /api/v1/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reportID := vars["id"]

	report, err := h.store.GetReport(r.Context(), reportID)
	if err != nil {
		if models.IsNotFound(err) {
			writeAppErrorResponse(w, errors.NewNotFoundError(
				errors.ErrCodeReportNotFound,
				"Report not found: "+reportID,
				err,
			))
			return
		}
		handleError(w, err, "failed to fetch report")
		return
	}

	writeJSONResponse(w, http.StatusOK, report)
}

// toReportSummary flattens a report into its listing row.
func toReportSummary(report models.Report) models.ReportSummary {
	summary := models.ReportSummary{
		ID:               report.ID,
		OriginalFilename: report.OriginalFilename,
		AreaCommittee:    report.AreaCommittee,
		UploadedAt:       report.UploadedAt,
	}
	if report.Metadata != nil {
		summary.SubjectName = report.Metadata.Name
	}
	return summary
}

// parsePositiveInt parses a positive integer query parameter, falling
// back to def when the value is missing or not a positive number.
func parsePositiveInt(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return def
	}
	return n
}
