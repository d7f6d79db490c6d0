package services

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"ir-query-processor/models"
	"sort"
	"strings"
	"time"
)

// InMemoryReportStore serves reports from a fixed in-process snapshot. It
// backs the in-memory storage backend and the test suites. The snapshot is
// immutable after construction, so reads need no locking.
type InMemoryReportStore struct {
	reports []models.Report
}

// NewInMemoryReportStore copies the given reports into a new store.
func NewInMemoryReportStore(reports []models.Report) *InMemoryReportStore {
	snapshot := make([]models.Report, len(reports))
	copy(snapshot, reports)
	return &InMemoryReportStore{reports: snapshot}
}

// FetchReports applies the coarse filter in memory, most recently uploaded
// first. Filter semantics match the database-backed stores: exact match on
// area committee and police station, case-insensitive substring on filename.
func (s *InMemoryReportStore) FetchReports(ctx context.Context, filter *models.ReportFilter) ([]models.Report, error) {
	var out []models.Report

	for _, report := range s.reports {
		if filter != nil {
			if filter.AreaCommittee != "" && report.AreaCommittee != filter.AreaCommittee {
				continue
			}
			if filter.PoliceStation != "" && report.PoliceStation != filter.PoliceStation {
				continue
			}
			if filter.SearchTerm != "" && !strings.Contains(strings.ToLower(report.OriginalFilename), strings.ToLower(filter.SearchTerm)) {
				continue
			}
		}
		out = append(out, report)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})

	if filter != nil && filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

// GetReport retrieves a single report by its ID.
func (s *InMemoryReportStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	for i := range s.reports {
		if s.reports[i].ID == id {
			report := s.reports[i]
			return &report, nil
		}
	}
	return nil, fmt.Errorf("report %s: %w", id, models.ErrNotFound)
}

// CountReports returns the number of stored reports.
func (s *InMemoryReportStore) CountReports(ctx context.Context) (int, error) {
	return len(s.reports), nil
}

// HealthCheck always succeeds for the in-memory store.
func (s *InMemoryReportStore) HealthCheck(ctx context.Context) error {
	return nil
}

// CachedReportStore wraps a ReportStore with read-through caching. Report
// corpora change only when new documents are ingested, so short TTLs keep
// repeated chat queries from re-fetching the same snapshot.
type CachedReportStore struct {
	base  ReportStore
	cache CacheService
	ttl   time.Duration
}

// NewCachedReportStore creates a caching wrapper around a report store.
func NewCachedReportStore(base ReportStore, cache CacheService, ttl time.Duration) ReportStore {
	return &CachedReportStore{
		base:  base,
		cache: cache,
		ttl:   ttl,
	}
}

// FetchReports serves the filtered snapshot from cache when possible.
func (s *CachedReportStore) FetchReports(ctx context.Context, filter *models.ReportFilter) ([]models.Report, error) {
	key := reportCacheKey("fetch_reports", filterParams(filter))

	var cached []models.Report
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	reports, err := s.base.FetchReports(ctx, filter)
	if err != nil {
		return nil, err
	}

	// A failed cache write never fails the read.
	_ = s.cache.Set(ctx, key, reports, s.ttl)

	return reports, nil
}

// GetReport serves a single report from cache when possible.
func (s *CachedReportStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	key := reportCacheKey("get_report", map[string]interface{}{"id": id})

	var cached models.Report
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	report, err := s.base.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.Set(ctx, key, report, s.ttl)

	return report, nil
}

// CountReports serves the report count from cache when possible.
func (s *CachedReportStore) CountReports(ctx context.Context) (int, error) {
	key := reportCacheKey("count_reports", nil)

	var cached int
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	count, err := s.base.CountReports(ctx)
	if err != nil {
		return 0, err
	}

	_ = s.cache.Set(ctx, key, count, s.ttl)

	return count, nil
}

// HealthCheck always consults the underlying store.
func (s *CachedReportStore) HealthCheck(ctx context.Context) error {
	return s.base.HealthCheck(ctx)
}

// reportCacheKey builds a deterministic, collision-resistant key from the
// operation name and its parameters.
func reportCacheKey(operation string, params map[string]interface{}) string {
	payload := struct {
		Operation string                 `json:"operation"`
		Params    map[string]interface{} `json:"params,omitempty"`
		Version   string                 `json:"version"`
	}{
		Operation: operation,
		Params:    params,
		Version:   "v1",
	}

	jsonBytes, err := json.Marshal(payload)
	if err != nil {
		return "rcache:" + operation
	}

	hash := sha256.Sum256(jsonBytes)
	return fmt.Sprintf("rcache:%x", hash[:16])
}

// filterParams flattens a report filter into cache key parameters.
func filterParams(filter *models.ReportFilter) map[string]interface{} {
	if filter == nil {
		return nil
	}
	return map[string]interface{}{
		"area_committee": filter.AreaCommittee,
		"police_station": filter.PoliceStation,
		"search_term":    filter.SearchTerm,
		"limit":          filter.Limit,
	}
}
