package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"ir-query-processor/config"
	"ir-query-processor/models"
)

const pingTimeout = 5 * time.Second

// reportColumns is the select list shared by every report query. The rank
// column is quoted because it collides with the SQL window function.
const reportColumns = `id, original_filename, police_station, division, area_committee, "rank", metadata, questions_analysis, uploaded_at`

// PostgresReportStore serves incident reports from a self-hosted PostgreSQL
// table. It satisfies the same read-only contract as the Supabase client, so
// deployments switch backends through configuration alone.
type PostgresReportStore struct {
	db         *sql.DB
	table      string
	fetchLimit int
}

// NewPostgresReportStore opens a connection pool and verifies it with a ping.
func NewPostgresReportStore(cfg *config.DatabaseConfig, district *config.DistrictConfig) (*PostgresReportStore, error) {
	db, err := sql.Open("postgres", connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresReportStore{
		db:         db,
		table:      pq.QuoteIdentifier(district.ReportsTable),
		fetchLimit: district.FetchLimit,
	}, nil
}

// FetchReports returns the newest reports matching the coarse filter, most
// recently uploaded first.
func (s *PostgresReportStore) FetchReports(ctx context.Context, filter *models.ReportFilter) ([]models.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", reportColumns, s.table)

	var conditions []string
	var args []interface{}

	if filter != nil {
		if filter.AreaCommittee != "" {
			args = append(args, filter.AreaCommittee)
			conditions = append(conditions, fmt.Sprintf("area_committee = $%d", len(args)))
		}
		if filter.PoliceStation != "" {
			args = append(args, filter.PoliceStation)
			conditions = append(conditions, fmt.Sprintf("police_station = $%d", len(args)))
		}
		if filter.SearchTerm != "" {
			// search_terms holds the subject name and aliases. ILIKE ANY
			// treats each stored term as a pattern, giving a
			// case-insensitive exact match against the whole term.
			args = append(args, "%"+filter.SearchTerm+"%", filter.SearchTerm)
			conditions = append(conditions, fmt.Sprintf(
				"(original_filename ILIKE $%d OR $%d ILIKE ANY (search_terms))",
				len(args)-1, len(args)))
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := s.fetchLimit
	if filter != nil && filter.Limit > 0 && filter.Limit < limit {
		limit = filter.Limit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY uploaded_at DESC LIMIT $%d", len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report

	for rows.Next() {
		report, err := scanReport(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reports, nil
}

// GetReport retrieves a single report by its ID.
func (s *PostgresReportStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", reportColumns, s.table)

	report, err := scanReport(s.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	return &report, nil
}

// CountReports returns the total number of stored reports.
func (s *PostgresReportStore) CountReports(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}

	return count, nil
}

// HealthCheck verifies database connectivity.
func (s *PostgresReportStore) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health query failed: %w", err)
	}

	return nil
}

// Stats exposes connection pool statistics.
func (s *PostgresReportStore) Stats() sql.DBStats {
	return s.db.Stats()
}

// Close closes the connection pool.
func (s *PostgresReportStore) Close() error {
	return s.db.Close()
}

// scanReport reads one report row. The metadata and questions_analysis
// columns hold jsonb and decode into the nested document structs.
func scanReport(scan func(dest ...interface{}) error) (models.Report, error) {
	var (
		report        models.Report
		metadataJSON  []byte
		questionsJSON []byte
	)

	err := scan(
		&report.ID,
		&report.OriginalFilename,
		&report.PoliceStation,
		&report.Division,
		&report.AreaCommittee,
		&report.Rank,
		&metadataJSON,
		&questionsJSON,
		&report.UploadedAt,
	)
	if err != nil {
		return models.Report{}, err
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &report.Metadata); err != nil {
			return models.Report{}, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &report.QuestionsAnalysis); err != nil {
			return models.Report{}, fmt.Errorf("failed to unmarshal questions analysis: %w", err)
		}
	}

	return report, nil
}

// connectionString builds a keyword/value DSN from configuration.
func connectionString(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
}
