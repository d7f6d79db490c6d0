// seed-reports loads extracted report JSON documents into the PostgreSQL
// backend. Each input file holds one report in the dashboard's extraction
// format; rows with the same id are refreshed, so re-running the tool after
// a new extraction batch is safe.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"ir-query-processor/config"
	"ir-query-processor/models"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

func main() {
	var (
		dir      = flag.String("dir", "./reports", "Directory of extracted report JSON files")
		truncate = flag.Bool("truncate", false, "Delete existing rows before seeding")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", connectionString(&cfg.Database))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	table := cfg.District.ReportsTable
	if err := ensureSchema(db, table); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	if *truncate {
		if _, err := db.Exec("DELETE FROM " + pq.QuoteIdentifier(table)); err != nil {
			log.Fatalf("Failed to truncate %s: %v", table, err)
		}
		log.Printf("Cleared existing rows from %s", table)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Failed to read report directory %s: %v", *dir, err)
	}

	seeded, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		report, err := loadReport(path)
		if err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			skipped++
			continue
		}

		if report.UploadedAt.IsZero() {
			report.UploadedAt = fileTimestamp(entry)
		}

		if err := upsertReport(db, table, report); err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			skipped++
			continue
		}
		seeded++
	}

	log.Printf("Seeded %d reports into %s (%d skipped)", seeded, table, skipped)
}

// loadReport decodes one extraction document, assigning an id when the
// document has none.
func loadReport(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("invalid report document: %w", err)
	}

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.OriginalFilename == "" {
		report.OriginalFilename = filepath.Base(path)
	}

	return &report, nil
}

// fileTimestamp uses the extraction file's modification time as the upload
// time so seeded corpora keep a meaningful recency order.
func fileTimestamp(entry os.DirEntry) time.Time {
	if info, err := entry.Info(); err == nil {
		return info.ModTime()
	}
	return time.Now()
}

// ensureSchema creates the reports table and its recency index when they do
// not exist yet. Text columns default to the empty string so the query
// service can scan them without null handling.
func ensureSchema(db *sql.DB, table string) error {
	quoted := pq.QuoteIdentifier(table)

	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id text PRIMARY KEY,
	original_filename text NOT NULL DEFAULT '',
	police_station text NOT NULL DEFAULT '',
	division text NOT NULL DEFAULT '',
	area_committee text NOT NULL DEFAULT '',
	"rank" text NOT NULL DEFAULT '',
	metadata jsonb,
	questions_analysis jsonb,
	search_terms text[] NOT NULL DEFAULT '{}',
	uploaded_at timestamptz NOT NULL DEFAULT now()
)`, quoted)
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (uploaded_at DESC)",
		pq.QuoteIdentifier(table+"_uploaded_at_idx"), quoted)
	if _, err := db.Exec(index); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}

// upsertReport inserts one report, replacing any previous row with the
// same id.
func upsertReport(db *sql.DB, table string, report *models.Report) error {
	metadataJSON, err := marshalOrNull(report.Metadata, report.Metadata != nil)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	questionsJSON, err := marshalOrNull(report.QuestionsAnalysis, report.QuestionsAnalysis != nil)
	if err != nil {
		return fmt.Errorf("encode questions analysis: %w", err)
	}

	stmt := fmt.Sprintf(`
INSERT INTO %s (id, original_filename, police_station, division, area_committee, "rank", metadata, questions_analysis, search_terms, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
	original_filename = EXCLUDED.original_filename,
	police_station = EXCLUDED.police_station,
	division = EXCLUDED.division,
	area_committee = EXCLUDED.area_committee,
	"rank" = EXCLUDED."rank",
	metadata = EXCLUDED.metadata,
	questions_analysis = EXCLUDED.questions_analysis,
	search_terms = EXCLUDED.search_terms,
	uploaded_at = EXCLUDED.uploaded_at`, pq.QuoteIdentifier(table))

	_, err = db.Exec(stmt,
		report.ID,
		report.OriginalFilename,
		report.PoliceStation,
		report.Division,
		report.AreaCommittee,
		report.Rank,
		metadataJSON,
		questionsJSON,
		pq.Array(searchTerms(report.Metadata)),
		report.UploadedAt,
	)
	return err
}

// marshalOrNull returns the JSON encoding of v, or nil (SQL NULL) when the
// document section is absent.
func marshalOrNull(v interface{}, present bool) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}

// searchTerms denormalizes the subject name and aliases into the text[]
// column the query service matches with ILIKE ANY.
func searchTerms(md *models.ReportMetadata) []string {
	terms := []string{}
	if md == nil {
		return terms
	}

	seen := make(map[string]struct{})
	for _, term := range append([]string{md.Name}, md.Aliases...) {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}

	return terms
}

// connectionString builds a keyword/value DSN from configuration.
func connectionString(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
}
