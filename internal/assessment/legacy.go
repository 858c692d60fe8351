package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
)

// LegacyStore reads assessment rows straight out of the vendor's SQL Server
// database. Some partner deployments predate the HTTP API; when a legacy DSN
// is configured this store takes precedence over the client.
type LegacyStore struct {
	db *sql.DB
}

// OpenLegacy connects to the legacy assessment database
func OpenLegacy(ctx context.Context, dsn string) (*LegacyStore, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy assessment database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping legacy assessment database: %w", err)
	}

	return &LegacyStore{db: db}, nil
}

// Close closes the database connection
func (s *LegacyStore) Close() error {
	return s.db.Close()
}

// FetchLatest returns the subject's most recent assessment, nil if none
func (s *LegacyStore) FetchLatest(ctx context.Context, subjectRef string) (*Record, error) {
	query := `
		SELECT TOP 1 AssessmentId, SubjectRef, CompletedAt, CompositeScore,
		       DomainScoresJson, PositiveScreens
		FROM dbo.Assessments
		WHERE SubjectRef = @p1
		ORDER BY CompletedAt DESC`

	row := s.db.QueryRowContext(ctx, query, subjectRef)

	var rec Record
	var domainJSON, screens sql.NullString
	err := row.Scan(&rec.ExternalID, &rec.SubjectRef, &rec.CompletedAt,
		&rec.CompositeScore, &domainJSON, &screens)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy assessment: %w", err)
	}

	rec.DomainScores = map[string]int{}
	if domainJSON.Valid && domainJSON.String != "" {
		if err := json.Unmarshal([]byte(domainJSON.String), &rec.DomainScores); err != nil {
			return nil, fmt.Errorf("failed to decode legacy domain scores: %w", err)
		}
	}
	if screens.Valid && screens.String != "" {
		// Screens are stored as a semicolon-delimited list.
		for _, screen := range strings.Split(screens.String, ";") {
			if screen = strings.TrimSpace(screen); screen != "" {
				rec.PositiveScreens = append(rec.PositiveScreens, screen)
			}
		}
	}

	return &rec, nil
}

// Health checks the legacy database connection
func (s *LegacyStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
