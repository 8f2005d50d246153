package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meliscope/meliscope-go/internal/models"
)

// ReportQuerier is the subset of the pgx pool the repository uses. It lets
// tests substitute a mock pool.
type ReportQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrReportNotFound is returned when no stored report matches the query.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository persists computed market reports as JSONB rows.
// Persisting is best-effort: callers log failures and keep serving the
// in-memory report.
type ReportRepository struct {
	db ReportQuerier
}

func NewReportRepository(db ReportQuerier) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport inserts a serialized report.
func (r *ReportRepository) SaveReport(ctx context.Context, report *models.MarketAnalysis) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `INSERT INTO market_reports (id, query, official_only, report, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.Exec(ctx, query, report.ID, report.Query, report.OfficialStoresOnly, payload, report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetLatestReport returns the most recent stored report for a (query,
// official-store filter) pair, or ErrReportNotFound.
func (r *ReportRepository) GetLatestReport(ctx context.Context, query string, officialOnly bool) (*models.MarketAnalysis, error) {
	sql := `SELECT report FROM market_reports WHERE query = $1 AND official_only = $2 ORDER BY created_at DESC LIMIT 1`

	var payload []byte
	err := r.db.QueryRow(ctx, sql, query, officialOnly).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	var report models.MarketAnalysis
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
