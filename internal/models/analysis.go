package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Verdict string

const (
	VerdictVerified       Verdict = "Verified"
	VerdictSuspicious     Verdict = "Suspicious"
	VerdictMisinformation Verdict = "Misinformation"
)

// Source is a grounding reference reported by the reasoning service.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type Breakdown struct {
	SourceCredibility   int      `json:"sourceCredibility"`
	SentimentAnalysis   string   `json:"sentimentAnalysis"`
	CrossReferenceCount int      `json:"crossReferenceCount"`
	RedFlags            []string `json:"redFlags"`
}

// AnalysisResult is the public output contract of the engine. Every field
// always carries a schema-valid value.
type AnalysisResult struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Kind         DetectionKind `json:"type"`
	DisplayInput string        `json:"input"`
	TruthScore   int           `json:"truthScore"`
	Summary      string        `json:"summary"`
	Verdict      Verdict       `json:"verdict"`
	Breakdown    Breakdown     `json:"breakdown"`
	Sources      []Source      `json:"sources"`
}

// HistoryService persists analysis results for the ledger view. The engine
// itself never touches it.
type HistoryService struct {
	pool *pgxpool.Pool
}

func NewHistoryService(pool *pgxpool.Pool) *HistoryService {
	return &HistoryService{pool: pool}
}

// Save records a completed result. A second save of the same id returns
// ErrAnalysisExists.
func (s *HistoryService) Save(ctx context.Context, result *AnalysisResult) error {
	report, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO analyses (id, kind, display_input, truth_score, verdict, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err = s.pool.Exec(ctx, query,
		result.ID,
		result.Kind,
		result.DisplayInput,
		result.TruthScore,
		result.Verdict,
		report,
		result.Timestamp,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAnalysisExists
		}
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	return nil
}

func (s *HistoryService) ByID(ctx context.Context, id string) (*AnalysisResult, error) {
	query := `SELECT report FROM analyses WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var report []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&report)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var result AnalysisResult
	if err := json.Unmarshal(report, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
	}
	return &result, nil
}

// Recent lists stored results, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]*AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT report
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	results := make([]*AnalysisResult, 0, limit)
	for rows.Next() {
		var report []byte
		if err := rows.Scan(&report); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		var result AnalysisResult
		if err := json.Unmarshal(report, &result); err != nil {
			return nil, fmt.Errorf("failed to decode stored analysis: %w", err)
		}
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return results, nil
}

// CountByVerdict returns stored result counts grouped by verdict.
func (s *HistoryService) CountByVerdict(ctx context.Context) (map[Verdict]int, error) {
	query := `SELECT verdict, COUNT(*) FROM analyses GROUP BY verdict`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses by verdict: %w", err)
	}
	defer rows.Close()

	counts := make(map[Verdict]int)
	for rows.Next() {
		var verdict Verdict
		var count int
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, fmt.Errorf("failed to scan verdict count: %w", err)
		}
		counts[verdict] = count
	}

	return counts, rows.Err()
}

func (s *HistoryService) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM analyses WHERE id = $1`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAnalysisNotFound
	}

	return nil
}
