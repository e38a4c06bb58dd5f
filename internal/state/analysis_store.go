// ./internal/state/analysis_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Analysis kinds persisted in analysis_snapshots.
const (
	AnalysisKindRisk         = "risk"
	AnalysisKindOptimization = "optimization"
	AnalysisKindForecast     = "forecast"
	AnalysisKindComparison   = "comparison"
)

// AnalysisRecord is one persisted analysis result. Result holds the
// module-specific payload as raw JSON.
type AnalysisRecord struct {
	SnapshotID int64           `json:"snapshot_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Kind       string          `json:"kind"`
	Subject    string          `json:"subject"`
	Result     json.RawMessage `json:"result"`
}

// SaveAnalysis persists one analysis result and returns its snapshot ID.
// Subject is the vault address for single-vault analyses, or a descriptive
// label for portfolio/comparison runs.
func SaveAnalysis(kind string, subject string, result any) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `
		INSERT INTO analysis_snapshots (analysis_kind, subject, result)
		VALUES ($1, $2, $3)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(query, kind, subject, resultJSON).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshotID", snapshotID).
		Str("kind", kind).
		Str("subject", subject).
		Msg("Analysis snapshot saved")

	return snapshotID, nil
}

// GetRecentAnalyses returns the most recent analysis snapshots, newest first.
// Kind filters to one analysis kind when non-empty.
func GetRecentAnalyses(kind string, limit int) ([]AnalysisRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT snapshot_id, analysis_timestamp, analysis_kind, subject, result
		FROM analysis_snapshots
		WHERE ($1 = '' OR analysis_kind = $1)
		ORDER BY analysis_timestamp DESC
		LIMIT $2;
	`

	rows, err := DB.Query(query, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis snapshots: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.SnapshotID, &rec.Timestamp, &rec.Kind, &rec.Subject, &rec.Result); err != nil {
			return nil, fmt.Errorf("failed to scan analysis snapshot: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis snapshots: %w", err)
	}

	return records, nil
}

// GetLatestAnalysisForSubject returns the newest snapshot of one kind for a
// subject, or (nil, nil) when none exists.
func GetLatestAnalysisForSubject(kind string, subject string) (*AnalysisRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT snapshot_id, analysis_timestamp, analysis_kind, subject, result
		FROM analysis_snapshots
		WHERE analysis_kind = $1 AND subject = $2
		ORDER BY analysis_timestamp DESC
		LIMIT 1;
	`

	var rec AnalysisRecord
	err := DB.QueryRow(query, kind, subject).Scan(&rec.SnapshotID, &rec.Timestamp, &rec.Kind, &rec.Subject, &rec.Result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query latest analysis: %w", err)
	}

	return &rec, nil
}
