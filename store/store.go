// Package store persists exported audit traces in SQLite.
//
// The store is append-only per trace ID: a trace may be saved once, and
// an idempotent re-save of the identical export is accepted, but saving
// a different payload under an existing trace ID is an integrity error.
// Event order is preserved by storing the full export document.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/urbannexus/core/trace"
)

// ErrNotFound is returned when no trace exists for the requested ID.
var ErrNotFound = errors.New("trace not found")

// ErrTraceExists is returned when a different payload is saved under an
// existing trace ID.
var ErrTraceExists = errors.New("trace ID already exists with different contents")

const schema = `
CREATE TABLE IF NOT EXISTS traces (
	trace_id             TEXT PRIMARY KEY,
	created_at           INTEGER NOT NULL,
	final_recommendation TEXT NOT NULL,
	verification_hash    TEXT NOT NULL,
	export_json          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_traces_created_at ON traces (created_at);
`

// TraceInfo is one row of the trace listing.
type TraceInfo struct {
	TraceID             string
	CreatedAt           time.Time
	FinalRecommendation string
	VerificationHash    string
}

// TraceStore persists trace exports in SQLite.
type TraceStore struct {
	sqlDB *sql.DB
}

// Open opens the store at path, creating the schema when absent.
func Open(path string) (*TraceStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &TraceStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *TraceStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveExport persists one exported trace. The export must verify before
// it is accepted: a tampered payload never reaches storage.
func (s *TraceStore) SaveExport(ctx context.Context, export trace.Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if export.TraceID == "" {
		return fmt.Errorf("trace ID is required")
	}
	if err := trace.Verify(export); err != nil {
		return fmt.Errorf("refusing to store unverifiable trace: %w", err)
	}

	payload, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("serialize export: %w", err)
	}

	var existingHash string
	err = s.sqlDB.QueryRowContext(ctx,
		`SELECT verification_hash FROM traces WHERE trace_id = ?`, export.TraceID).
		Scan(&existingHash)
	switch {
	case err == nil:
		if existingHash == export.VerificationHash {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrTraceExists, export.TraceID)
	case errors.Is(err, sql.ErrNoRows):
		// First save for this trace ID.
	default:
		return fmt.Errorf("check existing trace: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO traces (trace_id, created_at, final_recommendation, verification_hash, export_json)
		 VALUES (?, ?, ?, ?, ?)`,
		export.TraceID,
		export.CreatedAt.UTC().UnixMilli(),
		export.FinalRecommendation,
		export.VerificationHash,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert trace: %w", err)
	}
	return nil
}

// GetExport loads one exported trace by ID.
func (s *TraceStore) GetExport(ctx context.Context, traceID string) (trace.Export, error) {
	if err := ctx.Err(); err != nil {
		return trace.Export{}, err
	}
	var payload string
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT export_json FROM traces WHERE trace_id = ?`, traceID).
		Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return trace.Export{}, fmt.Errorf("%w: %s", ErrNotFound, traceID)
	}
	if err != nil {
		return trace.Export{}, fmt.Errorf("load trace: %w", err)
	}
	return trace.ParseExport([]byte(payload))
}

// ListTraces returns trace metadata ordered newest first.
func (s *TraceStore) ListTraces(ctx context.Context) ([]TraceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT trace_id, created_at, final_recommendation, verification_hash
		 FROM traces ORDER BY created_at DESC, trace_id`)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var out []TraceInfo
	for rows.Next() {
		var info TraceInfo
		var createdAt int64
		if err := rows.Scan(&info.TraceID, &createdAt, &info.FinalRecommendation, &info.VerificationHash); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		info.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traces: %w", err)
	}
	return out, nil
}
