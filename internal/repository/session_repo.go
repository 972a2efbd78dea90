package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/database"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/lib/pq"
)

// sessionRepo is the concrete implementation of SessionRepository
type sessionRepo struct {
	db *database.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *database.DB) SessionRepository {
	return &sessionRepo{db: db}
}

// Create inserts a new import session
func (r *sessionRepo) Create(ctx context.Context, s *models.ImportSession) error {
	query := `
		INSERT INTO import_sessions (id, kind, status, source_name, source_size, source_hash,
			source_path, total_rows, processed_count, success_count, error_count, warning_count,
			created_count, updated_count, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULLIF($15, '')::uuid, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Kind, s.Status, s.SourceName, s.SourceSize, s.SourceHash,
		nullString(s.SourcePath), s.TotalRows, s.ProcessedCount, s.SuccessCount,
		s.ErrorCount, s.WarningCount, s.CreatedCount, s.UpdatedCount,
		s.ParentID, s.CreatedAt,
	)
	return err
}

// Update updates session status and counters
func (r *sessionRepo) Update(ctx context.Context, s *models.ImportSession) error {
	query := `
		UPDATE import_sessions SET
			status = $1, total_rows = $2, processed_count = $3, success_count = $4,
			error_count = $5, warning_count = $6, created_count = $7, updated_count = $8,
			started_at = $9, completed_at = $10
		WHERE id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		s.Status, s.TotalRows, s.ProcessedCount, s.SuccessCount,
		s.ErrorCount, s.WarningCount, s.CreatedCount, s.UpdatedCount,
		s.StartedAt, s.CompletedAt, s.ID,
	)
	return err
}

const sessionColumns = `id, kind, status, source_name, source_size, source_hash,
	COALESCE(source_path, ''), total_rows, processed_count, success_count, error_count,
	warning_count, created_count, updated_count, COALESCE(parent_id::text, ''),
	created_at, started_at, completed_at`

// GetByID retrieves a session by ID
func (r *sessionRepo) GetByID(ctx context.Context, id string) (*models.ImportSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM import_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

// List retrieves the most recent sessions
func (r *sessionRepo) List(ctx context.Context, limit int) ([]*models.ImportSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM import_sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.ImportSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.ImportSession, error) {
	var s models.ImportSession
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.Kind, &s.Status, &s.SourceName, &s.SourceSize, &s.SourceHash,
		&s.SourcePath, &s.TotalRows, &s.ProcessedCount, &s.SuccessCount, &s.ErrorCount,
		&s.WarningCount, &s.CreatedCount, &s.UpdatedCount, &s.ParentID,
		&s.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		s.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}

// AddDiagnostics bulk-writes diagnostics using the COPY protocol. Imports
// routinely produce tens of thousands of row diagnostics; COPY keeps this
// a single round trip per flush.
func (r *sessionRepo) AddDiagnostics(ctx context.Context, sessionID string, diags []models.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("session_diagnostics",
		"session_id", "row_number", "field", "level", "code", "message", "suggestion", "value",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range diags {
		if _, err := stmt.ExecContext(ctx, sessionID, d.Row, d.Field, string(d.Level),
			d.Code, d.Message, d.Suggestion, d.Value); err != nil {
			return err
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetDiagnostics retrieves diagnostics for a session, optionally filtered by level
func (r *sessionRepo) GetDiagnostics(ctx context.Context, sessionID string, level models.DiagnosticLevel, limit int) ([]models.Diagnostic, error) {
	query := `
		SELECT row_number, field, level, code, message, suggestion, value
		FROM session_diagnostics WHERE session_id = $1
	`
	args := []interface{}{sessionID}
	if level != "" {
		query += ` AND level = $2`
		args = append(args, string(level))
	}
	query += ` ORDER BY row_number`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diags []models.Diagnostic
	for rows.Next() {
		var d models.Diagnostic
		var lvl string
		if err := rows.Scan(&d.Row, &d.Field, &lvl, &d.Code, &d.Message, &d.Suggestion, &d.Value); err != nil {
			return nil, err
		}
		d.Level = models.DiagnosticLevel(lvl)
		diags = append(diags, d)
	}
	return diags, rows.Err()
}

// AddCorrections bulk-writes the correction audit trail using COPY
func (r *sessionRepo) AddCorrections(ctx context.Context, sessionID string, recs []models.CorrectionRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("session_corrections",
		"session_id", "field_type", "original", "corrected", "similarity", "created_new", "corrected_at",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if _, err := stmt.ExecContext(ctx, sessionID, rec.FieldType, rec.Original,
			rec.Corrected, rec.Similarity, rec.CreatedNew, rec.CorrectedAt); err != nil {
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// AddRecords links imported rows to the entities they touched
func (r *sessionRepo) AddRecords(ctx context.Context, sessionID string, recs []models.SessionRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("session_records",
		"session_id", "row_number", "entity_id", "natural_key", "action", "created_at",
	))
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx, sessionID, rec.Row, rec.EntityID,
			rec.Key, rec.Action, createdAt); err != nil {
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		return err
	}
	return tx.Commit()
}

// GetRecords lists the entities a session created or updated
func (r *sessionRepo) GetRecords(ctx context.Context, sessionID string) ([]models.SessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, row_number, entity_id, natural_key, action, created_at
		FROM session_records WHERE session_id = $1 ORDER BY row_number
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []models.SessionRecord
	for rows.Next() {
		var rec models.SessionRecord
		if err := rows.Scan(&rec.SessionID, &rec.Row, &rec.EntityID, &rec.Key,
			&rec.Action, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

