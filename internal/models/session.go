package models

import (
	"time"
)

// SessionStatus represents the lifecycle state of an import session
type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "pending"
	SessionStatusProcessing SessionStatus = "processing"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
)

// DiagnosticLevel distinguishes row errors from non-blocking warnings
type DiagnosticLevel string

const (
	DiagnosticError   DiagnosticLevel = "error"
	DiagnosticWarning DiagnosticLevel = "warning"
)

// ImportSession represents one complete run of the import pipeline against
// one source file. Mutated by the aggregator only; immutable once completed
// or failed. A reload creates a new session linked via ParentID.
type ImportSession struct {
	ID             string        `json:"session_id" db:"id"`
	Kind           string        `json:"kind" db:"kind"`
	Status         SessionStatus `json:"status" db:"status"`
	SourceName     string        `json:"source_name" db:"source_name"`
	SourceSize     int64         `json:"source_size" db:"source_size"`
	SourceHash     string        `json:"source_hash" db:"source_hash"`
	SourcePath     string        `json:"-" db:"source_path"`
	TotalRows      int           `json:"total" db:"total_rows"`
	ProcessedCount int           `json:"processed" db:"processed_count"`
	SuccessCount   int           `json:"success_count" db:"success_count"`
	ErrorCount     int           `json:"error_count" db:"error_count"`
	WarningCount   int           `json:"warning_count" db:"warning_count"`
	CreatedCount   int           `json:"created_count" db:"created_count"`
	UpdatedCount   int           `json:"updated_count" db:"updated_count"`
	ParentID       string        `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	StartedAt      *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// Terminal reports whether the session reached a final state
func (s *ImportSession) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusFailed
}

// Diagnostic is a single row-scoped error or warning. Row numbers are
// 1-based and source-relative (the header row is row 1). Field names are
// canonical, never the source header text.
type Diagnostic struct {
	Row        int             `json:"row"`
	Field      string          `json:"field,omitempty"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion,omitempty"`
	Value      string          `json:"value,omitempty"`
	Level      DiagnosticLevel `json:"level"`
}

// CorrectionRecord is one entry in the append-only audit trail of
// best-effort field repairs performed during an import run.
type CorrectionRecord struct {
	FieldType   string    `json:"field_type"`
	Original    string    `json:"original"`
	Corrected   string    `json:"corrected"`
	Similarity  float64   `json:"similarity,omitempty"`
	CreatedNew  bool      `json:"created_new,omitempty"`
	CorrectedAt time.Time `json:"corrected_at"`
}

// CorrectionSummary is the cumulative view the corrector exposes for
// session reporting.
type CorrectionSummary struct {
	Counts map[string]int     `json:"counts"`
	Recent []CorrectionRecord `json:"recent,omitempty"`
}

// SessionRecord links an imported row to the entity it created or updated,
// supporting the "related records" listing for a session.
type SessionRecord struct {
	SessionID string    `json:"-" db:"session_id"`
	Row       int       `json:"row" db:"row_number"`
	EntityID  string    `json:"entity_id" db:"entity_id"`
	Key       string    `json:"key" db:"natural_key"`
	Action    string    `json:"action" db:"action"` // "created" or "updated"
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ImportOptions control a single import invocation
type ImportOptions struct {
	UpdateExisting bool `json:"update_existing"`
	ChunkSize      int  `json:"chunk_size"`
	SkipValidation bool `json:"skip_validation"`
	UseChunks      bool `json:"use_chunks"`
}

// ImportResult is the outcome of a completed import. Partial success is the
// expected common case: counts and full diagnostic lists are always present.
type ImportResult struct {
	SessionID    string            `json:"session_id"`
	Total        int               `json:"total"`
	SuccessCount int               `json:"success_count"`
	ErrorCount   int               `json:"error_count"`
	WarningCount int               `json:"warning_count"`
	CreatedCount int               `json:"created_count"`
	UpdatedCount int               `json:"updated_count"`
	Successes    []SessionRecord   `json:"successes,omitempty"`
	Errors       []Diagnostic      `json:"errors,omitempty"`
	Warnings     []Diagnostic      `json:"warnings,omitempty"`
	Corrections  CorrectionSummary `json:"corrections"`
}
