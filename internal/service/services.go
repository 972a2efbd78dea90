package service

import (
	"context"
	"io"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/config"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/rs/zerolog"
)

// ImportService defines the interface for import operations
type ImportService interface {
	// Import stores the uploaded source, creates a session and runs the
	// full pipeline synchronously. Partial success is the normal case: a
	// non-nil result carries counts and diagnostics even when rows failed.
	Import(ctx context.Context, kind string, src io.Reader, filename string, opts models.ImportOptions) (*models.ImportResult, error)

	// Reload re-runs the pipeline against a previous session's stored
	// source bytes, producing a new session linked via parent_id.
	Reload(ctx context.Context, sessionID string, opts models.ImportOptions) (*models.ImportResult, error)
}

// ExportService defines the interface for export operations. An empty
// sheetName falls back to the configured default.
type ExportService interface {
	ExportProducts(ctx context.Context, w io.Writer, sheetName string) (int, error)
	ExportCustomers(ctx context.Context, w io.Writer, sheetName string) (int, error)
	WriteTemplate(kind string, w io.Writer) error
	Counts(ctx context.Context) (map[string]int, error)
}

// SessionService defines the interface for import session queries
type SessionService interface {
	Get(ctx context.Context, id string) (*models.ImportSession, error)
	List(ctx context.Context, limit int) ([]*models.ImportSession, error)
	Diagnostics(ctx context.Context, id string, level models.DiagnosticLevel, limit int) ([]models.Diagnostic, error)
	Records(ctx context.Context, id string) ([]models.SessionRecord, error)
}

// Services holds all service interfaces
type Services struct {
	Import  ImportService
	Export  ExportService
	Session SessionService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Import:  newImportService(repos, cfg, log),
		Export:  newExportService(repos, cfg, log),
		Session: newSessionService(repos, log),
	}
}
