package service

import (
	"context"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/rs/zerolog"
)

// sessionService is the concrete implementation of SessionService
type sessionService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newSessionService creates a new SessionService
func newSessionService(repos *repository.Repositories, log zerolog.Logger) *sessionService {
	return &sessionService{
		repos: repos,
		log:   log.With().Str("service", "session").Logger(),
	}
}

// Get retrieves one session by id
func (s *sessionService) Get(ctx context.Context, id string) (*models.ImportSession, error) {
	session, err := s.repos.Session.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns the most recent sessions, newest first
func (s *sessionService) List(ctx context.Context, limit int) ([]*models.ImportSession, error) {
	return s.repos.Session.List(ctx, limit)
}

// Diagnostics returns a session's stored diagnostics, optionally filtered
// by level.
func (s *sessionService) Diagnostics(ctx context.Context, id string, level models.DiagnosticLevel, limit int) ([]models.Diagnostic, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Session.GetDiagnostics(ctx, id, level, limit)
}

// Records returns the entities a session created or updated
func (s *sessionService) Records(ctx context.Context, id string) ([]models.SessionRecord, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Session.GetRecords(ctx, id)
}
