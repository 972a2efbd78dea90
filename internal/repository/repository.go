package repository

import (
	"context"
	"errors"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/database"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
)

// ErrAlreadyExists is returned by import upserts when the natural key exists
// and updating existing entities is disabled.
var ErrAlreadyExists = errors.New("entity with this key already exists")

// UpsertOutcome describes what a transactional create-or-update did
type UpsertOutcome struct {
	ID        string
	Created   bool
	PrevStock int
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	// ImportUpsert performs the row processor's transactional
	// create-or-update keyed by SKU, including attribute upserts.
	ImportUpsert(ctx context.Context, p *models.Product, attrs []models.ProductAttribute, updateExisting bool) (*UpsertOutcome, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	AddStockMovement(ctx context.Context, m *models.StockMovement) error
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Product) error) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Count(ctx context.Context) (int, error)
}

// FamilyRepository defines the interface for product family operations
type FamilyRepository interface {
	GetAll(ctx context.Context) ([]models.Family, error)
	Create(ctx context.Context, f *models.Family) error
}

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	ImportUpsert(ctx context.Context, c *models.Customer, updateExisting bool) (*UpsertOutcome, error)
	Count(ctx context.Context) (int, error)
	StreamAll(ctx context.Context, callback func(*models.Customer) error) error
}

// SessionRepository defines the interface for import session persistence.
// Sessions, their diagnostics and their correction audit trail survive
// process restarts; they are the resumable state underpinning reload.
type SessionRepository interface {
	Create(ctx context.Context, s *models.ImportSession) error
	Update(ctx context.Context, s *models.ImportSession) error
	GetByID(ctx context.Context, id string) (*models.ImportSession, error)
	List(ctx context.Context, limit int) ([]*models.ImportSession, error)
	AddDiagnostics(ctx context.Context, sessionID string, diags []models.Diagnostic) error
	GetDiagnostics(ctx context.Context, sessionID string, level models.DiagnosticLevel, limit int) ([]models.Diagnostic, error)
	AddCorrections(ctx context.Context, sessionID string, recs []models.CorrectionRecord) error
	AddRecords(ctx context.Context, sessionID string, recs []models.SessionRecord) error
	GetRecords(ctx context.Context, sessionID string) ([]models.SessionRecord, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Product  ProductRepository
	Category CategoryRepository
	Family   FamilyRepository
	Customer CustomerRepository
	Session  SessionRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Product:  NewProductRepo(db),
		Category: NewCategoryRepo(db),
		Family:   NewFamilyRepo(db),
		Customer: NewCustomerRepo(db),
		Session:  NewSessionRepo(db),
	}
}
