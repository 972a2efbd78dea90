package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/repository"
	"github.com/google/uuid"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mu          sync.Mutex
	Products    map[string]*models.Product // keyed by SKU
	Attributes  map[string][]models.ProductAttribute
	Movements   []models.StockMovement
	UpsertError error
	UpsertCalls int
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		Products:   make(map[string]*models.Product),
		Attributes: make(map[string][]models.ProductAttribute),
	}
}

func (m *MockProductRepository) ImportUpsert(ctx context.Context, p *models.Product, attrs []models.ProductAttribute, updateExisting bool) (*repository.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}

	existing, exists := m.Products[p.SKU]
	if exists && !updateExisting {
		return nil, repository.ErrAlreadyExists
	}

	outcome := &repository.UpsertOutcome{}
	if exists {
		outcome.ID = existing.ID
		outcome.PrevStock = existing.Stock
		cp := *p
		cp.ID = existing.ID
		m.Products[p.SKU] = &cp
	} else {
		outcome.ID = uuid.New().String()
		outcome.Created = true
		cp := *p
		cp.ID = outcome.ID
		m.Products[p.SKU] = &cp
	}
	m.Attributes[outcome.ID] = attrs
	return outcome, nil
}

func (m *MockProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Products[sku], nil
}

func (m *MockProductRepository) AddStockMovement(ctx context.Context, mv *models.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Movements = append(m.Movements, *mv)
	return nil
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Products), nil
}

func (m *MockProductRepository) StreamAll(ctx context.Context, callback func(*models.Product) error) error {
	m.mu.Lock()
	skus := make([]string, 0, len(m.Products))
	for sku := range m.Products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	products := make([]*models.Product, 0, len(skus))
	for _, sku := range skus {
		products = append(products, m.Products[sku])
	}
	m.mu.Unlock()

	for _, p := range products {
		if err := callback(p); err != nil {
			return err
		}
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mu          sync.Mutex
	Categories  []models.Category
	CreateError error
	CreateCalls int
}

func NewMockCategoryRepository(seed ...models.Category) *MockCategoryRepository {
	return &MockCategoryRepository{Categories: seed}
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Category, len(m.Categories))
	copy(out, m.Categories)
	return out, nil
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	// Same slug wins the conflict, mirroring the ON CONFLICT DO NOTHING path
	for _, existing := range m.Categories {
		if existing.Slug == c.Slug {
			c.ID = existing.ID
			return nil
		}
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	m.Categories = append(m.Categories, *c)
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Categories {
		if m.Categories[i].ID == id {
			c := m.Categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockCategoryRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Categories), nil
}

// MockFamilyRepository is a mock implementation of FamilyRepository
type MockFamilyRepository struct {
	mu       sync.Mutex
	Families []models.Family
}

func NewMockFamilyRepository(seed ...models.Family) *MockFamilyRepository {
	return &MockFamilyRepository{Families: seed}
}

func (m *MockFamilyRepository) GetAll(ctx context.Context) ([]models.Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Family, len(m.Families))
	copy(out, m.Families)
	return out, nil
}

func (m *MockFamilyRepository) Create(ctx context.Context, f *models.Family) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Families {
		if existing.Name == f.Name {
			f.ID = existing.ID
			return nil
		}
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	m.Families = append(m.Families, *f)
	return nil
}

// MockCustomerRepository is a mock implementation of CustomerRepository
type MockCustomerRepository struct {
	mu          sync.Mutex
	Customers   map[string]*models.Customer // keyed by lower email
	UpsertError error
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{Customers: make(map[string]*models.Customer)}
}

func (m *MockCustomerRepository) ImportUpsert(ctx context.Context, c *models.Customer, updateExisting bool) (*repository.UpsertOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertError != nil {
		return nil, m.UpsertError
	}

	key := strings.ToLower(c.Email)
	existing, exists := m.Customers[key]
	if exists && !updateExisting {
		return nil, repository.ErrAlreadyExists
	}

	outcome := &repository.UpsertOutcome{}
	if exists {
		outcome.ID = existing.ID
		cp := *c
		cp.ID = existing.ID
		m.Customers[key] = &cp
	} else {
		outcome.ID = uuid.New().String()
		outcome.Created = true
		cp := *c
		cp.ID = outcome.ID
		m.Customers[key] = &cp
	}
	return outcome, nil
}

func (m *MockCustomerRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Customers), nil
}

func (m *MockCustomerRepository) StreamAll(ctx context.Context, callback func(*models.Customer) error) error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.Customers))
	for k := range m.Customers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	customers := make([]*models.Customer, 0, len(keys))
	for _, k := range keys {
		customers = append(customers, m.Customers[k])
	}
	m.mu.Unlock()

	for _, c := range customers {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mu          sync.Mutex
	Sessions    map[string]*models.ImportSession
	Diagnostics map[string][]models.Diagnostic
	Corrections map[string][]models.CorrectionRecord
	Records     map[string][]models.SessionRecord
	UpdateCalls int
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		Sessions:    make(map[string]*models.ImportSession),
		Diagnostics: make(map[string][]models.Diagnostic),
		Corrections: make(map[string][]models.CorrectionRecord),
		Records:     make(map[string][]models.SessionRecord),
	}
}

func (m *MockSessionRepository) Create(ctx context.Context, s *models.ImportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.Sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	cp := *s
	m.Sessions[s.ID] = &cp
	return nil
}

func (m *MockSessionRepository) Update(ctx context.Context, s *models.ImportSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	cp := *s
	m.Sessions[s.ID] = &cp
	return nil
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*models.ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepository) List(ctx context.Context, limit int) ([]*models.ImportSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ImportSession, 0, len(m.Sessions))
	for _, s := range m.Sessions {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockSessionRepository) AddDiagnostics(ctx context.Context, sessionID string, diags []models.Diagnostic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Diagnostics[sessionID] = append(m.Diagnostics[sessionID], diags...)
	return nil
}

func (m *MockSessionRepository) GetDiagnostics(ctx context.Context, sessionID string, level models.DiagnosticLevel, limit int) ([]models.Diagnostic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Diagnostic
	for _, d := range m.Diagnostics[sessionID] {
		if level != "" && d.Level != level {
			continue
		}
		out = append(out, d)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockSessionRepository) AddCorrections(ctx context.Context, sessionID string, recs []models.CorrectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Corrections[sessionID] = append(m.Corrections[sessionID], recs...)
	return nil
}

func (m *MockSessionRepository) AddRecords(ctx context.Context, sessionID string, recs []models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[sessionID] = append(m.Records[sessionID], recs...)
	return nil
}

func (m *MockSessionRepository) GetRecords(ctx context.Context, sessionID string) ([]models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SessionRecord, len(m.Records[sessionID]))
	copy(out, m.Records[sessionID])
	return out, nil
}

// NewRepositories bundles fresh mocks into a repository aggregate
func NewRepositories() (*repository.Repositories, *MockProductRepository, *MockCategoryRepository, *MockSessionRepository) {
	products := NewMockProductRepository()
	categories := NewMockCategoryRepository()
	sessions := NewMockSessionRepository()
	repos := &repository.Repositories{
		Product:  products,
		Category: categories,
		Family:   NewMockFamilyRepository(),
		Customer: NewMockCustomerRepository(),
		Session:  sessions,
	}
	return repos, products, categories, sessions
}
