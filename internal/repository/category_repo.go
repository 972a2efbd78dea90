package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/database"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/google/uuid"
)

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	db *database.DB
}

// NewCategoryRepo creates a new category repository
func NewCategoryRepo(db *database.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

// GetAll retrieves all categories. Used to seed the per-session reference
// cache and the fuzzy match candidate list.
func (r *categoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, COALESCE(description, ''), created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Create inserts a new category. The slug conflict target makes concurrent
// creation of the same auto-generated category a no-op.
func (r *categoryRepo) Create(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (slug) DO NOTHING
	`, c.ID, c.Name, c.Slug, c.Description, c.CreatedAt)
	if err != nil {
		return err
	}

	// Another writer may have won the conflict: read back the canonical id
	var id string
	err = r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE slug = $1`, c.Slug).Scan(&id)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetByID retrieves a category by id
func (r *categoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slug, COALESCE(description, ''), created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Count returns the total number of categories
func (r *categoryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count)
	return count, err
}

// familyRepo is the concrete implementation of FamilyRepository
type familyRepo struct {
	db *database.DB
}

// NewFamilyRepo creates a new family repository
func NewFamilyRepo(db *database.DB) FamilyRepository {
	return &familyRepo{db: db}
}

// GetAll retrieves all product families
func (r *familyRepo) GetAll(ctx context.Context) ([]models.Family, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM families ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fams []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return nil, err
		}
		fams = append(fams, f)
	}
	return fams, rows.Err()
}

// Create inserts a new family, tolerating a concurrent create of the same name
func (r *familyRepo) Create(ctx context.Context, f *models.Family) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO families (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`, f.ID, f.Name, f.CreatedAt)
	if err != nil {
		return err
	}

	var id string
	err = r.db.QueryRowContext(ctx, `SELECT id FROM families WHERE name = $1`, f.Name).Scan(&id)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}
