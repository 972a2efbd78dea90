package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/database"
	"github.com/eemreuysal/VivaCrm-v2-sub000/internal/models"
	"github.com/google/uuid"
)

// productRepo is the concrete implementation of ProductRepository
type productRepo struct {
	db *database.DB
}

// NewProductRepo creates a new product repository
func NewProductRepo(db *database.DB) ProductRepository {
	return &productRepo{db: db}
}

// ImportUpsert performs a single transactional create-or-update keyed by
// SKU. The transaction wraps the entity upsert and the denormalized
// attribute upserts; at most one create can succeed per SKU because the
// conflict target is the unique sku column.
func (r *productRepo) ImportUpsert(ctx context.Context, p *models.Product, attrs []models.ProductAttribute, updateExisting bool) (*UpsertOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	var prevStock int
	err = tx.QueryRowContext(ctx,
		`SELECT id, stock FROM products WHERE sku = $1 FOR UPDATE`, p.SKU,
	).Scan(&existingID, &prevStock)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up sku: %w", err)
	}
	exists := err == nil

	if exists && !updateExisting {
		return nil, ErrAlreadyExists
	}

	now := time.Now()
	outcome := &UpsertOutcome{PrevStock: prevStock}

	if exists {
		outcome.ID = existingID
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET
				name = $1, description = $2, price = $3, stock = $4,
				category_id = NULLIF($5, ''), family_id = NULLIF($6, ''),
				image_url = $7, updated_at = $8
			WHERE id = $9
		`, p.Name, p.Description, p.Price, p.Stock, p.CategoryID, p.FamilyID,
			p.ImageURL, now, existingID)
		if err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	} else {
		outcome.ID = uuid.New().String()
		outcome.Created = true
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (id, sku, name, description, price, stock,
				category_id, family_id, image_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $10)
			ON CONFLICT (sku) DO UPDATE SET
				name = EXCLUDED.name, description = EXCLUDED.description,
				price = EXCLUDED.price, stock = EXCLUDED.stock,
				category_id = EXCLUDED.category_id, family_id = EXCLUDED.family_id,
				image_url = EXCLUDED.image_url, updated_at = EXCLUDED.updated_at
		`, outcome.ID, p.SKU, p.Name, p.Description, p.Price, p.Stock,
			p.CategoryID, p.FamilyID, p.ImageURL, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert product: %w", err)
		}
	}

	for _, attr := range attrs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_attributes (product_id, name, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (product_id, name) DO UPDATE SET value = EXCLUDED.value
		`, outcome.ID, attr.Name, attr.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert attribute %s: %w", attr.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return outcome, nil
}

// GetBySKU retrieves a product by its natural key
func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := `
		SELECT id, sku, name, COALESCE(description, ''), price, stock,
			COALESCE(category_id::text, ''), COALESCE(family_id::text, ''),
			COALESCE(image_url, ''), created_at, updated_at
		FROM products WHERE sku = $1
	`
	var p models.Product
	err := r.db.QueryRowContext(ctx, query, sku).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.CategoryID, &p.FamilyID, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddStockMovement writes one stock audit row. Called by the post-commit
// hook, outside the import transaction.
func (r *productRepo) AddStockMovement(ctx context.Context, m *models.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_movements (id, product_id, delta, reason, session_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, m.ID, m.ProductID, m.Delta, m.Reason, m.SessionID, time.Now())
	return err
}

// Count returns the total number of products
func (r *productRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

// StreamAll streams all products for export (memory efficient)
func (r *productRepo) StreamAll(ctx context.Context, callback func(*models.Product) error) error {
	query := `
		SELECT id, sku, name, COALESCE(description, ''), price, stock,
			COALESCE(category_id::text, ''), COALESCE(family_id::text, ''),
			COALESCE(image_url, ''), created_at, updated_at
		FROM products ORDER BY sku
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Stock,
			&p.CategoryID, &p.FamilyID, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err := callback(&p); err != nil {
			return err
		}
	}
	return rows.Err()
}
