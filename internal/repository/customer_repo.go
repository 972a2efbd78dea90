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

// customerRepo is the concrete implementation of CustomerRepository
type customerRepo struct {
	db *database.DB
}

// NewCustomerRepo creates a new customer repository
func NewCustomerRepo(db *database.DB) CustomerRepository {
	return &customerRepo{db: db}
}

// ImportUpsert performs a transactional create-or-update keyed by email
func (r *customerRepo) ImportUpsert(ctx context.Context, c *models.Customer, updateExisting bool) (*UpsertOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE lower(email) = lower($1) FOR UPDATE`, c.Email,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	exists := err == nil

	if exists && !updateExisting {
		return nil, ErrAlreadyExists
	}

	now := time.Now()
	outcome := &UpsertOutcome{}

	if exists {
		outcome.ID = existingID
		_, err = tx.ExecContext(ctx, `
			UPDATE customers SET name = $1, phone = $2, company = $3, updated_at = $4
			WHERE id = $5
		`, c.Name, c.Phone, c.Company, now, existingID)
	} else {
		outcome.ID = uuid.New().String()
		outcome.Created = true
		_, err = tx.ExecContext(ctx, `
			INSERT INTO customers (id, email, name, phone, company, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
			ON CONFLICT (email) DO UPDATE SET
				name = EXCLUDED.name, phone = EXCLUDED.phone,
				company = EXCLUDED.company, updated_at = EXCLUDED.updated_at
		`, outcome.ID, c.Email, c.Name, c.Phone, c.Company, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return outcome, nil
}

// Count returns the total number of customers
func (r *customerRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers").Scan(&count)
	return count, err
}

// StreamAll streams all customers for export (memory efficient)
func (r *customerRepo) StreamAll(ctx context.Context, callback func(*models.Customer) error) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, COALESCE(phone, ''), COALESCE(company, ''), created_at, updated_at
		FROM customers ORDER BY email
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Customer
		err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.Company, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return err
		}
		if err := callback(&c); err != nil {
			return err
		}
	}
	return rows.Err()
}
