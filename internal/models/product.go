package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the persisted product entity. SKU is the natural business key:
// create-or-update decisions and the at-most-once-per-key guarantee hang off
// the unique sku column.
type Product struct {
	ID          string          `json:"id" db:"id"`
	SKU         string          `json:"sku" db:"sku"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	CategoryID  string          `json:"category_id,omitempty" db:"category_id"`
	FamilyID    string          `json:"family_id,omitempty" db:"family_id"`
	ImageURL    string          `json:"image_url,omitempty" db:"image_url"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductAttribute is a denormalized attribute row (color, size) upserted in
// the same transaction as its product.
type ProductAttribute struct {
	ProductID string `json:"-" db:"product_id"`
	Name      string `json:"name" db:"name"`
	Value     string `json:"value" db:"value"`
}

// StockMovement is the audit row written by the post-commit hook whenever an
// import changes a product's stock level.
type StockMovement struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Delta     int       `json:"delta" db:"delta"`
	Reason    string    `json:"reason" db:"reason"`
	SessionID string    `json:"session_id,omitempty" db:"session_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category is a referenced named entity resolved (or created) during import
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Family groups product variants; resolved by exact name match only
type Family struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ProductRecord is the normalized, validated representation of one source
// row: canonical values plus resolved references. Consumed exactly once by
// the row processor and discarded after persistence.
type ProductRecord struct {
	Row         int
	SKU         string
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	FamilyID    string
	ImageURL    string
	Color       string
	Size        string
}

// Attributes returns the denormalized attribute rows carried by the record
func (r *ProductRecord) Attributes() []ProductAttribute {
	var attrs []ProductAttribute
	if r.Color != "" {
		attrs = append(attrs, ProductAttribute{Name: "color", Value: r.Color})
	}
	if r.Size != "" {
		attrs = append(attrs, ProductAttribute{Name: "size", Value: r.Size})
	}
	return attrs
}
