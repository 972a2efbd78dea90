package models

import (
	"time"
)

// Customer is the persisted customer entity. Email is the natural key for
// customer imports.
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	Company   string    `json:"company,omitempty" db:"company"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerRecord is the validated representation of one customer source row
type CustomerRecord struct {
	Row     int
	Email   string
	Name    string
	Phone   string
	Company string
}
