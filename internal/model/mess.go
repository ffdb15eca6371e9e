package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mess is a food-service listing owned by a single user
type Mess struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Area      string          `json:"area"`
	Price     decimal.Decimal `json:"price"` // Monthly price
	Delivery  bool            `json:"delivery"`
	Menu      []string        `json:"menu"`
	ImageURL  *string         `json:"image_url,omitempty"` // Public path under /uploads
	OwnerID   int             `json:"owner_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateMessInput holds the validated form fields of a new listing
type CreateMessInput struct {
	Name     string
	Area     string
	Price    decimal.Decimal
	Delivery bool
	Menu     []string
}

// UpdateMessInput holds a partial listing update; nil fields keep the stored value
type UpdateMessInput struct {
	Name     *string
	Area     *string
	Price    *decimal.Decimal
	Delivery *bool
	Menu     []string // nil keeps the stored menu
	ImageURL *string  // nil keeps the stored image
}

// MessFilters contains the optional public listing filters
type MessFilters struct {
	Area     *string
	MaxPrice *decimal.Decimal
	Delivery *bool
}
