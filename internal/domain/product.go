package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item identified by its barcode
type Product struct {
	ID            uuid.UUID       `json:"id"`
	Barcode       string          `json:"barcode"`
	Name          string          `json:"name"`
	TypeID        *uuid.UUID      `json:"type_id,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	Price         decimal.Decimal `json:"price"`
	ProfitPercent *float64        `json:"profit_percent,omitempty"`
	Stock         int             `json:"stock"`
	Supplier      string          `json:"supplier"`
	DateReceived  *time.Time      `json:"date_received,omitempty"`
	ImageBase64   string          `json:"image_base64,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductType represents a product category
type ProductType struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductFilter narrows a product listing. Zero values are ignored.
type ProductFilter struct {
	Name      string
	TypeID    *uuid.UUID
	Supplier  string
	StartDate *time.Time
	EndDate   *time.Time
}

// StockChange is the outcome of an atomic stock update
type StockChange struct {
	Barcode  string
	Name     string
	OldStock int
	NewStock int
}
