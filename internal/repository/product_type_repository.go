package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tookjai-pos/internal/domain"

	"github.com/google/uuid"
)

// ProductTypeRepository defines the interface for product type data access
type ProductTypeRepository interface {
	Create(ctx context.Context, productType *domain.ProductType) error
	List(ctx context.Context) ([]*domain.ProductType, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductType, error)
}

type productTypeRepository struct {
	db *sql.DB
}

// NewProductTypeRepository creates a new instance of ProductTypeRepository
func NewProductTypeRepository(db *sql.DB) ProductTypeRepository {
	return &productTypeRepository{db: db}
}

// Create inserts a new product type. Names are unique regardless of case.
func (r *productTypeRepository) Create(ctx context.Context, productType *domain.ProductType) error {
	query := `
		INSERT INTO product_types (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, productType.ID, productType.Name, productType.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductTypeAlreadyExists
		}
		return fmt.Errorf("failed to create product type: %w", err)
	}

	return nil
}

// List retrieves all product types ordered by name
func (r *productTypeRepository) List(ctx context.Context) ([]*domain.ProductType, error) {
	query := `
		SELECT id, name, created_at
		FROM product_types
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list product types: %w", err)
	}
	defer rows.Close()

	productTypes := []*domain.ProductType{}
	for rows.Next() {
		productType := &domain.ProductType{}
		if err := rows.Scan(&productType.ID, &productType.Name, &productType.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product type: %w", err)
		}
		productTypes = append(productTypes, productType)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product types: %w", err)
	}

	return productTypes, nil
}

// FindByID retrieves a product type by ID
func (r *productTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductType, error) {
	query := `
		SELECT id, name, created_at
		FROM product_types
		WHERE id = $1
	`

	productType := &domain.ProductType{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&productType.ID, &productType.Name, &productType.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductTypeNotFound
		}
		return nil, fmt.Errorf("failed to find product type by ID: %w", err)
	}

	return productType, nil
}
