package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tookjai-pos/internal/domain"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	DecrementStock(ctx context.Context, barcode string, qty int) (*domain.StockChange, error)
	IncrementStock(ctx context.Context, barcode string, qty int) (*domain.StockChange, error)
	ClearBarcode(ctx context.Context, barcode string) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, barcode, name, type_id, cost, price, profit_percent, stock,
	supplier, date_received, image_base64, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product       domain.Product
		barcode       sql.NullString
		typeID        uuid.NullUUID
		profitPercent sql.NullFloat64
		dateReceived  sql.NullTime
	)

	err := row.Scan(
		&product.ID,
		&barcode,
		&product.Name,
		&typeID,
		&product.Cost,
		&product.Price,
		&profitPercent,
		&product.Stock,
		&product.Supplier,
		&dateReceived,
		&product.ImageBase64,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	product.Barcode = barcode.String
	if typeID.Valid {
		id := typeID.UUID
		product.TypeID = &id
	}
	if profitPercent.Valid {
		p := profitPercent.Float64
		product.ProfitPercent = &p
	}
	if dateReceived.Valid {
		d := dateReceived.Time
		product.DateReceived = &d
	}

	return &product, nil
}

// Create inserts a new product. A taken barcode is a conflict, never an upsert.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, barcode, name, type_id, cost, price, profit_percent, stock,
			supplier, date_received, image_base64, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		nullString(product.Barcode),
		product.Name,
		nullUUID(product.TypeID),
		product.Cost,
		product.Price,
		product.ProfitPercent,
		product.Stock,
		product.Supplier,
		product.DateReceived,
		product.ImageBase64,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductAlreadyExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByBarcode retrieves a product by its barcode
func (r *productRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE barcode = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by barcode: %w", err)
	}

	return product, nil
}

// List retrieves products matching the filter, newest first
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	var (
		conditions []string
		args       []interface{}
	)

	addCondition := func(format string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if name := strings.TrimSpace(filter.Name); name != "" {
		addCondition("name ILIKE $%d", "%"+name+"%")
	}
	if filter.TypeID != nil {
		addCondition("type_id = $%d", *filter.TypeID)
	}
	if supplier := strings.TrimSpace(filter.Supplier); supplier != "" {
		addCondition("supplier ILIKE $%d", "%"+supplier+"%")
	}
	if filter.StartDate != nil {
		addCondition("date_received >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("date_received <= $%d", *filter.EndDate)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC`, productColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// DecrementStock subtracts qty from the product's stock in one statement,
// clamping at zero. The row lock taken by the CTE serializes concurrent
// sales of the same product, so two tills cannot both sell the last unit
// against the same stale value.
func (r *productRepository) DecrementStock(ctx context.Context, barcode string, qty int) (*domain.StockChange, error) {
	query := `
		WITH current AS (
			SELECT id, stock FROM products WHERE barcode = $1 FOR UPDATE
		)
		UPDATE products p
		SET stock = GREATEST(p.stock - $2, 0), updated_at = NOW()
		FROM current
		WHERE p.id = current.id
		RETURNING p.name, current.stock, p.stock
	`

	change := &domain.StockChange{Barcode: barcode}
	err := r.db.QueryRowContext(ctx, query, barcode, qty).Scan(&change.Name, &change.OldStock, &change.NewStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	return change, nil
}

// IncrementStock adds qty to the product's stock atomically
func (r *productRepository) IncrementStock(ctx context.Context, barcode string, qty int) (*domain.StockChange, error) {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE barcode = $1
		RETURNING name, stock - $2, stock
	`

	change := &domain.StockChange{Barcode: barcode}
	err := r.db.QueryRowContext(ctx, query, barcode, qty).Scan(&change.Name, &change.OldStock, &change.NewStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to increment stock: %w", err)
	}

	return change, nil
}

// ClearBarcode detaches the barcode from its product so it can be reissued
func (r *productRepository) ClearBarcode(ctx context.Context, barcode string) error {
	query := `UPDATE products SET barcode = NULL, updated_at = $2 WHERE barcode = $1`

	result, err := r.db.ExecContext(ctx, query, barcode, time.Now())
	if err != nil {
		return fmt.Errorf("failed to clear barcode: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
