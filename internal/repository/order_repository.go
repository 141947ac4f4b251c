package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tookjai-pos/internal/domain"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order data access.
// Orders are append-only: there is no update or delete.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, from, to *time.Time) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its line items in one transaction and sets
// order.ID to the identifier assigned by the database.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		memberPhone  sql.NullString
		memberName   sql.NullString
		memberPoints sql.NullInt64
	)
	if order.Member != nil {
		memberPhone = sql.NullString{String: order.Member.Phone, Valid: true}
		memberName = sql.NullString{String: order.Member.Name, Valid: true}
		memberPoints = sql.NullInt64{Int64: order.Member.Points, Valid: true}
	}

	query := `
		INSERT INTO orders (member_phone, member_name, member_points, payment_type, cash, total,
			change, redeem_points, redeem_value, earned_points, sold_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id uuid.UUID
	err = tx.QueryRowContext(
		ctx,
		query,
		memberPhone,
		memberName,
		memberPoints,
		string(order.PaymentType),
		order.Cash,
		order.Total,
		order.Change,
		order.RedeemPoints,
		order.RedeemValue,
		order.EarnedPoints,
		order.Date,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, code, name, qty, price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, item := range order.Items {
		_, err := tx.ExecContext(ctx, itemQuery, id, i, item.Code, item.Name, item.Qty, item.Price, item.Total)
		if err != nil {
			return fmt.Errorf("failed to create order item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	order.ID = id.String()
	return nil
}

const orderSelect = `
	SELECT o.id, o.member_phone, o.member_name, o.member_points, o.payment_type, o.cash, o.total,
		o.change, o.redeem_points, o.redeem_value, o.earned_points, o.sold_at,
		i.code, i.name, i.qty, i.price, i.total
	FROM orders o
	JOIN order_items i ON i.order_id = o.id
`

// FindByID retrieves an order with its line items
func (r *orderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	rows, err := r.db.QueryContext(ctx, orderSelect+` WHERE o.id = $1 ORDER BY i.position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}

	return orders[0], nil
}

// List retrieves orders sold within [from, to], newest first. Nil bounds are open.
func (r *orderRepository) List(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	query := orderSelect + `
		WHERE ($1::timestamptz IS NULL OR o.sold_at >= $1)
		  AND ($2::timestamptz IS NULL OR o.sold_at <= $2)
		ORDER BY o.sold_at DESC, o.id, i.position
	`

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// scanOrders folds joined order/item rows back into orders, preserving row order
func scanOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	var current *domain.Order

	for rows.Next() {
		var (
			id           uuid.UUID
			memberPhone  sql.NullString
			memberName   sql.NullString
			memberPoints sql.NullInt64
			paymentType  string
			order        domain.Order
			item         domain.LineItem
		)

		err := rows.Scan(
			&id,
			&memberPhone,
			&memberName,
			&memberPoints,
			&paymentType,
			&order.Cash,
			&order.Total,
			&order.Change,
			&order.RedeemPoints,
			&order.RedeemValue,
			&order.EarnedPoints,
			&order.Date,
			&item.Code,
			&item.Name,
			&item.Qty,
			&item.Price,
			&item.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		if current == nil || current.ID != id.String() {
			order.ID = id.String()
			order.PaymentType = domain.PaymentType(paymentType)
			if memberPhone.Valid {
				order.Member = &domain.MemberSnapshot{
					Phone:  memberPhone.String,
					Name:   memberName.String,
					Points: memberPoints.Int64,
				}
			}
			current = &order
			orders = append(orders, current)
		}

		current.Items = append(current.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
