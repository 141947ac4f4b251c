package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tookjai-pos/internal/domain"
)

// MemberRepository defines the interface for member data access
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	FindByPhone(ctx context.Context, phone string) (*domain.Member, error)
	AddPoints(ctx context.Context, phone string, delta int64) (int64, error)
	SetPoints(ctx context.Context, phone string, points int64) error
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create inserts a new member. A registered phone is a conflict.
func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (phone, name, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, member.Phone, member.Name, member.Points, member.CreatedAt, member.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMemberAlreadyExists
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	return nil
}

// FindByPhone retrieves a member by phone number
func (r *memberRepository) FindByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	query := `
		SELECT phone, name, points, created_at, updated_at
		FROM members
		WHERE phone = $1
	`

	member := &domain.Member{}
	err := r.db.QueryRowContext(ctx, query, phone).Scan(
		&member.Phone,
		&member.Name,
		&member.Points,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member by phone: %w", err)
	}

	return member, nil
}

// AddPoints applies delta to the balance with a relative update and returns
// the new balance. Concurrent orders for one member compose without a
// read-modify-write race.
func (r *memberRepository) AddPoints(ctx context.Context, phone string, delta int64) (int64, error) {
	query := `
		UPDATE members
		SET points = points + $2, updated_at = NOW()
		WHERE phone = $1
		RETURNING points
	`

	var balance int64
	err := r.db.QueryRowContext(ctx, query, phone, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMemberNotFound
		}
		return 0, fmt.Errorf("failed to add member points: %w", err)
	}

	return balance, nil
}

// SetPoints overwrites the balance; used for manual corrections only
func (r *memberRepository) SetPoints(ctx context.Context, phone string, points int64) error {
	query := `UPDATE members SET points = $2, updated_at = NOW() WHERE phone = $1`

	result, err := r.db.ExecContext(ctx, query, phone, points)
	if err != nil {
		return fmt.Errorf("failed to set member points: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}
