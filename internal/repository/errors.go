package repository

import (
	"errors"
	"fmt"

	"tookjai-pos/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound          = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrProductAlreadyExists     = fmt.Errorf("%w: product with this barcode already exists", domain.ErrConflict)
	ErrProductTypeNotFound      = fmt.Errorf("product type %w", domain.ErrNotFound)
	ErrProductTypeAlreadyExists = fmt.Errorf("%w: product type with this name already exists", domain.ErrConflict)
	ErrMemberNotFound           = fmt.Errorf("member %w", domain.ErrNotFound)
	ErrMemberAlreadyExists      = fmt.Errorf("%w: member with this phone already exists", domain.ErrConflict)
	ErrOrderNotFound            = fmt.Errorf("order %w", domain.ErrNotFound)
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
