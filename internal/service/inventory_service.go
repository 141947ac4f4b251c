package service

import (
	"context"
	"errors"
	"fmt"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/repository"

	"go.uber.org/zap"
)

// InventoryService adjusts product stock
type InventoryService interface {
	Adjust(ctx context.Context, code string, qtySold int) (domain.Adjustment, error)
	Restock(ctx context.Context, code string, qty int) (*domain.StockChange, error)
}

type inventoryService struct {
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

// NewInventoryService creates a new instance of InventoryService
func NewInventoryService(productRepo repository.ProductRepository, logger *zap.Logger) InventoryService {
	return &inventoryService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Adjust decrements stock for a sold line. Unknown codes are reported as
// AdjustmentNotFound without error; only store failures return an error.
func (s *inventoryService) Adjust(ctx context.Context, code string, qtySold int) (domain.Adjustment, error) {
	adjustment := domain.Adjustment{Code: code, Sold: qtySold}

	if qtySold <= 0 {
		adjustment.Status = domain.AdjustmentSkipped
		return adjustment, nil
	}

	change, err := s.productRepo.DecrementStock(ctx, code, qtySold)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			adjustment.Status = domain.AdjustmentNotFound
			return adjustment, nil
		}
		return adjustment, fmt.Errorf("failed to adjust stock for %s: %w", code, err)
	}

	adjustment.Status = domain.AdjustmentApplied
	adjustment.Name = change.Name
	adjustment.OldStock = change.OldStock
	adjustment.NewStock = change.NewStock
	adjustment.LowStock = change.OldStock < qtySold

	if adjustment.LowStock {
		s.logger.Warn("Sold more than on hand",
			zap.String("code", code),
			zap.Int("on_hand", change.OldStock),
			zap.Int("sold", qtySold),
		)
	}

	return adjustment, nil
}

// Restock adds qty units to a product
func (s *inventoryService) Restock(ctx context.Context, code string, qty int) (*domain.StockChange, error) {
	if qty <= 0 {
		return nil, domain.NewValidationError("qty", "must be greater than zero")
	}

	change, err := s.productRepo.IncrementStock(ctx, code, qty)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to restock %s: %w", code, err)
	}

	return change, nil
}
