package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/render"
	"tookjai-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GeneratedBarcodePrefix starts every barcode issued by the shop
const GeneratedBarcodePrefix = "TJ"

// maxBarcodeSuffix bounds the "-N" suffixes tried when a generated barcode
// collides with a product created in the same second
const maxBarcodeSuffix = 9

// CreateProductInput holds the fields accepted when registering a product
type CreateProductInput struct {
	Barcode       string
	Name          string
	TypeID        *uuid.UUID
	Cost          decimal.Decimal
	Price         decimal.Decimal
	ProfitPercent *float64
	Stock         int
	Supplier      string
	DateReceived  *time.Time
	ImageBase64   string
}

// LabelResult is the outcome of printing one label in a batch
type LabelResult struct {
	Code   string             `json:"code"`
	Status domain.PrintStatus `json:"status"`
	Error  string             `json:"error,omitempty"`
}

// GoodsService manages products, product types and their labels
type GoodsService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, domain.PrintStatus, error)
	GetByBarcode(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Restock(ctx context.Context, code string, qty int) (*domain.StockChange, domain.PrintStatus, error)
	ClearBarcode(ctx context.Context, code string) error
	PrintLabel(ctx context.Context, code string) (domain.PrintStatus, error)
	PrintLabels(ctx context.Context, codes []string) []LabelResult
	ListTypes(ctx context.Context) ([]*domain.ProductType, error)
	CreateType(ctx context.Context, name string) (*domain.ProductType, error)
}

type goodsService struct {
	productRepo repository.ProductRepository
	typeRepo    repository.ProductTypeRepository
	inventory   InventoryService
	renderer    DocumentRenderer
	spooler     PrintSpooler
	logger      *zap.Logger
	now         func() time.Time
}

// NewGoodsService creates a new instance of GoodsService
func NewGoodsService(
	productRepo repository.ProductRepository,
	typeRepo repository.ProductTypeRepository,
	inventory InventoryService,
	renderer DocumentRenderer,
	spooler PrintSpooler,
	logger *zap.Logger,
) GoodsService {
	return &goodsService{
		productRepo: productRepo,
		typeRepo:    typeRepo,
		inventory:   inventory,
		renderer:    renderer,
		spooler:     spooler,
		logger:      logger,
		now:         time.Now,
	}
}

// GenerateBarcode returns the shop barcode for a product created at t
func GenerateBarcode(t time.Time) string {
	return GeneratedBarcodePrefix + t.Format("060102150405")
}

// PriceFromProfit returns cost marked up by profitPercent, rounded to satang
func PriceFromProfit(cost decimal.Decimal, profitPercent float64) decimal.Decimal {
	markup := decimal.NewFromFloat(profitPercent).Div(decimal.NewFromInt(100))
	return cost.Mul(decimal.NewFromInt(1).Add(markup)).Round(2)
}

// Create registers a product and prints its label. A label that fails to
// print does not undo the product.
func (s *goodsService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, domain.PrintStatus, error) {
	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		return nil, domain.PrintStatus{}, domain.NewValidationError("name", "is required")
	case input.Stock < 0:
		return nil, domain.PrintStatus{}, domain.NewValidationError("stock", "must not be negative")
	case input.Cost.IsNegative() || input.Price.IsNegative():
		return nil, domain.PrintStatus{}, domain.NewValidationError("price", "must not be negative")
	}

	now := s.now()
	product := &domain.Product{
		ID:            uuid.New(),
		Barcode:       strings.TrimSpace(input.Barcode),
		Name:          name,
		TypeID:        input.TypeID,
		Cost:          input.Cost,
		Price:         input.Price,
		ProfitPercent: input.ProfitPercent,
		Stock:         input.Stock,
		Supplier:      strings.TrimSpace(input.Supplier),
		DateReceived:  input.DateReceived,
		ImageBase64:   input.ImageBase64,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	generated := product.Barcode == ""
	if generated {
		product.Barcode = GenerateBarcode(now)
	}
	if product.Price.IsZero() && product.ProfitPercent != nil {
		product.Price = PriceFromProfit(product.Cost, *product.ProfitPercent)
	}

	typeName, err := s.typeName(ctx, product.TypeID)
	if err != nil {
		return nil, domain.PrintStatus{}, err
	}

	if err := s.insert(ctx, product, generated); err != nil {
		return nil, domain.PrintStatus{}, err
	}

	s.logger.Info("Product created", zap.String("barcode", product.Barcode), zap.String("name", product.Name))

	status, _ := s.printLabel(ctx, product, typeName)
	return product, status, nil
}

// insert stores the product. A generated barcode that is already taken is
// retried as TJ...-2, TJ...-3 and so on.
func (s *goodsService) insert(ctx context.Context, product *domain.Product, generated bool) error {
	base := product.Barcode
	for suffix := 2; ; suffix++ {
		err := s.productRepo.Create(ctx, product)
		if err == nil || !generated || suffix > maxBarcodeSuffix || !errors.Is(err, repository.ErrProductAlreadyExists) {
			return err
		}
		product.Barcode = fmt.Sprintf("%s-%d", base, suffix)
		s.logger.Debug("Generated barcode taken, retrying", zap.String("barcode", base), zap.String("next", product.Barcode))
	}
}

// typeName resolves the display name of a product type; a dangling
// reference is a validation error
func (s *goodsService) typeName(ctx context.Context, typeID *uuid.UUID) (string, error) {
	if typeID == nil {
		return "", nil
	}

	productType, err := s.typeRepo.FindByID(ctx, *typeID)
	if err != nil {
		if errors.Is(err, repository.ErrProductTypeNotFound) {
			return "", domain.NewValidationError("type_id", "unknown product type")
		}
		return "", fmt.Errorf("failed to resolve product type: %w", err)
	}

	return productType.Name, nil
}

func (s *goodsService) printLabel(ctx context.Context, product *domain.Product, typeName string) (domain.PrintStatus, error) {
	label := render.Label{
		Barcode:  product.Barcode,
		Name:     product.Name,
		TypeName: typeName,
		Price:    product.Price,
	}

	status, err := printDocument(ctx, s.renderer, s.spooler, label, product.Barcode)
	if err != nil {
		s.logger.Warn("Label not printed", zap.String("barcode", product.Barcode), zap.Error(err))
	}
	return status, err
}

// GetByBarcode retrieves a product by barcode
func (s *goodsService) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	return s.productRepo.FindByBarcode(ctx, code)
}

// List retrieves products matching the filter
func (s *goodsService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, domain.NewValidationError("endDate", "must not be before startDate")
	}
	return s.productRepo.List(ctx, filter)
}

// Restock adds stock and prints a fresh label for the product
func (s *goodsService) Restock(ctx context.Context, code string, qty int) (*domain.StockChange, domain.PrintStatus, error) {
	change, err := s.inventory.Restock(ctx, code, qty)
	if err != nil {
		return nil, domain.PrintStatus{}, err
	}

	s.logger.Info("Product restocked",
		zap.String("barcode", code),
		zap.Int("old_stock", change.OldStock),
		zap.Int("new_stock", change.NewStock),
	)

	status, _ := s.PrintLabel(ctx, code)
	return change, status, nil
}

// ClearBarcode detaches a barcode from its product
func (s *goodsService) ClearBarcode(ctx context.Context, code string) error {
	return s.productRepo.ClearBarcode(ctx, code)
}

// PrintLabel prints the label of one product. Missing products are errors;
// print failures are only reported in the status.
func (s *goodsService) PrintLabel(ctx context.Context, code string) (domain.PrintStatus, error) {
	product, err := s.productRepo.FindByBarcode(ctx, code)
	if err != nil {
		return domain.PrintStatus{}, err
	}

	typeName, err := s.typeName(ctx, product.TypeID)
	if err != nil {
		s.logger.Warn("Printing label without type", zap.String("barcode", code), zap.Error(err))
	}

	status, _ := s.printLabel(ctx, product, typeName)
	return status, nil
}

// PrintLabels prints a label per code, reporting each outcome separately
func (s *goodsService) PrintLabels(ctx context.Context, codes []string) []LabelResult {
	results := make([]LabelResult, 0, len(codes))
	for _, code := range codes {
		status, err := s.PrintLabel(ctx, code)
		result := LabelResult{Code: code, Status: status}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

// ListTypes retrieves all product types
func (s *goodsService) ListTypes(ctx context.Context) ([]*domain.ProductType, error) {
	return s.typeRepo.List(ctx)
}

// CreateType registers a product type
func (s *goodsService) CreateType(ctx context.Context, name string) (*domain.ProductType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	productType := &domain.ProductType{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.typeRepo.Create(ctx, productType); err != nil {
		return nil, err
	}

	return productType, nil
}
