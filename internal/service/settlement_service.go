package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/render"
	"tookjai-pos/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const bestSellerLimit = 10

// SettleRequest is a submitted order before it is persisted
type SettleRequest struct {
	MemberPhone  string
	MemberName   string
	MemberPoints *int64
	Items        []domain.LineItem
	PaymentType  domain.PaymentType
	Cash         decimal.Decimal
	Total        decimal.Decimal
	Change       decimal.Decimal
	RedeemPoints int64
	EarnedPoints *int64
	Date         *time.Time
}

// SettlementOptions configures how orders are priced and printed
type SettlementOptions struct {
	Shop              render.Shop
	PointValue        decimal.Decimal
	TrustClientTotals bool
	Location          *time.Location
}

// SettlementService records sales and produces their paper record
type SettlementService interface {
	Settle(ctx context.Context, req SettleRequest) (*domain.SettlementResult, error)
	Reprint(ctx context.Context, id string) (*domain.Order, domain.PrintStatus, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, from, to *time.Time) ([]*domain.Order, error)
	SalesReport(ctx context.Context, from, to *time.Time) (*domain.SalesReport, error)
}

type settlementService struct {
	orderRepo  repository.OrderRepository
	memberRepo repository.MemberRepository
	inventory  InventoryService
	ledger     LoyaltyLedger
	renderer   DocumentRenderer
	spooler    PrintSpooler
	opts       SettlementOptions
	logger     *zap.Logger
	now        func() time.Time
}

// NewSettlementService creates a new instance of SettlementService
func NewSettlementService(
	orderRepo repository.OrderRepository,
	memberRepo repository.MemberRepository,
	inventory InventoryService,
	ledger LoyaltyLedger,
	renderer DocumentRenderer,
	spooler PrintSpooler,
	opts SettlementOptions,
	logger *zap.Logger,
) SettlementService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &settlementService{
		orderRepo:  orderRepo,
		memberRepo: memberRepo,
		inventory:  inventory,
		ledger:     ledger,
		renderer:   renderer,
		spooler:    spooler,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

func validateSettleRequest(req SettleRequest) error {
	if len(req.Items) == 0 {
		return domain.NewValidationError("items", "order must contain at least one item")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Code) == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].code", i), "is required")
		}
		if item.Qty <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].qty", i), "must be greater than zero")
		}
		if item.Price.IsNegative() || item.Total.IsNegative() {
			return domain.NewValidationError(fmt.Sprintf("items[%d]", i), "amounts must not be negative")
		}
	}
	if !req.PaymentType.Valid() {
		return domain.NewValidationError("payment_type", "must be cash or transfer")
	}
	if req.Cash.IsNegative() || req.Total.IsNegative() {
		return domain.NewValidationError("total", "amounts must not be negative")
	}
	if req.RedeemPoints < 0 {
		return domain.NewValidationError("redeem_points", "must not be negative")
	}
	return nil
}

// buildOrder turns a request into the order that will be stored. When client
// totals are not trusted, line totals, total and change are recomputed.
func (s *settlementService) buildOrder(req SettleRequest) *domain.Order {
	order := &domain.Order{
		Items:        append([]domain.LineItem(nil), req.Items...),
		PaymentType:  req.PaymentType,
		Cash:         req.Cash,
		Total:        req.Total,
		Change:       req.Change,
		RedeemPoints: req.RedeemPoints,
		RedeemValue:  s.opts.PointValue.Mul(decimal.NewFromInt(req.RedeemPoints)).Round(2),
		Date:         s.now(),
	}
	if req.Date != nil && !req.Date.IsZero() {
		order.Date = *req.Date
	}

	if !s.opts.TrustClientTotals {
		total := decimal.Zero
		for i := range order.Items {
			item := &order.Items[i]
			item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Qty)))
			total = total.Add(item.Total)
		}
		order.Total = total
		order.Change = decimal.Zero
		if order.PaymentType == domain.PaymentCash {
			order.Change = decimal.Max(order.Cash.Sub(order.NetTotal()), decimal.Zero)
		}
	}

	return order
}

// Settle persists the order, then reconciles inventory, the member ledger
// and the printed receipt. Only a failure to persist is returned as an
// error; everything after that is reported as warnings on the result.
func (s *settlementService) Settle(ctx context.Context, req SettleRequest) (*domain.SettlementResult, error) {
	if err := validateSettleRequest(req); err != nil {
		return nil, err
	}

	order := s.buildOrder(req)
	result := &domain.SettlementResult{
		Order:        order,
		State:        domain.StateReceived,
		StockUpdates: []domain.Adjustment{},
		Warnings:     []domain.Warning{},
	}

	memberFound := false
	if domain.HasMemberPhone(req.MemberPhone) {
		order.Member = &domain.MemberSnapshot{Phone: req.MemberPhone, Name: req.MemberName}
		if req.MemberPoints != nil {
			order.Member.Points = *req.MemberPoints
		}

		member, err := s.memberRepo.FindByPhone(ctx, req.MemberPhone)
		switch {
		case err == nil:
			memberFound = true
			order.Member.Points = member.Points
			if member.Name != "" {
				order.Member.Name = member.Name
			}
		case errors.Is(err, repository.ErrMemberNotFound):
			result.AddWarning(domain.WarningMemberNotFound, req.MemberPhone, "member is not registered, points not recorded")
		default:
			result.AddWarning(domain.WarningLedgerError, req.MemberPhone, err.Error())
		}
	}

	order.EarnedPoints = domain.EarnedPoints(order.NetTotal())
	if req.EarnedPoints != nil && s.opts.TrustClientTotals {
		order.EarnedPoints = *req.EarnedPoints
	}
	if !memberFound {
		order.EarnedPoints = 0
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}
	s.transition(result, domain.StatePersisted)

	// the sale is recorded; the remaining steps finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	for _, item := range order.Items {
		adjustment, err := s.inventory.Adjust(ctx, item.Code, item.Qty)
		if err != nil {
			result.AddWarning(domain.WarningStockError, item.Code, err.Error())
			continue
		}

		switch adjustment.Status {
		case domain.AdjustmentNotFound:
			result.AddWarning(domain.WarningNotFound, item.Code, "product not found, stock unchanged")
		case domain.AdjustmentApplied:
			if adjustment.LowStock {
				result.AddWarning(domain.WarningLowStock, item.Code,
					fmt.Sprintf("sold %d with only %d in stock", adjustment.Sold, adjustment.OldStock))
			}
		}
		result.StockUpdates = append(result.StockUpdates, adjustment)
	}
	s.transition(result, domain.StateInventoryReconciled)

	if memberFound {
		entry, err := s.ledger.Settle(ctx, order.Member.Phone, order.NetTotal(), order.RedeemPoints, &order.EarnedPoints)
		result.Ledger = entry
		if err != nil {
			kind := domain.WarningLedgerError
			if errors.Is(err, repository.ErrMemberNotFound) {
				kind = domain.WarningMemberNotFound
			}
			result.AddWarning(kind, order.Member.Phone, err.Error())
		}
	}
	s.transition(result, domain.StateLedgerUpdated)

	img, err := s.renderer.Render(s.receipt(order))
	if err != nil {
		result.Print = domain.PrintStatus{Error: err.Error()}
		result.AddWarning(domain.WarningPrintFailed, order.ID, "receipt could not be rendered: "+err.Error())
		return s.finish(result), nil
	}
	s.transition(result, domain.StateRendered)

	status, err := s.spooler.Print(ctx, receiptJob(order, img))
	result.Print = status
	if err != nil {
		message := "receipt not printed: " + err.Error()
		if status.Artifact != "" {
			message += " (saved as " + status.Artifact + ")"
		}
		result.AddWarning(domain.WarningPrintFailed, order.ID, message)
	}
	s.transition(result, domain.StateDelivered)

	return s.finish(result), nil
}

func (s *settlementService) receipt(order *domain.Order) render.Receipt {
	return render.Receipt{Shop: s.opts.Shop, Order: order}
}

func (s *settlementService) transition(result *domain.SettlementResult, state domain.SettlementState) {
	result.State = state
	s.logger.Debug("Settlement state changed",
		zap.String("order_id", result.Order.ID),
		zap.String("state", string(state)),
	)
}

func (s *settlementService) finish(result *domain.SettlementResult) *domain.SettlementResult {
	if len(result.Warnings) == 0 {
		s.transition(result, domain.StateCompleted)
		return result
	}

	s.transition(result, domain.StateCompletedWithWarnings)
	s.logger.Warn("Order settled with warnings",
		zap.String("order_id", result.Order.ID),
		zap.Strings("warnings", result.WarningMessages()),
	)
	return result
}

// Reprint renders and prints a stored order again. Inventory and points are
// not touched; a print failure is reported in the status only.
func (s *settlementService) Reprint(ctx context.Context, id string) (*domain.Order, domain.PrintStatus, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.PrintStatus{}, err
	}

	status, err := printDocument(ctx, s.renderer, s.spooler, s.receipt(order), order.ID)
	if err != nil {
		s.logger.Warn("Reprint not printed", zap.String("order_id", order.ID), zap.Error(err))
	}

	return order, status, nil
}

// GetOrder retrieves a stored order
func (s *settlementService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListOrders retrieves orders newest first
func (s *settlementService) ListOrders(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	orders, err := s.orderRepo.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// SalesReport aggregates net sales per day and the best selling products
func (s *settlementService) SalesReport(ctx context.Context, from, to *time.Time) (*domain.SalesReport, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, domain.NewValidationError("to", "must not be before from")
	}

	orders, err := s.ListOrders(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return buildSalesReport(orders, from, to, s.opts.Location), nil
}

func buildSalesReport(orders []*domain.Order, from, to *time.Time, loc *time.Location) *domain.SalesReport {
	report := &domain.SalesReport{
		From:        from,
		To:          to,
		OrderCount:  len(orders),
		TotalSales:  decimal.Zero,
		Daily:       []domain.DailySales{},
		BestSellers: []domain.BestSeller{},
	}

	daily := map[string]decimal.Decimal{}
	sellers := map[string]*domain.BestSeller{}

	for _, order := range orders {
		net := order.NetTotal()
		report.TotalSales = report.TotalSales.Add(net)

		day := order.Date.In(loc).Format("2006-01-02")
		daily[day] = daily[day].Add(net)

		for _, item := range order.Items {
			seller, ok := sellers[item.Code]
			if !ok {
				seller = &domain.BestSeller{Code: item.Code, Total: decimal.Zero}
				sellers[item.Code] = seller
			}
			if seller.Name == "" {
				seller.Name = item.Name
			}
			seller.Quantity += item.Qty
			seller.Total = seller.Total.Add(item.Total)
		}
	}

	for day, total := range daily {
		report.Daily = append(report.Daily, domain.DailySales{Date: day, Total: total})
	}
	sort.Slice(report.Daily, func(i, j int) bool {
		return report.Daily[i].Date < report.Daily[j].Date
	})

	for _, seller := range sellers {
		report.BestSellers = append(report.BestSellers, *seller)
	}
	sort.Slice(report.BestSellers, func(i, j int) bool {
		a, b := report.BestSellers[i], report.BestSellers[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Code < b.Code
	})
	if len(report.BestSellers) > bestSellerLimit {
		report.BestSellers = report.BestSellers[:bestSellerLimit]
	}

	return report
}
