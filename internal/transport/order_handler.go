package transport

import (
	"net/http"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/middleware"
	"tookjai-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderMemberRequest identifies the purchasing member. Phone "-" marks a
// walk-in customer.
type OrderMemberRequest struct {
	Phone  string `json:"phone" validate:"omitempty,phone|eq=-"`
	Name   string `json:"name" validate:"max=200"`
	Points *int64 `json:"points"`
}

// OrderItemRequest is one submitted line item
type OrderItemRequest struct {
	Code  string          `json:"code" validate:"required,max=64"`
	Name  string          `json:"name" validate:"max=200"`
	Qty   int             `json:"qty" validate:"required,gt=0"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
	Total decimal.Decimal `json:"total" validate:"gte=0"`
}

// SettleOrderRequest represents a submitted sale
type SettleOrderRequest struct {
	Member       *OrderMemberRequest `json:"member"`
	Items        []OrderItemRequest  `json:"items" validate:"required,min=1,dive"`
	PaymentType  string              `json:"payment_type" validate:"required,oneof=cash transfer"`
	Cash         decimal.Decimal     `json:"cash" validate:"gte=0"`
	Total        decimal.Decimal     `json:"total" validate:"gte=0"`
	Change       decimal.Decimal     `json:"change"`
	RedeemPoints int64               `json:"redeem_points" validate:"gte=0"`
	EarnedPoints *int64              `json:"earned_points" validate:"omitempty,gte=0"`
	Date         *time.Time          `json:"date"`
}

func (req SettleOrderRequest) toService() service.SettleRequest {
	out := service.SettleRequest{
		Items:        make([]domain.LineItem, 0, len(req.Items)),
		PaymentType:  domain.PaymentType(req.PaymentType),
		Cash:         req.Cash,
		Total:        req.Total,
		Change:       req.Change,
		RedeemPoints: req.RedeemPoints,
		EarnedPoints: req.EarnedPoints,
		Date:         req.Date,
	}
	if req.Member != nil {
		out.MemberPhone = req.Member.Phone
		out.MemberName = req.Member.Name
		out.MemberPoints = req.Member.Points
	}
	for _, item := range req.Items {
		out.Items = append(out.Items, domain.LineItem{
			Code:  item.Code,
			Name:  item.Name,
			Qty:   item.Qty,
			Price: item.Price,
			Total: item.Total,
		})
	}
	return out
}

// ReprintResponse is returned after a receipt reprint
type ReprintResponse struct {
	Order *domain.Order      `json:"order"`
	Print domain.PrintStatus `json:"print"`
}

// OrderHandler handles HTTP requests for orders and sales reports
type OrderHandler struct {
	settlement   service.SettlementService
	printLimiter func(http.Handler) http.Handler
	location     *time.Location
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler. printLimiter guards the reprint
// route and may be nil.
func NewOrderHandler(settlement service.SettlementService, printLimiter func(http.Handler) http.Handler, loc *time.Location, logger *zap.Logger) *OrderHandler {
	if printLimiter == nil {
		printLimiter = passthrough
	}
	if loc == nil {
		loc = time.Local
	}
	return &OrderHandler{
		settlement:   settlement,
		printLimiter: printLimiter,
		location:     loc,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.Settle)
		r.Get("/", h.List)
		r.Get("/report", h.Report)
		r.Get("/{id}", h.Get)
		r.With(h.printLimiter).Post("/{id}/reprint", h.Reprint)
	})
}

// Settle handles order submission. Any order that was persisted answers 201
// with its warnings; only a failure to persist is an error response.
func (h *OrderHandler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	result, err := h.settlement.Settle(r.Context(), req.toService())
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, result)
}

// List handles order listing, newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r, "from", "to", h.location)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	orders, err := h.settlement.ListOrders(r.Context(), from, to)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Report handles the sales report over an optional date range
func (h *OrderHandler) Report(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r, "from", "to", h.location)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	report, err := h.settlement.SalesReport(r.Context(), from, to)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, report)
}

// Get handles order lookup by id
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.settlement.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Reprint handles re-rendering and printing a stored receipt
func (h *OrderHandler) Reprint(w http.ResponseWriter, r *http.Request) {
	order, status, err := h.settlement.Reprint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ReprintResponse{Order: order, Print: status})
}
