package transport

import (
	"net/http"
	"strings"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/middleware"
	"tookjai-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product registration payload
type CreateProductRequest struct {
	Barcode       string          `json:"barcode" validate:"omitempty,max=64"`
	Name          string          `json:"name" validate:"required,max=200"`
	TypeID        *uuid.UUID      `json:"type_id"`
	Cost          decimal.Decimal `json:"cost" validate:"gte=0"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	ProfitPercent *float64        `json:"profit_percent" validate:"omitempty,gte=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	Supplier      string          `json:"supplier" validate:"max=200"`
	DateReceived  string          `json:"date_received" validate:"omitempty,datetime=2006-01-02"`
	ImageBase64   string          `json:"image_base64"`
}

// RestockRequest represents the restock payload
type RestockRequest struct {
	Qty int `json:"qty" validate:"required,gt=0"`
}

// PrintLabelsRequest represents a batch label print payload
type PrintLabelsRequest struct {
	Codes []string `json:"codes" validate:"required,min=1,max=100,dive,required"`
}

// CreateProductTypeRequest represents the product type payload
type CreateProductTypeRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ProductResponse is returned after a product is created
type ProductResponse struct {
	Product *domain.Product    `json:"product"`
	Label   domain.PrintStatus `json:"label"`
}

// RestockResponse is returned after stock is added
type RestockResponse struct {
	Barcode  string             `json:"barcode"`
	OldStock int                `json:"old_stock"`
	NewStock int                `json:"new_stock"`
	Label    domain.PrintStatus `json:"label"`
}

// GoodsHandler handles HTTP requests for goods and product types
type GoodsHandler struct {
	goods        service.GoodsService
	printLimiter func(http.Handler) http.Handler
	location     *time.Location
	logger       *zap.Logger
}

// NewGoodsHandler creates a new GoodsHandler. printLimiter guards the label
// print routes and may be nil.
func NewGoodsHandler(goods service.GoodsService, printLimiter func(http.Handler) http.Handler, loc *time.Location, logger *zap.Logger) *GoodsHandler {
	if printLimiter == nil {
		printLimiter = passthrough
	}
	if loc == nil {
		loc = time.Local
	}
	return &GoodsHandler{
		goods:        goods,
		printLimiter: printLimiter,
		location:     loc,
		logger:       logger,
	}
}

// RegisterRoutes registers all goods routes
func (h *GoodsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/goods", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/barcode/{code}", h.GetByBarcode)
		r.Put("/restock/{code}", h.Restock)
		r.Patch("/clear-barcode/{code}", h.ClearBarcode)
		r.Get("/types", h.ListTypes)
		r.Post("/types", h.CreateType)

		r.Group(func(r chi.Router) {
			r.Use(h.printLimiter)
			r.Post("/{code}/label", h.PrintLabel)
			r.Post("/print-labels", h.PrintLabels)
		})
	})
}

// List handles product listing with optional filters
func (h *GoodsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ProductFilter{
		Name:     strings.TrimSpace(query.Get("name")),
		Supplier: strings.TrimSpace(query.Get("supplier")),
	}

	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			middleware.RespondWithDomainError(w, r, domain.NewValidationError("type", "must be a valid id"), h.logger)
			return
		}
		filter.TypeID = &typeID
	}

	start, end, err := parseRange(r, "startDate", "endDate", h.location)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}
	filter.StartDate, filter.EndDate = start, end

	products, err := h.goods.List(r.Context(), filter)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles product registration
func (h *GoodsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	input := service.CreateProductInput{
		Barcode:       req.Barcode,
		Name:          req.Name,
		TypeID:        req.TypeID,
		Cost:          req.Cost,
		Price:         req.Price,
		ProfitPercent: req.ProfitPercent,
		Stock:         req.Stock,
		Supplier:      req.Supplier,
		ImageBase64:   req.ImageBase64,
	}
	if req.DateReceived != "" {
		received, err := time.ParseInLocation(dateLayout, req.DateReceived, h.location)
		if err != nil {
			middleware.RespondWithDomainError(w, r, domain.NewValidationError("date_received", "must be a date (YYYY-MM-DD)"), h.logger)
			return
		}
		input.DateReceived = &received
	}

	product, label, err := h.goods.Create(r.Context(), input)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, ProductResponse{Product: product, Label: label})
}

// GetByBarcode handles product lookup
func (h *GoodsHandler) GetByBarcode(w http.ResponseWriter, r *http.Request) {
	product, err := h.goods.GetByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Restock handles stock additions
func (h *GoodsHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	change, label, err := h.goods.Restock(r.Context(), chi.URLParam(r, "code"), req.Qty)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RestockResponse{
		Barcode:  change.Barcode,
		OldStock: change.OldStock,
		NewStock: change.NewStock,
		Label:    label,
	})
}

// ClearBarcode handles detaching a barcode from its product
func (h *GoodsHandler) ClearBarcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.goods.ClearBarcode(r.Context(), code); err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Barcode cleared", zap.String("barcode", code))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "barcode cleared"})
}

// PrintLabel handles a single label reprint
func (h *GoodsHandler) PrintLabel(w http.ResponseWriter, r *http.Request) {
	status, err := h.goods.PrintLabel(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, status)
}

// PrintLabels handles batch label printing
func (h *GoodsHandler) PrintLabels(w http.ResponseWriter, r *http.Request) {
	var req PrintLabelsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": h.goods.PrintLabels(r.Context(), req.Codes),
	})
}

// ListTypes handles product type listing
func (h *GoodsHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.goods.ListTypes(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, types)
}

// CreateType handles product type registration
func (h *GoodsHandler) CreateType(w http.ResponseWriter, r *http.Request) {
	var req CreateProductTypeRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	productType, err := h.goods.CreateType(r.Context(), req.Name)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, productType)
}
