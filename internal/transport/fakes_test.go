package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/repository"
	"tookjai-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeGoodsService struct {
	mu         sync.Mutex
	products   map[string]*domain.Product
	types      []*domain.ProductType
	lastInput  service.CreateProductInput
	lastFilter domain.ProductFilter
	labels     []string
}

func newFakeGoodsService() *fakeGoodsService {
	return &fakeGoodsService{products: make(map[string]*domain.Product)}
}

func (f *fakeGoodsService) Create(ctx context.Context, input service.CreateProductInput) (*domain.Product, domain.PrintStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastInput = input
	if _, ok := f.products[input.Barcode]; ok {
		return nil, domain.PrintStatus{}, repository.ErrProductAlreadyExists
	}
	product := &domain.Product{ID: uuid.New(), Barcode: input.Barcode, Name: input.Name, Price: input.Price, Stock: input.Stock}
	f.products[input.Barcode] = product
	return product, domain.PrintStatus{Printed: true}, nil
}

func (f *fakeGoodsService) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[code]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeGoodsService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	var out []*domain.Product
	for _, p := range f.products {
		if filter.Name == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeGoodsService) Restock(ctx context.Context, code string, qty int) (*domain.StockChange, domain.PrintStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[code]
	if !ok {
		return nil, domain.PrintStatus{}, repository.ErrProductNotFound
	}
	old := product.Stock
	product.Stock += qty
	return &domain.StockChange{Barcode: code, Name: product.Name, OldStock: old, NewStock: product.Stock},
		domain.PrintStatus{Error: "printer offline"}, nil
}

func (f *fakeGoodsService) ClearBarcode(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[code]; !ok {
		return repository.ErrProductNotFound
	}
	delete(f.products, code)
	return nil
}

func (f *fakeGoodsService) PrintLabel(ctx context.Context, code string) (domain.PrintStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[code]; !ok {
		return domain.PrintStatus{}, repository.ErrProductNotFound
	}
	f.labels = append(f.labels, code)
	return domain.PrintStatus{Printed: true}, nil
}

func (f *fakeGoodsService) PrintLabels(ctx context.Context, codes []string) []service.LabelResult {
	results := make([]service.LabelResult, 0, len(codes))
	for _, code := range codes {
		status, err := f.PrintLabel(ctx, code)
		result := service.LabelResult{Code: code, Status: status}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (f *fakeGoodsService) ListTypes(ctx context.Context) ([]*domain.ProductType, error) {
	return f.types, nil
}

func (f *fakeGoodsService) CreateType(ctx context.Context, name string) (*domain.ProductType, error) {
	productType := &domain.ProductType{ID: uuid.New(), Name: name}
	f.types = append(f.types, productType)
	return productType, nil
}

type fakeMemberService struct {
	members map[string]*domain.Member
}

func newFakeMemberService() *fakeMemberService {
	return &fakeMemberService{members: make(map[string]*domain.Member)}
}

func (f *fakeMemberService) Get(ctx context.Context, phone string) (*domain.Member, error) {
	member, ok := f.members[phone]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	return member, nil
}

func (f *fakeMemberService) Create(ctx context.Context, phone, name string, points int64) (*domain.Member, error) {
	if _, ok := f.members[phone]; ok {
		return nil, repository.ErrMemberAlreadyExists
	}
	member := &domain.Member{Phone: phone, Name: name, Points: points}
	f.members[phone] = member
	return member, nil
}

func (f *fakeMemberService) SetPoints(ctx context.Context, phone string, points int64) (*domain.Member, error) {
	member, ok := f.members[phone]
	if !ok {
		return nil, repository.ErrMemberNotFound
	}
	member.Points = points
	return member, nil
}

type fakeSettlementService struct {
	lastRequest service.SettleRequest
	lastFrom    *time.Time
	lastTo      *time.Time
	orders      map[string]*domain.Order
	settleErr   error
	reprinted   []string
}

func newFakeSettlementService() *fakeSettlementService {
	return &fakeSettlementService{orders: make(map[string]*domain.Order)}
}

func (f *fakeSettlementService) Settle(ctx context.Context, req service.SettleRequest) (*domain.SettlementResult, error) {
	f.lastRequest = req
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	order := &domain.Order{ID: uuid.NewString(), Items: req.Items, PaymentType: req.PaymentType, Total: req.Total}
	f.orders[order.ID] = order
	result := &domain.SettlementResult{Order: order, State: domain.StateCompleted, Warnings: []domain.Warning{}}
	if len(req.Items) > 0 && req.Items[0].Code == "MISSING" {
		result.AddWarning(domain.WarningNotFound, "MISSING", "product not found")
		result.State = domain.StateCompletedWithWarnings
	}
	return result, nil
}

func (f *fakeSettlementService) Reprint(ctx context.Context, id string) (*domain.Order, domain.PrintStatus, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, domain.PrintStatus{}, repository.ErrOrderNotFound
	}
	f.reprinted = append(f.reprinted, id)
	return order, domain.PrintStatus{Printed: true}, nil
}

func (f *fakeSettlementService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeSettlementService) ListOrders(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	f.lastFrom, f.lastTo = from, to
	out := make([]*domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeSettlementService) SalesReport(ctx context.Context, from, to *time.Time) (*domain.SalesReport, error) {
	f.lastFrom, f.lastTo = from, to
	return &domain.SalesReport{From: from, To: to, OrderCount: len(f.orders), TotalSales: decimal.NewFromInt(100)}, nil
}

// countingLimiter rejects every request after the first allowed ones
func countingLimiter(allowed int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	seen := 0
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			seen++
			over := seen > allowed
			mu.Unlock()
			if over {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func serve(router chi.Router, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
