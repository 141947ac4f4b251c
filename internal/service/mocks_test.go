package service

import (
	"context"
	"errors"
	"image"
	"sort"
	"sync"
	"time"

	"tookjai-pos/internal/domain"
	"tookjai-pos/internal/printer"
	"tookjai-pos/internal/render"
	"tookjai-pos/internal/repository"

	"github.com/google/uuid"
)

// Mock repositories for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	failWith error
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		m.products[p.Barcode] = p
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[product.Barcode]; exists {
		return repository.ErrProductAlreadyExists
	}
	m.products[product.Barcode] = product
	return nil
}

func (m *mockProductRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, exists := m.products[barcode]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Barcode < out[j].Barcode })
	return out, nil
}

func (m *mockProductRepository) DecrementStock(ctx context.Context, barcode string, qty int) (*domain.StockChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	product, exists := m.products[barcode]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	change := &domain.StockChange{Barcode: barcode, Name: product.Name, OldStock: product.Stock}
	product.Stock -= qty
	if product.Stock < 0 {
		product.Stock = 0
	}
	change.NewStock = product.Stock
	return change, nil
}

func (m *mockProductRepository) IncrementStock(ctx context.Context, barcode string, qty int) (*domain.StockChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, exists := m.products[barcode]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	change := &domain.StockChange{Barcode: barcode, Name: product.Name, OldStock: product.Stock}
	product.Stock += qty
	change.NewStock = product.Stock
	return change, nil
}

func (m *mockProductRepository) ClearBarcode(ctx context.Context, barcode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.products[barcode]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, barcode)
	return nil
}

func (m *mockProductRepository) stock(barcode string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[barcode].Stock
}

type mockProductTypeRepository struct {
	types map[uuid.UUID]*domain.ProductType
}

func newMockProductTypeRepository(types ...*domain.ProductType) *mockProductTypeRepository {
	m := &mockProductTypeRepository{types: make(map[uuid.UUID]*domain.ProductType)}
	for _, t := range types {
		m.types[t.ID] = t
	}
	return m
}

func (m *mockProductTypeRepository) Create(ctx context.Context, productType *domain.ProductType) error {
	for _, t := range m.types {
		if t.Name == productType.Name {
			return repository.ErrProductTypeAlreadyExists
		}
	}
	m.types[productType.ID] = productType
	return nil
}

func (m *mockProductTypeRepository) List(ctx context.Context) ([]*domain.ProductType, error) {
	var out []*domain.ProductType
	for _, t := range m.types {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockProductTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductType, error) {
	t, exists := m.types[id]
	if !exists {
		return nil, repository.ErrProductTypeNotFound
	}
	return t, nil
}

type mockMemberRepository struct {
	mu      sync.Mutex
	members map[string]*domain.Member
	deltas  []int64
}

func newMockMemberRepository(members ...*domain.Member) *mockMemberRepository {
	m := &mockMemberRepository{members: make(map[string]*domain.Member)}
	for _, member := range members {
		m.members[member.Phone] = member
	}
	return m
}

func (m *mockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.members[member.Phone]; exists {
		return repository.ErrMemberAlreadyExists
	}
	m.members[member.Phone] = member
	return nil
}

func (m *mockMemberRepository) FindByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, exists := m.members[phone]
	if !exists {
		return nil, repository.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (m *mockMemberRepository) AddPoints(ctx context.Context, phone string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deltas = append(m.deltas, delta)
	member, exists := m.members[phone]
	if !exists {
		return 0, repository.ErrMemberNotFound
	}
	member.Points += delta
	return member.Points, nil
}

func (m *mockMemberRepository) SetPoints(ctx context.Context, phone string, points int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, exists := m.members[phone]
	if !exists {
		return repository.ErrMemberNotFound
	}
	member.Points = points
	return nil
}

type mockOrderRepository struct {
	mu       sync.Mutex
	orders   map[string]*domain.Order
	failWith error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	order.ID = uuid.NewString()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, exists := m.orders[id]
	if !exists {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) List(ctx context.Context, from, to *time.Time) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if from != nil && o.Date.Before(*from) || to != nil && o.Date.After(*to) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// recordingRenderer keeps every document it was asked to render
type recordingRenderer struct {
	mu   sync.Mutex
	docs []render.Document
	err  error
}

func (r *recordingRenderer) Render(doc render.Document) (*image.Paletted, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	if r.err != nil {
		return nil, r.err
	}
	return image.NewPaletted(image.Rect(0, 0, render.CanvasWidth, 10), render.Monochrome()), nil
}

func (r *recordingRenderer) last() render.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.docs) == 0 {
		return nil
	}
	return r.docs[len(r.docs)-1]
}

// fakeSpooler records jobs and mimics the per-kind failure policy
type fakeSpooler struct {
	mu   sync.Mutex
	jobs []printer.Job
	err  error
}

func (s *fakeSpooler) Print(ctx context.Context, job printer.Job) (domain.PrintStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	if s.err == nil {
		return domain.PrintStatus{Printed: true}, nil
	}
	status := domain.PrintStatus{Error: s.err.Error()}
	if job.Kind == render.KindReceipt {
		status.Artifact = "receipt-" + job.Name + ".png"
	}
	return status, s.err
}

func (s *fakeSpooler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

var errPrinterOffline = &printer.DeliveryError{Op: "connect", Address: "192.168.1.250:9100", Err: errors.New("connection refused")}
