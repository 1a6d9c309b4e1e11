package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// memStore is an in-memory sales database. WithinTx snapshots the whole state
// and restores it when fn fails, so tests observe real rollback semantics.
type memStore struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	cart     map[int64]map[int64]int
	sales    []domain.Sale
	subs     []domain.Subscription
	outbox   []domain.OutboxEvent
	paidRefs map[string]bool
	failOn   string
}

var errDBDown = errors.New("db down")

type memState struct {
	products map[int64]domain.Product
	cart     map[int64]map[int64]int
	sales    []domain.Sale
	subs     []domain.Subscription
	outbox   []domain.OutboxEvent
	paidRefs map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[int64]domain.Product),
		cart:     make(map[int64]map[int64]int),
		paidRefs: make(map[string]bool),
	}
}

func (m *memStore) addProduct(id int64, name string, price string, stock int, cat domain.Category, sku string) {
	m.products[id] = domain.Product{
		ID:       id,
		SKU:      sku,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: cat,
	}
}

func (m *memStore) putCart(userID, productID int64, qty int) {
	if m.cart[userID] == nil {
		m.cart[userID] = make(map[int64]int)
	}
	m.cart[userID][productID] = qty
}

func (m *memStore) snapshot() memState {
	st := memState{
		products: make(map[int64]domain.Product, len(m.products)),
		cart:     make(map[int64]map[int64]int, len(m.cart)),
		sales:    append([]domain.Sale(nil), m.sales...),
		subs:     append([]domain.Subscription(nil), m.subs...),
		outbox:   append([]domain.OutboxEvent(nil), m.outbox...),
		paidRefs: make(map[string]bool, len(m.paidRefs)),
	}
	for k, v := range m.products {
		st.products[k] = v
	}
	for u, lines := range m.cart {
		cp := make(map[int64]int, len(lines))
		for p, q := range lines {
			cp[p] = q
		}
		st.cart[u] = cp
	}
	for k, v := range m.paidRefs {
		st.paidRefs[k] = v
	}
	return st
}

func (m *memStore) restore(st memState) {
	m.products = st.products
	m.cart = st.cart
	m.sales = st.sales
	m.subs = st.subs
	m.outbox = st.outbox
	m.paidRefs = st.paidRefs
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.snapshot()
	if err := fn(ctx, &memTx{m: m}); err != nil {
		m.restore(st)
		return err
	}
	return nil
}

type memTx struct {
	m *memStore
}

func (t *memTx) ProductForUpdate(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := t.m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (t *memTx) ProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	for _, p := range t.m.products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (t *memTx) CartLines(_ context.Context, userID int64) ([]domain.CartLine, error) {
	return t.m.cartLines(userID), nil
}

func (t *memTx) InsertSale(_ context.Context, sale *domain.Sale) (int64, error) {
	if t.m.failOn == "insert_sale" {
		return 0, errDBDown
	}
	if sale.PaymentRef != "" {
		if t.m.paidRefs[sale.PaymentRef] {
			return 0, domain.ErrDuplicatePayment
		}
		t.m.paidRefs[sale.PaymentRef] = true
	}
	id := int64(len(t.m.sales) + 1)
	cp := *sale
	cp.ID = id
	t.m.sales = append(t.m.sales, cp)
	return id, nil
}

func (t *memTx) InsertSaleLine(_ context.Context, saleID int64, line domain.SaleLine) error {
	s := &t.m.sales[saleID-1]
	s.Lines = append(s.Lines, line)
	return nil
}

func (t *memTx) DecrementStock(_ context.Context, productID int64, qty int) (bool, error) {
	p, ok := t.m.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	t.m.products[productID] = p
	return true, nil
}

func (t *memTx) ClearCart(_ context.Context, userID int64) error {
	if t.m.failOn == "clear_cart" {
		return errDBDown
	}
	delete(t.m.cart, userID)
	return nil
}

func (t *memTx) LatestSubscription(_ context.Context, userID int64) (*domain.Subscription, error) {
	return t.m.latestSubscription(userID)
}

func (t *memTx) InsertSubscription(_ context.Context, sub *domain.Subscription) (int64, error) {
	cp := *sub
	cp.ID = int64(len(t.m.subs) + 1)
	t.m.subs = append(t.m.subs, cp)
	return cp.ID, nil
}

func (t *memTx) InsertOutbox(_ context.Context, event domain.OutboxEvent) error {
	t.m.outbox = append(t.m.outbox, event)
	return nil
}

func (m *memStore) cartLines(userID int64) []domain.CartLine {
	var lines []domain.CartLine
	for pid, qty := range m.cart[userID] {
		p := m.products[pid]
		lines = append(lines, domain.CartLine{
			ProductID: pid,
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			Quantity:  qty,
			Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

func (m *memStore) latestSubscription(userID int64) (*domain.Subscription, error) {
	var latest *domain.Subscription
	for i := range m.subs {
		s := m.subs[i]
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.EndsAt.After(latest.EndsAt) {
			latest = &s
		}
	}
	if latest == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return latest, nil
}

// memCart adapts memStore to ports.CartRepository.
type memCart struct{ m *memStore }

func (c memCart) Lines(_ context.Context, userID int64) ([]domain.CartLine, error) {
	return c.m.cartLines(userID), nil
}

func (c memCart) Quantity(_ context.Context, userID, productID int64) (int, error) {
	return c.m.cart[userID][productID], nil
}

func (c memCart) Set(_ context.Context, userID, productID int64, quantity int) error {
	c.m.putCart(userID, productID, quantity)
	return nil
}

func (c memCart) Remove(_ context.Context, userID, productID int64) error {
	if _, ok := c.m.cart[userID][productID]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(c.m.cart[userID], productID)
	return nil
}

// memProducts adapts memStore to ports.ProductRepository.
type memProducts struct{ m *memStore }

func (p memProducts) ListByCategory(_ context.Context, category domain.Category, inStockOnly bool) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, prod := range p.m.products {
		if prod.Category != category || (inStockOnly && prod.Stock == 0) {
			continue
		}
		cp := prod
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p memProducts) List(_ context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, prod := range p.m.products {
		cp := prod
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p memProducts) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	prod, ok := p.m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &prod, nil
}

func (p memProducts) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return (&memTx{m: p.m}).ProductBySKU(ctx, sku)
}

func (p memProducts) Create(_ context.Context, prod *domain.Product) (*domain.Product, error) {
	cp := *prod
	cp.ID = int64(len(p.m.products) + 1)
	p.m.products[cp.ID] = cp
	return &cp, nil
}

func (p memProducts) Update(_ context.Context, prod *domain.Product) error {
	if _, ok := p.m.products[prod.ID]; !ok {
		return domain.ErrProductNotFound
	}
	p.m.products[prod.ID] = *prod
	return nil
}

func (p memProducts) Delete(_ context.Context, id int64) error {
	if _, ok := p.m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(p.m.products, id)
	return nil
}

func (p memProducts) OutOfStock(_ context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, prod := range p.m.products {
		if prod.Stock == 0 {
			cp := prod
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memSales adapts memStore to ports.SaleRepository.
type memSales struct{ m *memStore }

func (s memSales) ListByUser(_ context.Context, userID int64) ([]*domain.Sale, error) {
	var out []*domain.Sale
	for i := len(s.m.sales) - 1; i >= 0; i-- {
		if s.m.sales[i].UserID == userID {
			cp := s.m.sales[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s memSales) FindByID(_ context.Context, id int64) (*domain.Sale, error) {
	if id <= 0 || int(id) > len(s.m.sales) {
		return nil, domain.ErrSaleNotFound
	}
	cp := s.m.sales[id-1]
	return &cp, nil
}

func (s memSales) Latest(ctx context.Context, userID int64) (*domain.Sale, error) {
	sales, _ := s.ListByUser(ctx, userID)
	if len(sales) == 0 {
		return nil, domain.ErrSaleNotFound
	}
	return sales[0], nil
}

func (s memSales) HasPurchasedCategory(_ context.Context, userID int64, category domain.Category) (bool, error) {
	for _, sale := range s.m.sales {
		if sale.UserID != userID {
			continue
		}
		for _, l := range sale.Lines {
			if s.m.products[l.ProductID].Category == category {
				return true, nil
			}
		}
	}
	return false, nil
}

// memSubs adapts memStore to ports.SubscriptionRepository.
type memSubs struct{ m *memStore }

func (s memSubs) Latest(_ context.Context, userID int64) (*domain.Subscription, error) {
	return s.m.latestSubscription(userID)
}
