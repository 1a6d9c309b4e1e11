package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type stubCatalogCache struct {
	jackets     []*domain.Product
	cached      bool
	gets        int
	sets        int
	invalidated int
	getErr      error
}

func (c *stubCatalogCache) GetJackets(context.Context) ([]*domain.Product, error) {
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	if !c.cached {
		return nil, ports.ErrCacheMiss
	}
	return c.jackets, nil
}

func (c *stubCatalogCache) SetJackets(_ context.Context, jackets []*domain.Product) error {
	c.sets++
	c.jackets = jackets
	c.cached = true
	return nil
}

func (c *stubCatalogCache) Invalidate(context.Context) error {
	c.invalidated++
	c.cached = false
	c.jackets = nil
	return nil
}

type stubImageStore struct {
	name        string
	contentType string
	body        []byte
}

func (s *stubImageStore) Save(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.name, s.contentType, s.body = name, contentType, body
	return "/uploads/" + name, nil
}

func newCatalogSvc(store *memStore) (*CatalogService, *stubCatalogCache, *stubImageStore) {
	cache := &stubCatalogCache{}
	images := &stubImageStore{}
	return NewCatalogService(memProducts{store}, cache, images, zerolog.Nop()), cache, images
}

func TestCatalogService_ListJackets_ReadsThroughCache(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Jacket A", "2499.00", 3, domain.CategorySmartJacket, "")
	store.addProduct(2, "Jacket B", "2799.00", 0, domain.CategorySmartJacket, "")
	store.addProduct(3, "Gloves", "299.00", 10, domain.CategoryAccessory, "")
	svc, cache, _ := newCatalogSvc(store)

	first, err := svc.ListJackets(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first) != 1 || first[0].ID != 1 {
		t.Fatalf("expected only in-stock jacket 1, got %+v", first)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache to be filled once, got %d", cache.sets)
	}

	delete(store.products, 1)
	second, err := svc.ListJackets(context.Background())
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected cached listing, got %+v", second)
	}
	if cache.sets != 1 {
		t.Fatalf("expected cache hit, but cache was written again")
	}
}

func TestCatalogService_ListJackets_CacheErrorFallsBackToStore(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Jacket A", "2499.00", 3, domain.CategorySmartJacket, "")
	svc, cache, _ := newCatalogSvc(store)
	cache.getErr = errors.New("redis down")

	got, err := svc.ListJackets(context.Background())
	if err != nil {
		t.Fatalf("expected fallback to store, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one jacket, got %d", len(got))
	}
}

func TestCatalogService_WritesInvalidateCache(t *testing.T) {
	store := newMemStore()
	svc, cache, _ := newCatalogSvc(store)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, ports.ProductInput{
		Name:     " Night Rider ",
		Price:    decimal.RequireFromString("2999.00"),
		Stock:    4,
		Category: domain.CategorySmartJacket,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Name != "Night Rider" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	if _, err := svc.UpdateProduct(ctx, created.ID, ports.ProductInput{
		Name:     "Night Rider",
		Price:    decimal.RequireFromString("2799.00"),
		Stock:    2,
		Category: domain.CategorySmartJacket,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := svc.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if cache.invalidated != 3 {
		t.Fatalf("expected 3 invalidations, got %d", cache.invalidated)
	}
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	svc, _, _ := newCatalogSvc(newMemStore())

	tests := []struct {
		name string
		in   ports.ProductInput
	}{
		{name: "missing name", in: ports.ProductInput{Category: domain.CategoryAccessory}},
		{name: "negative price", in: ports.ProductInput{Name: "x", Price: decimal.NewFromInt(-1), Category: domain.CategoryAccessory}},
		{name: "negative stock", in: ports.ProductInput{Name: "x", Stock: -1, Category: domain.CategoryAccessory}},
		{name: "unknown category", in: ports.ProductInput{Name: "x", Category: "BIKE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateProduct(context.Background(), tt.in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCatalogService_StockAlerts(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Jacket A", "2499.00", 0, domain.CategorySmartJacket, "")
	store.addProduct(2, "Gloves", "299.00", 10, domain.CategoryAccessory, "")
	svc, _, _ := newCatalogSvc(store)

	alerts, err := svc.StockAlerts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].ID != 1 {
		t.Fatalf("expected product 1 to be flagged, got %+v", alerts)
	}
}

func TestCatalogService_UploadImage(t *testing.T) {
	svc, _, images := newCatalogSvc(newMemStore())

	url, err := svc.UploadImage(context.Background(), ports.UploadInput{
		Filename:    "jacket.JPEG",
		ContentType: "image/jpeg",
		Body:        bytes.NewReader([]byte("img")),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasSuffix(images.name, ".jpeg") || url != "/uploads/"+images.name {
		t.Fatalf("unexpected stored name %q url %q", images.name, url)
	}
	if string(images.body) != "img" {
		t.Fatalf("body not forwarded to store")
	}

	_, err = svc.UploadImage(context.Background(), ports.UploadInput{
		Filename:    "notes.txt",
		ContentType: "text/plain",
		Body:        strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for text upload, got %v", err)
	}
}
