package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

type stubCatalogService struct {
	products []*domain.Product
	created  *ports.ProductInput
	upload   *ports.UploadInput
	body     []byte
	err      error
}

func (s *stubCatalogService) ListJackets(context.Context) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (s *stubCatalogService) ListSubscriptionPlans(context.Context) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) ListProducts(context.Context) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) CreateProduct(_ context.Context, in ports.ProductInput) (*domain.Product, error) {
	s.created = &in
	return &domain.Product{ID: 10, Name: in.Name, Price: in.Price, Stock: in.Stock, Category: in.Category}, s.err
}

func (s *stubCatalogService) UpdateProduct(_ context.Context, id int64, in ports.ProductInput) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Product{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (s *stubCatalogService) DeleteProduct(context.Context, int64) error { return s.err }

func (s *stubCatalogService) StockAlerts(context.Context) ([]*domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) UploadImage(_ context.Context, in ports.UploadInput) (string, error) {
	s.upload = &in
	s.body, _ = io.ReadAll(in.Body)
	return "/uploads/" + in.Filename, s.err
}

// ----

func TestCatalogHandler_ListJackets(t *testing.T) {
	stub := &stubCatalogService{products: []*domain.Product{
		{ID: 1, Name: "Night Rider", Price: decimal.RequireFromString("1299.00"), Stock: 4, Category: domain.CategorySmartJacket},
	}}
	handler := NewCatalogHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/products/jackets", nil, 0, "")
	if err := handler.ListJackets(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got []domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Night Rider" || !got[0].Price.Equal(decimal.NewFromInt(1299)) {
		t.Fatalf("unexpected products: %+v", got)
	}
}

func TestCatalogHandler_GetProduct_NotFound(t *testing.T) {
	handler := NewCatalogHandler(&stubCatalogService{})

	c, _ := newTestContext(http.MethodGet, "/v1/products/3", nil, 0, "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := handler.GetProduct(c); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCatalogHandler_CreateProduct(t *testing.T) {
	stub := &stubCatalogService{}
	handler := NewCatalogHandler(stub)

	body := strings.NewReader(`{"sku":"ACC-1","name":"Gloves","price":"249.90","stock":12,"category":"ACCESSORY"}`)
	c, rec := newTestContext(http.MethodPost, "/v1/admin/products", body, 1, domain.RoleAdmin)

	if err := handler.CreateProduct(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.created == nil || stub.created.Category != domain.CategoryAccessory ||
		!stub.created.Price.Equal(decimal.RequireFromString("249.9")) {
		t.Fatalf("unexpected input: %+v", stub.created)
	}
}

func TestCatalogHandler_CreateProduct_Invalid(t *testing.T) {
	handler := NewCatalogHandler(&stubCatalogService{})

	cases := map[string]string{
		"negative price": `{"name":"Gloves","price":"-1","stock":1,"category":"ACCESSORY"}`,
		"negative stock": `{"name":"Gloves","price":"10","stock":-1,"category":"ACCESSORY"}`,
		"bad category":   `{"name":"Gloves","price":"10","stock":1,"category":"TOY"}`,
		"missing name":   `{"price":"10","stock":1,"category":"ACCESSORY"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/v1/admin/products", strings.NewReader(body), 1, domain.RoleAdmin)
			requireHTTPError(t, handler.CreateProduct(c), http.StatusBadRequest)
		})
	}
}

func TestCatalogHandler_DeleteProduct_InUse(t *testing.T) {
	handler := NewCatalogHandler(&stubCatalogService{err: domain.ErrProductInUse})

	c, _ := newTestContext(http.MethodDelete, "/v1/admin/products/2", nil, 1, domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := handler.DeleteProduct(c); !errors.Is(err, domain.ErrProductInUse) {
		t.Fatalf("expected ErrProductInUse, got %v", err)
	}
}

func TestCatalogHandler_UploadImage(t *testing.T) {
	stub := &stubCatalogService{}
	handler := NewCatalogHandler(stub)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="jacket.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("\x89PNG fake"))
	_ = mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/uploads", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.UploadImage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if stub.upload == nil || stub.upload.Filename != "jacket.png" || stub.upload.ContentType != "image/png" {
		t.Fatalf("unexpected upload input: %+v", stub.upload)
	}
	if string(stub.body) != "\x89PNG fake" {
		t.Fatalf("unexpected upload body %q", stub.body)
	}

	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.URL != "/uploads/jacket.png" {
		t.Fatalf("unexpected url %q", resp.URL)
	}
}

func TestCatalogHandler_UploadImage_MissingFile(t *testing.T) {
	handler := NewCatalogHandler(&stubCatalogService{})

	c, _ := newTestContext(http.MethodPost, "/v1/admin/uploads", strings.NewReader(`{}`), 1, domain.RoleAdmin)
	requireHTTPError(t, handler.UploadImage(c), http.StatusBadRequest)
}
