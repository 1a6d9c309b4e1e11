package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const maxUploadBytes = 5 << 20

// CatalogHandler serves the public catalog and the admin product back-office.
type CatalogHandler struct {
	service ports.CatalogService
}

func NewCatalogHandler(service ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListJackets handles GET /v1/products/jackets.
//
// @Summary      List smart jackets in stock
// @Tags         products
// @Produce      json
// @Success      200  {array}   domain.Product
// @Router       /v1/products/jackets [get]
func (h *CatalogHandler) ListJackets(c echo.Context) error {
	products, err := h.service.ListJackets(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /v1/products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /v1/products/{id} [get]
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// ListPlans handles GET /v1/subscriptions/plans.
//
// @Summary      List subscription plans
// @Tags         subscriptions
// @Produce      json
// @Success      200  {array}   domain.Product
// @Router       /v1/subscriptions/plans [get]
func (h *CatalogHandler) ListPlans(c echo.Context) error {
	plans, err := h.service.ListSubscriptionPlans(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, plans)
}

// ListProducts handles GET /v1/admin/products.
//
// @Summary      List all products
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Product
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/products [get]
func (h *CatalogHandler) ListProducts(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct handles POST /v1/admin/products.
//
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/admin/products [post]
func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /v1/admin/products/:id.
//
// @Summary      Update a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Product ID"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.Request().Context(), id, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /v1/admin/products/:id.
//
// @Summary      Delete a product
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/admin/products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// StockAlerts handles GET /v1/admin/products/stock-alerts.
//
// @Summary      Products out of stock
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Product
// @Router       /v1/admin/products/stock-alerts [get]
func (h *CatalogHandler) StockAlerts(c echo.Context) error {
	products, err := h.service.StockAlerts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// UploadImage handles POST /v1/admin/uploads (multipart field "file").
//
// @Summary      Upload a product image
// @Tags         admin
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "JPEG, PNG or WebP image"
// @Success      201   {object}  uploadResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/admin/uploads [post]
func (h *CatalogHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fh.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds 5MB")
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := h.service.UploadImage(c.Request().Context(), ports.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploadResponse{URL: url})
}

func (r productRequest) toInput() ports.ProductInput {
	return ports.ProductInput{
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Category:    domain.Category(r.Category),
	}
}
