package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// CatalogService serves the public catalog and the admin product back-office.
type CatalogService struct {
	products ports.ProductRepository
	cache    ports.CatalogCache
	images   ports.ImageStore
	sfg      singleflight.Group
	log      zerolog.Logger
}

func NewCatalogService(products ports.ProductRepository, cache ports.CatalogCache, images ports.ImageStore, log zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, cache: cache, images: images, log: log}
}

// ListJackets returns the smart jackets currently in stock. Concurrent cache
// misses share a single database query.
func (s *CatalogService) ListJackets(ctx context.Context) ([]*domain.Product, error) {
	v, err, _ := s.sfg.Do("jackets", func() (interface{}, error) {
		if s.cache != nil {
			cached, err := s.cache.GetJackets(ctx)
			if err == nil {
				return cached, nil
			}
			if !errors.Is(err, ports.ErrCacheMiss) {
				s.log.Warn().Err(err).Msg("catalog cache read failed")
			}
		}

		jackets, err := s.products.ListByCategory(ctx, domain.CategorySmartJacket, true)
		if err != nil {
			return nil, fmt.Errorf("list jackets: %w", err)
		}

		if s.cache != nil {
			if err := s.cache.SetJackets(ctx, jackets); err != nil {
				s.log.Warn().Err(err).Msg("catalog cache write failed")
			}
		}
		return jackets, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) ListSubscriptionPlans(ctx context.Context) ([]*domain.Product, error) {
	return s.products.ListByCategory(ctx, domain.CategorySubscription, false)
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	created, err := s.products.Create(ctx, productFromInput(in))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info().Int64("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ports.ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p := productFromInput(in)
	p.ID = id
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info().Int64("product_id", id).Msg("product updated")
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func (s *CatalogService) StockAlerts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.OutOfStock(ctx)
}

// UploadImage stores an admin image under a random name and returns its URL.
func (s *CatalogService) UploadImage(ctx context.Context, in ports.UploadInput) (string, error) {
	ext, ok := allowedImageTypes[in.ContentType]
	if !ok {
		return "", fmt.Errorf("%w: image must be jpeg, png or webp", domain.ErrValidation)
	}
	if orig := strings.ToLower(filepath.Ext(in.Filename)); orig == ".jpeg" && ext == ".jpg" {
		ext = orig
	}

	url, err := s.images.Save(ctx, uuid.NewString()+ext, in.ContentType, in.Body)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	s.log.Info().Str("url", url).Msg("image uploaded")
	return url, nil
}

// InvalidateJackets drops the cached jacket listing; stock changes call it.
func (s *CatalogService) InvalidateJackets(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func validateProduct(in ports.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	case !domain.ValidCategory(in.Category):
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, in.Category)
	}
	return nil
}

func productFromInput(in ports.ProductInput) *domain.Product {
	return &domain.Product{
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
	}
}
