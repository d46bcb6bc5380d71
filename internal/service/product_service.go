// internal/service/product_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/andresuchdata/chainopt/internal/repository"
)

// ErrInvalidProduct is returned when a create request fails validation.
var ErrInvalidProduct = errors.New("invalid product")

type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, int, error) {
	return s.products.List(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, product *domain.Product) error {
	if product.Name == "" || product.SKU == "" {
		return fmt.Errorf("%w: name and sku are required", ErrInvalidProduct)
	}
	if product.MinPrice > product.MaxPrice {
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidProduct)
	}
	if product.CurrentPrice <= 0 {
		return fmt.Errorf("%w: current_price must be positive", ErrInvalidProduct)
	}
	return s.products.Create(ctx, product)
}
