package services

import (
	"context"

	"bozor/internal/models"
	"bozor/internal/repositories"
)

// ProductService proxies product reads to the upstream catalog.
type ProductService struct {
	catalog repositories.CatalogAPI
}

// NewProductService creates a new ProductService.
func NewProductService(catalog repositories.CatalogAPI) *ProductService {
	return &ProductService{
		catalog: catalog,
	}
}

// GetAllProducts retrieves the product listing.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.ProductSnapshot, error) {
	return s.catalog.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.ProductSnapshot, error) {
	return s.catalog.GetByID(ctx, id)
}
