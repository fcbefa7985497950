package repositories

import (
	"context"
	"fmt"

	"bozor/internal/models"
)

// HTTPCatalogAPI is the HTTP implementation of CatalogAPI.
type HTTPCatalogAPI struct {
	client *UpstreamClient
}

// NewHTTPCatalogAPI creates a new instance of HTTPCatalogAPI.
func NewHTTPCatalogAPI(client *UpstreamClient) *HTTPCatalogAPI {
	return &HTTPCatalogAPI{
		client: client,
	}
}

// GetAll retrieves the product listing.
func (a *HTTPCatalogAPI) GetAll(ctx context.Context) ([]models.ProductSnapshot, error) {
	var products []models.ProductSnapshot
	if err := a.client.getJSON(ctx, "/products", &products); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (a *HTTPCatalogAPI) GetByID(ctx context.Context, id string) (*models.ProductSnapshot, error) {
	var product models.ProductSnapshot
	if err := a.client.getJSON(ctx, "/products/"+id, &product); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &product, nil
}
