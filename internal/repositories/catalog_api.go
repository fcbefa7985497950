package repositories

import (
	"context"

	"bozor/internal/models"
)

// CatalogAPI defines the interface for upstream product reads.
type CatalogAPI interface {
	GetAll(ctx context.Context) ([]models.ProductSnapshot, error)
	GetByID(ctx context.Context, id string) (*models.ProductSnapshot, error)
}
