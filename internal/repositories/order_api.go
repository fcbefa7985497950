package repositories

import (
	"context"

	"bozor/internal/models"
)

// OrderAPI defines the interface for the upstream order-creation endpoint.
type OrderAPI interface {
	Create(ctx context.Context, draft *models.OrderDraft, idempotencyKey string) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
}
