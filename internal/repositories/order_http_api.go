package repositories

import (
	"context"
	"fmt"

	"bozor/internal/models"
)

// IdempotencyKeyHeader carries the per-attempt checkout token so the
// upstream API can deduplicate resubmissions after ambiguous failures.
const IdempotencyKeyHeader = "Idempotency-Key"

// HTTPOrderAPI is the HTTP implementation of OrderAPI.
type HTTPOrderAPI struct {
	client *UpstreamClient
}

// NewHTTPOrderAPI creates a new instance of HTTPOrderAPI.
func NewHTTPOrderAPI(client *UpstreamClient) *HTTPOrderAPI {
	return &HTTPOrderAPI{
		client: client,
	}
}

// Create submits an OrderDraft and returns the created Order with its
// server-assigned identity and initial status.
func (a *HTTPOrderAPI) Create(ctx context.Context, draft *models.OrderDraft, idempotencyKey string) (*models.Order, error) {
	var order models.Order
	headers := map[string]string{IdempotencyKeyHeader: idempotencyKey}
	if err := a.client.postJSON(ctx, "/orders", draft, &order, headers); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &order, nil
}

// GetByID fetches a single order for tracking.
func (a *HTTPOrderAPI) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := a.client.getJSON(ctx, "/orders/"+id, &order); err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}
