package repositories

import (
	"context"

	"bozor/internal/models"
)

// PaymentStatus is the out-of-band settlement view of an order. The
// checkout flow never awaits it; it only gets re-fetched for display.
type PaymentStatus struct {
	OrderID       string `json:"order_id"`
	PaymentStatus string `json:"payment_status"`
}

// PaymentAPI defines the interface for the payment gateway endpoints.
type PaymentAPI interface {
	Init(ctx context.Context, method models.PaymentMethod, orderID string, amount float64) (string, error)
	Status(ctx context.Context, orderID string) (*PaymentStatus, error)
}
