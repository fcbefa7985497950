package services

import (
	"context"

	"bozor/internal/models"
	"bozor/internal/repositories"
)

// OrderService reads order and settlement state for tracking screens. The
// storefront never mutates an order; status transitions happen upstream.
type OrderService struct {
	orderAPI   repositories.OrderAPI
	paymentAPI repositories.PaymentAPI
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderAPI repositories.OrderAPI, paymentAPI repositories.PaymentAPI) *OrderService {
	return &OrderService{
		orderAPI:   orderAPI,
		paymentAPI: paymentAPI,
	}
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderAPI.GetByID(ctx, id)
}

// GetPaymentStatus retrieves the out-of-band settlement status of an order.
// The checkout flow itself never awaits this.
func (s *OrderService) GetPaymentStatus(ctx context.Context, orderID string) (*repositories.PaymentStatus, error) {
	return s.paymentAPI.Status(ctx, orderID)
}
