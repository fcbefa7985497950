package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"bozor/internal/models"
	"bozor/internal/repositories"

	"github.com/google/uuid"
)

// ErrEmptyCart rejects a checkout attempt before any validation or network
// activity happens.
var ErrEmptyCart = errors.New("cart is empty")

// EventPublisher publishes checkout events to the message broker.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// PaymentInitError reports a gateway-initialization failure for an order
// that was already created. The cart is cleared and the order stays
// pending; the customer retries payment, not the whole checkout.
type PaymentInitError struct {
	OrderID string
	Err     error
}

func (e *PaymentInitError) Error() string {
	return fmt.Sprintf("payment init failed for order %s: %v", e.OrderID, e.Err)
}

func (e *PaymentInitError) Unwrap() error {
	return e.Err
}

// CheckoutResult is the terminal outcome of a successful submission. A cash
// order carries only the order ID; a gateway order also carries the URL the
// customer must be redirected to.
type CheckoutResult struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url,omitempty"`
}

// CheckoutService drives the pipeline: cart → validation → order creation →
// payment routing. Each stage proceeds only if the previous one succeeded.
type CheckoutService struct {
	carts      *CartManager
	validator  *CheckoutValidator
	orderAPI   repositories.OrderAPI
	paymentAPI repositories.PaymentAPI
	publisher  EventPublisher
}

// NewCheckoutService creates a new CheckoutService. The publisher may be
// nil; event publication is best-effort.
func NewCheckoutService(carts *CartManager, validator *CheckoutValidator, orderAPI repositories.OrderAPI, paymentAPI repositories.PaymentAPI, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		carts:      carts,
		validator:  validator,
		orderAPI:   orderAPI,
		paymentAPI: paymentAPI,
		publisher:  publisher,
	}
}

// BuildOrderDraft derives the order payload from cart line items and a
// validated form. Unit prices and the total both come from the snapshot's
// UnitPrice, so the bill can never disagree with the cart total.
func BuildOrderDraft(items []models.CartItem, form *models.CheckoutForm) *models.OrderDraft {
	draft := &models.OrderDraft{
		Items: make([]models.OrderItem, 0, len(items)),
		CustomerInfo: models.CustomerInfo{
			FullName: form.FullName,
			Email:    form.Email,
			Phone:    form.Phone,
		},
		ShippingAddress: models.ShippingAddress{
			Address:    form.Address,
			City:       form.City,
			PostalCode: form.PostalCode,
		},
		PaymentMethod: form.PaymentMethod,
		Notes:         form.Notes,
	}
	for _, item := range items {
		draft.Items = append(draft.Items, models.OrderItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.UnitPrice(),
		})
		draft.TotalPrice += item.Subtotal()
	}
	return draft
}

// Submit runs one checkout attempt for the owner's cart.
//
// The cart is cleared only after the order-creation endpoint confirms
// success; a creation failure leaves it untouched for resubmission. A
// fresh idempotency key per attempt lets the upstream API deduplicate a
// retry after an ambiguous failure.
func (s *CheckoutService) Submit(ctx context.Context, ownerID string, form *models.CheckoutForm) (*CheckoutResult, error) {
	cart := s.carts.For(ctx, ownerID)

	items := cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.validator.Validate(form); err != nil {
		return nil, err
	}

	draft := BuildOrderDraft(items, form)
	idempotencyKey := uuid.New().String()

	order, err := s.orderAPI.Create(ctx, draft, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("order submission failed: %w", err)
	}

	cart.ClearCart(ctx)
	s.publishOrderCreated(order)

	if form.PaymentMethod == models.PaymentCash {
		return &CheckoutResult{OrderID: order.ID}, nil
	}

	paymentURL, err := s.paymentAPI.Init(ctx, form.PaymentMethod, order.ID, order.TotalPrice)
	if err != nil {
		// No fallback to cash and no retry here: the order stays pending
		// until the customer re-initiates payment.
		return nil, &PaymentInitError{OrderID: order.ID, Err: err}
	}
	return &CheckoutResult{OrderID: order.ID, PaymentURL: paymentURL}, nil
}

// publishOrderCreated emits an order.created event. Failures are logged and
// never fail the checkout.
func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping order.created event.")
		return
	}

	event := map[string]interface{}{
		"order_id":       order.ID,
		"status":         order.Status,
		"total":          order.TotalPrice,
		"payment_method": order.PaymentMethod,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order.created event: %v", err)
		return
	}
	if err := s.publisher.Publish("order.created", body); err != nil {
		log.Printf("Warning: Failed to publish order.created event for order %s: %v", order.ID, err)
		return
	}
	log.Printf("Published order.created event for order %s", order.ID)
}
