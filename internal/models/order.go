package models

import "time"

// PaymentMethod selects how a confirmed order gets paid.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentClick PaymentMethod = "click"
	PaymentPayme PaymentMethod = "payme"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentClick, PaymentPayme:
		return true
	}
	return false
}

// OrderStatus is the server-owned order lifecycle. The storefront only
// reads it; transitions happen upstream.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// OrderItem represents a single line within an order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"` // Price at the time of order
}

// CustomerInfo is the contact block of an order.
type CustomerInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ShippingAddress is the delivery block of an order.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// OrderDraft is the client-constructed, not-yet-persisted order payload
// sent to the order-creation endpoint. It is derived from the cart and a
// validated checkout form, never stored locally.
type OrderDraft struct {
	Items           []OrderItem     `json:"items"`
	CustomerInfo    CustomerInfo    `json:"customer_info"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	TotalPrice      float64         `json:"total_price"`
	Notes           string          `json:"notes,omitempty"`
}

// Order is the server-owned order as returned by the upstream API.
// The storefront creates one via an OrderDraft and afterwards only reads it.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	CustomerInfo    CustomerInfo    `json:"customer_info"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	TotalPrice      float64         `json:"total_price"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
