package models

// CheckoutForm holds the customer-supplied contact and shipping fields.
// It is transient: validated, folded into an OrderDraft, then discarded.
type CheckoutForm struct {
	FullName      string        `json:"full_name" validate:"required"`
	Email         string        `json:"email" validate:"required,checkout_email"`
	Phone         string        `json:"phone" validate:"required,phone_uz"`
	Address       string        `json:"address" validate:"required"`
	City          string        `json:"city" validate:"required"`
	PostalCode    string        `json:"postal_code"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required"`
	Notes         string        `json:"notes"`
}
