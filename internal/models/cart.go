package models

// CartItem is a single cart line: a product snapshot plus a quantity.
// A cart holds at most one CartItem per product ID, and quantity is
// always positive.
type CartItem struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is the line total under the wholesale price selection rule.
func (i CartItem) Subtotal() float64 {
	return i.Product.UnitPrice() * float64(i.Quantity)
}
