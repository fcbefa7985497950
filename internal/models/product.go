package models

// ProductSnapshot captures a product as it was when added to the cart.
// Prices and stock are frozen at add time; the catalog may change afterwards.
type ProductSnapshot struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name"`
	Price            float64  `json:"price" validate:"gte=0"`
	WholesalePrice   *float64 `json:"wholesale_price,omitempty"`
	Stock            int      `json:"stock" validate:"gte=0"`
	MinOrderQuantity int      `json:"min_order_quantity"`
	Unit             string   `json:"unit"`
}

// UnitPrice returns the wholesale price when the snapshot carries one,
// otherwise the retail price. Cart totals and order lines must both go
// through this method so the two computations never diverge.
func (p ProductSnapshot) UnitPrice() float64 {
	if p.WholesalePrice != nil {
		return *p.WholesalePrice
	}
	return p.Price
}

// ClampQuantity bounds a requested quantity to [MinOrderQuantity, Stock].
// This is the caller-side enforcement; the cart itself does not clamp.
func (p ProductSnapshot) ClampQuantity(quantity int) int {
	if p.MinOrderQuantity > 0 && quantity < p.MinOrderQuantity {
		quantity = p.MinOrderQuantity
	}
	if p.Stock > 0 && quantity > p.Stock {
		quantity = p.Stock
	}
	return quantity
}
