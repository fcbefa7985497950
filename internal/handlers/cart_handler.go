package handlers

import (
	"log"

	"bozor/internal/models"
	"bozor/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the customer's cart.
type CartHandler struct {
	carts    *services.CartManager
	products *services.ProductService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartManager, products *services.ProductService) *CartHandler {
	return &CartHandler{
		carts:    carts,
		products: products,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Post("/products/:id", h.HandleAddProduct)
	cartRoutes.Patch("/items/:productId", h.HandleUpdateQuantity)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// ownerID resolves the cart owner from the authenticated request.
func ownerID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// HandleGetCart returns the current line items with total and count.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart := h.carts.For(c.UserContext(), ownerID(c))
	items := cart.Items()
	return c.JSON(fiber.Map{
		"items": items,
		"total": cart.Total(),
		"count": cart.Count(),
	})
}

// addItemRequest carries a product snapshot and the quantity to merge in.
type addItemRequest struct {
	Product  models.ProductSnapshot `json:"product"`
	Quantity int                    `json:"quantity"`
}

// HandleAddItem merges a client-supplied product snapshot into the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart := h.carts.For(c.UserContext(), ownerID(c))
	cart.AddToCart(c.UserContext(), req.Product, req.Quantity)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"count": cart.Count(),
		"total": cart.Total(),
	})
}

// HandleAddProduct adds a product by catalog ID. The requested quantity is
// clamped to [minOrderQuantity, stock] here, at the caller of the cart API,
// mirroring the product-detail quantity stepper.
func (h *CartHandler) HandleAddProduct(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	productID := c.Params("id")
	product, err := h.products.GetProductByID(c.UserContext(), productID)
	if err != nil {
		log.Printf("Error fetching product %s for cart: %v", productID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not fetch product",
			"error":   err.Error(),
		})
	}

	quantity := product.ClampQuantity(req.Quantity)
	cart := h.carts.For(c.UserContext(), ownerID(c))
	cart.AddToCart(c.UserContext(), *product, quantity)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"count": cart.Count(),
		"total": cart.Total(),
	})
}

// HandleUpdateQuantity overwrites a line's quantity; zero or less removes it.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update-quantity request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	cart := h.carts.For(c.UserContext(), ownerID(c))
	cart.UpdateQuantity(c.UserContext(), c.Params("productId"), req.Quantity)

	return c.JSON(fiber.Map{
		"count": cart.Count(),
		"total": cart.Total(),
	})
}

// HandleRemoveItem deletes a line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart := h.carts.For(c.UserContext(), ownerID(c))
	cart.RemoveFromCart(c.UserContext(), c.Params("productId"))

	return c.JSON(fiber.Map{
		"count": cart.Count(),
		"total": cart.Total(),
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart := h.carts.For(c.UserContext(), ownerID(c))
	cart.ClearCart(c.UserContext())

	return c.JSON(fiber.Map{
		"message": "Cart cleared",
	})
}
