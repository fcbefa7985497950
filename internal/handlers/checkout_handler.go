package handlers

import (
	"errors"
	"log"

	"bozor/internal/models"
	"bozor/internal/repositories"
	"bozor/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles the checkout submission endpoint.
type CheckoutHandler struct {
	checkout *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
	}
}

// RegisterRoutes registers the checkout route with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout runs one checkout attempt. Validation problems come back
// as 400 with the single reason; upstream transport failures as 502 with
// the cart (and for gateway-init failures, the pending order) intact.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var form models.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.checkout.Submit(c.UserContext(), ownerID(c), &form)
	if err != nil {
		var validationErr *services.ValidationError
		var initErr *services.PaymentInitError
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Cart is empty",
			})
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": validationErr.Reason,
			})
		case errors.Is(err, repositories.ErrAuthExpired):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session expired, please sign in again",
			})
		case errors.As(err, &initErr):
			log.Printf("Payment init failed after order creation: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message":  "Order was created but payment could not be started",
				"order_id": initErr.OrderID,
			})
		default:
			log.Printf("Checkout failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Could not create order, please try again",
				"error":   err.Error(),
			})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
