package handlers

import (
	"errors"
	"log"

	"bozor/internal/repositories"
	"bozor/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles read-only order tracking requests.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/payment", h.HandleGetPaymentStatus)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrderByID(c.UserContext(), orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrAuthExpired) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session expired, please sign in again",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// HandleGetPaymentStatus retrieves the out-of-band settlement status.
func (h *OrderHandler) HandleGetPaymentStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	status, err := h.service.GetPaymentStatus(c.UserContext(), orderID)
	if err != nil {
		log.Printf("Error getting payment status for order %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrAuthExpired) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session expired, please sign in again",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Could not retrieve payment status",
			"error":   err.Error(),
		})
	}
	return c.JSON(status)
}
