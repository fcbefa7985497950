package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bozor/internal/handlers"
	"bozor/internal/middleware"
	"bozor/internal/repositories"
	"bozor/internal/services"
	"bozor/pkg/rabbitmq"

	"github.com/spf13/viper"
)

// NewApp builds the storefront Fiber app from viper configuration and
// returns it together with the RabbitMQ client (nil when no broker is
// configured).
func NewApp() (*fiber.App, *rabbitmq.Client, error) {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("API_BASE_URL", "http://localhost:9000/api")
	viper.SetDefault("CART_BACKEND", "postgres")
	viper.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=bozor port=5432 sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("JWT_SECRET", "change_me")
	viper.AutomaticEnv() // Load environment variables

	// --- Durable state storage for cart slots ---
	storage, err := newStateStorage()
	if err != nil {
		return nil, nil, err
	}

	// --- Optional RabbitMQ client for checkout events ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
	}

	// --- Upstream marketplace API clients ---
	upstream := repositories.NewUpstreamClient(viper.GetString("API_BASE_URL"))
	// The transport raises an auth-expiry signal instead of navigating
	// anywhere itself; the shell decides what expiry means.
	upstream.OnAuthExpired(func() {
		log.Println("Upstream rejected the bearer credential; customer must sign in again")
	})
	orderAPI := repositories.NewHTTPOrderAPI(upstream)
	paymentAPI := repositories.NewHTTPPaymentAPI(upstream)
	catalogAPI := repositories.NewHTTPCatalogAPI(upstream)

	// --- Initialize Services ---
	cartManager := services.NewCartManager(storage)
	validator := services.NewCheckoutValidator()
	productService := services.NewProductService(catalogAPI)
	orderService := services.NewOrderService(orderAPI, paymentAPI)

	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	checkoutService := services.NewCheckoutService(cartManager, validator, orderAPI, paymentAPI, publisher)

	// --- Initialize Handlers ---
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartHandler := handlers.NewCartHandler(cartManager, productService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.AuthRequired(viper.GetString("JWT_SECRET")))

	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, mqClient, nil
}

// newStateStorage selects the durable slot backend from configuration.
func newStateStorage() (repositories.StateStorage, error) {
	switch backend := viper.GetString("CART_BACKEND"); backend {
	case "postgres":
		db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.AutoMigrate(&repositories.StateSlot{}); err != nil {
			return nil, fmt.Errorf("failed to migrate state slots: %w", err)
		}
		return repositories.NewGORMStateStorage(db), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: viper.GetString("REDIS_ADDR")})
		return repositories.NewRedisStateStorage(client), nil
	case "memory":
		return repositories.NewMockStateStorage(), nil
	default:
		return nil, fmt.Errorf("unknown cart backend %q", backend)
	}
}

func main() {
	app, mqClient, err := NewApp()
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}
	if mqClient != nil {
		defer mqClient.Close() // Ensure the connection is closed on exit
	}

	appPort := viper.GetString("APP_PORT")

	// --- Start settlement event consumer in a Goroutine ---
	// Final payment settlement arrives asynchronously from the gateway
	// callbacks upstream; the storefront only observes it.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for settlement events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received settlement event (Tag: %d, Type: %s): %s", msg.DeliveryTag, msg.Type, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeSettlementEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
