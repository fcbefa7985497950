package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"bozor/internal/handlers"
	"bozor/internal/middleware"
	"bozor/internal/models"
	"bozor/internal/repositories"
	"bozor/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test_jwt_secret"

// fakeUpstream imitates the marketplace API the storefront consumes.
type fakeUpstream struct {
	server       *httptest.Server
	orderCounter int64
	lastIdemKey  atomic.Value
	failOrders   atomic.Bool
	failPayments atomic.Bool
}

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{}
	mux := http.NewServeMux()

	wholesale := 8000.0
	products := map[string]models.ProductSnapshot{
		"prod-1": {ID: "prod-1", Name: "Rice 25kg", Price: 10000, WholesalePrice: &wholesale, Stock: 40, MinOrderQuantity: 5, Unit: "sack"},
		"prod-2": {ID: "prod-2", Name: "Flour 10kg", Price: 500, Stock: 3, MinOrderQuantity: 1, Unit: "bag"},
	}

	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		list := make([]models.ProductSnapshot, 0, len(products))
		for _, p := range products {
			list = append(list, p)
		}
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		product, ok := products[r.URL.Path[len("/products/"):]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "product not found"})
			return
		}
		json.NewEncoder(w).Encode(product)
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if f.failOrders.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"message": "order service down"})
			return
		}
		f.lastIdemKey.Store(r.Header.Get(repositories.IdempotencyKeyHeader))

		var draft models.OrderDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		id := atomic.AddInt64(&f.orderCounter, 1)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Order{
			ID:            fmt.Sprintf("order-%d", id),
			Items:         draft.Items,
			PaymentMethod: draft.PaymentMethod,
			TotalPrice:    draft.TotalPrice,
			Status:        models.StatusPending,
			CreatedAt:     time.Now(),
		})
	})
	paymentInit := func(w http.ResponseWriter, r *http.Request) {
		if f.failPayments.Load() {
			w.WriteHeader(http.StatusBadGateway)
			json.NewEncoder(w).Encode(map[string]string{"message": "gateway unreachable"})
			return
		}
		var req struct {
			OrderID string  `json:"orderId"`
			Amount  float64 `json:"amount"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(map[string]string{
			"paymentUrl": "https://gateway.example/pay/" + req.OrderID,
		})
	}
	mux.HandleFunc("/payments/click/init", paymentInit)
	mux.HandleFunc("/payments/payme/init", paymentInit)
	mux.HandleFunc("/payments/status/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(repositories.PaymentStatus{
			OrderID:       r.URL.Path[len("/payments/status/"):],
			PaymentStatus: "pending",
		})
	})

	f.server = httptest.NewServer(mux)
	return f
}

// setupApp wires a Fiber app with in-memory SQLite slot storage and the
// fake upstream, mirroring the production wiring in main.go.
func setupApp(t *testing.T, upstream *fakeUpstream) (*fiber.App, repositories.StateStorage) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&repositories.StateSlot{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}
	storage := repositories.NewGORMStateStorage(db)

	client := repositories.NewUpstreamClient(upstream.server.URL)
	orderAPI := repositories.NewHTTPOrderAPI(client)
	paymentAPI := repositories.NewHTTPPaymentAPI(client)
	catalogAPI := repositories.NewHTTPCatalogAPI(client)

	cartManager := services.NewCartManager(storage)
	productService := services.NewProductService(catalogAPI)
	orderService := services.NewOrderService(orderAPI, paymentAPI)
	checkoutService := services.NewCheckoutService(cartManager, services.NewCheckoutValidator(), orderAPI, paymentAPI, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.AuthRequired(testJWTSecret))
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartManager, productService).RegisterRoutes(apiV1)
	handlers.NewCheckoutHandler(checkoutService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1)

	return app, storage
}

// tokenFor signs a test JWT for the given user.
func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reqBody = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	decoded := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestCartEndpointsRequireAuth(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/checkout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	// Add a snapshot directly.
	wholesalePrice := 8000.0
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product": models.ProductSnapshot{ID: "prod-1", Name: "Rice 25kg", Price: 10000, WholesalePrice: &wholesalePrice, Stock: 40},
		"quantity": 3,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 3.0, body["count"])
	assert.Equal(t, 24000.0, body["total"])

	// Merge into the same line.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product": models.ProductSnapshot{ID: "prod-1", Name: "Rice 25kg", Price: 10000, WholesalePrice: &wholesalePrice, Stock: 40},
		"quantity": 2,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 5.0, body["count"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["items"].([]interface{})
	assert.Len(t, items, 1)

	// Overwrite quantity, then remove by setting zero.
	resp, body = doJSON(t, app, http.MethodPatch, "/api/v1/cart/items/prod-1", token, map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2.0, body["count"])

	resp, body = doJSON(t, app, http.MethodPatch, "/api/v1/cart/items/prod-1", token, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, body["count"])
}

func TestAddProductByCatalogIDClampsQuantity(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	// prod-1 has MinOrderQuantity 5: asking for 2 gets clamped up.
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/cart/products/prod-1", token, map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 5.0, body["count"])

	// prod-2 has Stock 3: asking for 10 gets clamped down.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/cart/products/prod-2", token, map[string]int{"quantity": 10})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 8.0, body["count"])
}

func checkoutForm(method models.PaymentMethod) map[string]interface{} {
	return map[string]interface{}{
		"full_name":      "Aziz Karimov",
		"email":          "aziz@example.com",
		"phone":          "+998901234567",
		"address":        "Chilonzor 5",
		"city":           "Tashkent",
		"postal_code":    "100115",
		"payment_method": method,
	}
}

func TestCheckoutCashEndToEnd(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	wholesalePrice := 8000.0
	doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product": models.ProductSnapshot{ID: "prod-1", Price: 10000, WholesalePrice: &wholesalePrice},
		"quantity": 3,
	})

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutForm(models.PaymentCash))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "order-1", body["order_id"])
	assert.NotContains(t, body, "payment_url")
	assert.NotEmpty(t, upstream.lastIdemKey.Load())

	// The confirmed creation cleared the cart.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, body["count"])

	// The created order can be tracked.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/orders/order-1/payment", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", body["payment_status"])
}

func TestCheckoutGatewayReturnsRedirectURL(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product":  models.ProductSnapshot{ID: "prod-2", Price: 500},
		"quantity": 2,
	})

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutForm(models.PaymentClick))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "order-1", body["order_id"])
	assert.Equal(t, "https://gateway.example/pay/order-1", body["payment_url"])

	// Cart was cleared by the creation step, before the gateway call.
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, 0.0, body["count"])
}

func TestCheckoutValidationFailureIsLocal(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product":  models.ProductSnapshot{ID: "prod-2", Price: 500},
		"quantity": 1,
	})

	form := checkoutForm(models.PaymentCash)
	form["phone"] = "+9989012345" // too short
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "+998")

	// Nothing reached the order endpoint and the cart is intact.
	assert.Equal(t, int64(0), atomic.LoadInt64(&upstream.orderCounter))
	_, cartBody := doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, 1.0, cartBody["count"])
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutForm(models.PaymentCash))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cart is empty", body["message"])
}

func TestCheckoutOrderCreationFailureKeepsCart(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product":  models.ProductSnapshot{ID: "prod-2", Price: 500},
		"quantity": 2,
	})

	upstream.failOrders.Store(true)
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutForm(models.PaymentCash))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// Cart preserved for resubmission.
	upstream.failOrders.Store(false)
	_, cartBody := doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, 2.0, cartBody["count"])
}

func TestCheckoutPaymentInitFailureReportsPendingOrder(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	doJSON(t, app, http.MethodPost, "/api/v1/cart/items", token, map[string]interface{}{
		"product":  models.ProductSnapshot{ID: "prod-2", Price: 500},
		"quantity": 2,
	})

	upstream.failPayments.Store(true)
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/checkout", token, checkoutForm(models.PaymentPayme))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	// The order was created before the gateway failed; its ID is surfaced
	// so the customer can retry payment.
	assert.Equal(t, "order-1", body["order_id"])
}

func TestCorruptCartSlotStartsEmpty(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, storage := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	assert.NoError(t, storage.Set(context.Background(), "cart:user-1", "{not json"))

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, body["count"])
}

func TestProductBrowseProxiesCatalog(t *testing.T) {
	upstream := newFakeUpstream()
	defer upstream.server.Close()
	app, _ := setupApp(t, upstream)
	token := tokenFor(t, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.ProductSnapshot
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 2)
	resp.Body.Close()

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/products/prod-1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Rice 25kg", body["name"])
}
