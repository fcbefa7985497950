package main_test

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	mainapp "bozor" // Alias the main package for clarity
)

var app *fiber.App

func TestMain(m *testing.M) {
	// Run against the in-memory slot backend; no broker, no database.
	os.Setenv("CART_BACKEND", "memory")
	os.Setenv("RABBITMQ_URL", "")
	os.Setenv("JWT_SECRET", "test_jwt_secret")

	var err error
	app, _, err = mainapp.NewApp()
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	log.SetOutput(io.Discard)
	code := m.Run()

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	os.Exit(code)
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), `"status":"healthy"`)
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
