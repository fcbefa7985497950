package repositories

import (
	"context"
	"fmt"

	"bozor/internal/models"
)

// HTTPPaymentAPI is the HTTP implementation of PaymentAPI.
type HTTPPaymentAPI struct {
	client *UpstreamClient
}

// NewHTTPPaymentAPI creates a new instance of HTTPPaymentAPI.
func NewHTTPPaymentAPI(client *UpstreamClient) *HTTPPaymentAPI {
	return &HTTPPaymentAPI{
		client: client,
	}
}

// paymentInitRequest is the body for the gateway init endpoints.
type paymentInitRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

// paymentInitResponse carries the URL the customer is redirected to.
type paymentInitResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

// Init issues a payment-initialization request for the given gateway and
// returns the redirect URL. Only click and payme have init endpoints.
func (a *HTTPPaymentAPI) Init(ctx context.Context, method models.PaymentMethod, orderID string, amount float64) (string, error) {
	var path string
	switch method {
	case models.PaymentClick:
		path = "/payments/click/init"
	case models.PaymentPayme:
		path = "/payments/payme/init"
	default:
		return "", fmt.Errorf("payment method %s has no gateway init endpoint", method)
	}

	var resp paymentInitResponse
	req := paymentInitRequest{OrderID: orderID, Amount: amount}
	if err := a.client.postJSON(ctx, path, req, &resp, nil); err != nil {
		return "", fmt.Errorf("failed to init %s payment for order %s: %w", method, orderID, err)
	}
	if resp.PaymentURL == "" {
		return "", fmt.Errorf("%s init for order %s returned no payment URL", method, orderID)
	}
	return resp.PaymentURL, nil
}

// Status fetches the settlement status of an order.
func (a *HTTPPaymentAPI) Status(ctx context.Context, orderID string) (*PaymentStatus, error) {
	var status PaymentStatus
	if err := a.client.getJSON(ctx, "/payments/status/"+orderID, &status); err != nil {
		return nil, fmt.Errorf("failed to get payment status for order %s: %w", orderID, err)
	}
	return &status, nil
}
