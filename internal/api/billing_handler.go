package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewboard-backend-go/internal/core"
	"crewboard-backend-go/internal/models"
)

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService) *BillingHandler {
	return &BillingHandler{billingService: bs}
}

// mapBillingErrorToStatus maps errors from the billing services to HTTP
// status codes and an ErrorResponse. Errors are discriminated with errors.Is
// against the core sentinels, never by message text.
func mapBillingErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrPriceNotConfigured):
		// Configuration gap on our side; the caller gets a generic 500.
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "Billing configuration error"}
		log.Printf("Price configuration error: %v", err)
	case errors.Is(err, core.ErrWebhookSignature):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook signature verification failed"}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "User not found", Details: err.Error()}
	case errors.Is(err, core.ErrCardNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Payment method not found", Details: err.Error()}
	case errors.Is(err, core.ErrCustomerNotLinked):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "User not linked to payment provider", Details: err.Error()}
	case errors.Is(err, core.ErrGateway):
		statusCode = http.StatusServiceUnavailable // upstream provider problem
		errResponse = ErrorResponse{Error: "Payment provider error", Details: "Could not complete the operation with the payment provider."}
		log.Printf("Gateway error: %v", err)
	default:
		log.Printf("Internal server error in billing: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreateCheckout handles POST /billing/checkout.
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	countryCode := core.ResolveCountry(c.Request.Header)

	session, err := h.billingService.CreateCheckoutSession(c.Request.Context(), req.UID, req.BillingFrequency, countryCode)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CheckoutResponse{URL: session.URL, SessionID: session.ID})
}

// HandleStripeWebhook handles POST /billing/webhooks/stripe.
// This endpoint is public; Stripe authenticates deliveries via the
// 'Stripe-Signature' header. The body stays raw until the signature is
// verified inside the service.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		log.Println("Stripe Webhook: Missing Stripe-Signature header.")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("Stripe Webhook: Error reading request body: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read webhook payload", Details: err.Error()})
		return
	}
	defer c.Request.Body.Close()

	if err := h.billingService.HandleStripeWebhook(c.Request.Context(), signature, payload); err != nil {
		// A processing failure must be a 5xx so Stripe redelivers later;
		// a bad signature is a 400 and is never retried against.
		log.Printf("Stripe Webhook: Error handling webhook: %v", err)
		if errors.Is(err, core.ErrWebhookSignature) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook signature verification failed"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook processing error"})
		return
	}

	c.JSON(http.StatusOK, WebhookAckResponse{Received: true})
}

// CancelSubscription handles POST /billing/subscription/cancel.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	var req models.CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	sub, err := h.billingService.CancelSubscription(c.Request.Context(), req.SubscriptionID)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelSubscriptionResponse{Success: true, Subscription: sub})
}
