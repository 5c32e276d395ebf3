package api

import (
	"crewboard-backend-go/internal/core"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CheckoutResponse returns the hosted checkout redirect for the client.
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// SetupIntentResponse carries the client secret the browser uses for card
// tokenization.
type SetupIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// WebhookAckResponse acknowledges receipt of a gateway webhook event.
type WebhookAckResponse struct {
	Received bool `json:"received"`
}

// CancelSubscriptionResponse returns the canceled subscription.
type CancelSubscriptionResponse struct {
	Success      bool                   `json:"success"`
	Subscription *core.SubscriptionInfo `json:"subscription"`
}

// DetachPaymentMethodResponse returns the detached payment method's detail.
type DetachPaymentMethodResponse struct {
	Success       bool                    `json:"success"`
	PaymentMethod *core.PaymentMethodInfo `json:"paymentMethod"`
}
