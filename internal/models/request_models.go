package models

// CreateCheckoutRequest represents the request body for starting a hosted
// checkout session.
type CreateCheckoutRequest struct {
	UID              string `json:"uid" binding:"required"`
	BillingFrequency string `json:"billingFrequency" binding:"required"` // "monthly", "annually" or "biannually"
}

// CreateSetupIntentRequest represents the request body for issuing a Stripe
// SetupIntent for saving a card.
type CreateSetupIntentRequest struct {
	UID string `json:"uid" binding:"required"`
}

// SavePaymentMethodRequest mirrors a confirmed payment method into Firestore.
// The client sends this after the Stripe SDK confirms the setup intent.
type SavePaymentMethodRequest struct {
	UID             string `json:"uid" binding:"required"`
	PaymentMethodID string `json:"paymentMethodId" binding:"required"`
	CardholderName  string `json:"cardholderName,omitempty"`
}

// SetPrimaryPaymentMethodRequest marks one saved card as the user's primary.
type SetPrimaryPaymentMethodRequest struct {
	UID string `json:"uid" binding:"required"`
}

// CancelSubscriptionRequest cancels an active subscription at the gateway.
type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscriptionId" binding:"required"`
}

// SessionRequest carries the Firebase ID token obtained client-side after
// login or signup, to be exchanged for a session cookie.
type SessionRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}
