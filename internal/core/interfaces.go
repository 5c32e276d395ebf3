package core

import (
	"context"
	"time"

	"crewboard-backend-go/internal/models"
)

// CheckoutSession is the subset of a gateway checkout session the API
// exposes: the hosted-page redirect URL and the session ID used later to key
// the transaction record.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// PaymentMethodInfo carries the display metadata of a gateway payment method.
type PaymentMethodInfo struct {
	ID             string `json:"id"`
	Brand          string `json:"brand"`
	Last4          string `json:"last4"`
	ExpMonth       int64  `json:"expMonth"`
	ExpYear        int64  `json:"expYear"`
	CardholderName string `json:"cardholderName,omitempty"`
}

// SubscriptionInfo describes a gateway subscription after a mutation.
type SubscriptionInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CheckoutParams are the inputs for creating a hosted checkout session.
type CheckoutParams struct {
	PriceID          string
	UID              string
	BillingFrequency string
	SuccessURL       string
	CancelURL        string
	IdempotencyKey   string
}

// PaymentGateway abstracts the payment provider. The production
// implementation lives in internal/stripegw; tests substitute a fake.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreateCustomer(ctx context.Context, uid, email, name string) (string, error)
	CreateSetupIntent(ctx context.Context, customerID string) (string, error)
	GetPaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethodInfo, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
	SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error)
}

// UserService defines the interface for user-profile operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID, creating a free-plan profile if
	// none exists. The bool reports whether a profile was created.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// BillingService owns the subscription billing lifecycle: checkout session
// creation, webhook-driven state reconciliation and cancellation.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, uid, billingFrequency, countryCode string) (*CheckoutSession, error)
	// HandleStripeWebhook verifies the signature against the signing secret
	// before any parsing, then applies the event to Firestore.
	HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error
	CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error)
}

// PaymentMethodService manages gateway payment methods and their Firestore
// mirror documents.
type PaymentMethodService interface {
	CreateSetupIntent(ctx context.Context, uid string) (string, error)
	SavePaymentMethod(ctx context.Context, uid, paymentMethodID, cardholderName string) (*models.SavedCard, error)
	GetPaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethodInfo, error)
	ListSavedCards(ctx context.Context, uid string) ([]*models.SavedCard, error)
	DetachPaymentMethod(ctx context.Context, uid, paymentMethodID string) (*PaymentMethodInfo, error)
	SetPrimaryPaymentMethod(ctx context.Context, uid, paymentMethodID string) error
}

// SessionService exchanges Firebase ID tokens for signed session cookies.
type SessionService interface {
	IssueSessionCookie(ctx context.Context, idToken string) (cookie string, maxAge time.Duration, err error)
}
