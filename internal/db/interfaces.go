package db

import (
	"context"

	"crewboard-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// SetStripeCustomerID persists a lazily created gateway customer ID.
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	// ApplyPremium promotes the user's plan after a paid checkout.
	ApplyPremium(ctx context.Context, userID, subscriptionID, billingFrequency string) error
	// ClearSubscription downgrades the user to the free plan and clears the
	// subscription fields. Used when the gateway reports a deleted subscription.
	ClearSubscription(ctx context.Context, userID string) error
	// GetBySubscriptionID finds the user owning a gateway subscription.
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
}

// TransactionRepository defines the interface for checkout transaction records.
type TransactionRepository interface {
	// Upsert writes the transaction keyed by its checkout session ID with
	// merge semantics, so redelivered webhook events are idempotent.
	Upsert(ctx context.Context, userID string, txn *models.Transaction) error
	GetByID(ctx context.Context, userID, sessionID string) (*models.Transaction, error)
}

// CardRepository defines the interface for mirrored saved-card documents.
type CardRepository interface {
	Save(ctx context.Context, userID string, card *models.SavedCard) error
	GetByID(ctx context.Context, userID, paymentMethodID string) (*models.SavedCard, error)
	ListByUser(ctx context.Context, userID string) ([]*models.SavedCard, error)
	Delete(ctx context.Context, userID, paymentMethodID string) error
	// SetPrimary flips isPrimary flags so that exactly one card (the given
	// one) is primary once the call returns.
	SetPrimary(ctx context.Context, userID, paymentMethodID string) error
}
