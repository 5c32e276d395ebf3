package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"crewboard-backend-go/internal/config"
	"crewboard-backend-go/internal/db"
	"crewboard-backend-go/internal/models"
)

// Sentinel errors for billing operations. Handlers map these to HTTP
// statuses with errors.Is; nothing discriminates on error text.
var (
	ErrInvalidInput       = errors.New("invalid billing input")
	ErrPriceNotConfigured = errors.New("no price configured for billing frequency and currency")
	ErrGateway            = errors.New("payment gateway operation failed")
	ErrWebhookSignature   = errors.New("webhook signature verification failed")
	ErrWebhookProcessing  = errors.New("webhook processing failed")
)

// billingService implements the BillingService interface.
type billingService struct {
	userRepo  db.UserRepository
	txnRepo   db.TransactionRepository
	gateway   PaymentGateway
	appConfig *config.Config
}

// NewBillingService creates a new billingService.
func NewBillingService(
	userRepo db.UserRepository,
	txnRepo db.TransactionRepository,
	gateway PaymentGateway,
	appConfig *config.Config,
) BillingService {
	return &billingService{
		userRepo:  userRepo,
		txnRepo:   txnRepo,
		gateway:   gateway,
		appConfig: appConfig,
	}
}

// CreateCheckoutSession resolves the price for (billingFrequency x detected
// currency) and requests a subscription-mode hosted checkout session. The
// uid and billing frequency travel in session metadata so the webhook can
// correlate the completed session back to the user.
func (s *billingService) CreateCheckoutSession(ctx context.Context, uid, billingFrequency, countryCode string) (*CheckoutSession, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	if !models.ValidFrequency(billingFrequency) {
		return nil, fmt.Errorf("%w: unsupported billing frequency '%s'", ErrInvalidInput, billingFrequency)
	}

	currency := CurrencyForCountry(countryCode)
	priceID := s.appConfig.PriceID(billingFrequency, currency)
	if priceID == "" {
		// Configuration gap, not caller error. No gateway call is made.
		return nil, fmt.Errorf("%w: frequency '%s', currency '%s'", ErrPriceNotConfigured, billingFrequency, currency)
	}

	settingsURL := s.appConfig.ClientURL + "/settings"
	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		PriceID:          priceID,
		UID:              uid,
		BillingFrequency: billingFrequency,
		SuccessURL:       settingsURL,
		CancelURL:        settingsURL,
		IdempotencyKey:   uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrGateway, err)
	}

	log.Printf("Created checkout session '%s' for user '%s' (frequency=%s, currency=%s)", session.ID, uid, billingFrequency, currency)
	return session, nil
}

// HandleStripeWebhook verifies the event signature and applies the event.
// Only checkout.session.completed and customer.subscription.deleted mutate
// state; every other event type is acknowledged and ignored so new gateway
// event types never break delivery.
func (s *billingService) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	event, err := webhook.ConstructEvent(payload, signature, s.appConfig.StripeWebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("%w: unmarshal checkout session: %v", ErrWebhookProcessing, err)
		}
		return s.handleCheckoutCompleted(ctx, &session)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: unmarshal subscription: %v", ErrWebhookProcessing, err)
		}
		return s.handleSubscriptionDeleted(ctx, &sub)
	}

	return nil
}

// handleCheckoutCompleted writes the transaction record for the session and,
// when payment succeeded, promotes the user's plan. A write failure bubbles
// up as an error so the gateway's at-least-once redelivery retries; the
// merge writes keyed by session ID make the retry idempotent.
func (s *billingService) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	uid := session.Metadata["uid"]
	if uid == "" {
		// Not a session this backend initiated. Acknowledge without writes.
		log.Printf("Webhook: checkout session '%s' carries no uid metadata, ignoring", session.ID)
		return nil
	}
	billingFrequency := session.Metadata["billingFrequency"]

	paid := session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid

	txn := &models.Transaction{
		ID:               session.ID,
		Status:           models.TransactionFailed,
		BillingFrequency: billingFrequency,
	}
	if paid {
		txn.Status = models.TransactionCompleted
	}
	if session.PaymentIntent != nil {
		txn.PaymentIntentID = session.PaymentIntent.ID
	}
	if err := s.txnRepo.Upsert(ctx, uid, txn); err != nil {
		return fmt.Errorf("%w: record transaction for session '%s': %v", ErrWebhookProcessing, session.ID, err)
	}

	if !paid {
		log.Printf("Webhook: checkout session '%s' not paid (status=%s), user '%s' left untouched", session.ID, session.PaymentStatus, uid)
		return nil
	}

	var subscriptionID string
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}
	if err := s.userRepo.ApplyPremium(ctx, uid, subscriptionID, billingFrequency); err != nil {
		return fmt.Errorf("%w: promote user '%s': %v", ErrWebhookProcessing, uid, err)
	}

	log.Printf("Webhook: user '%s' promoted to %s (subscription=%s)", uid, models.PlanPremium, subscriptionID)
	return nil
}

// handleSubscriptionDeleted downgrades the owning user when the gateway
// reports the subscription gone. This covers cancellations from every path,
// including ones initiated outside this backend.
func (s *billingService) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userRepo.GetBySubscriptionID(ctx, sub.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Printf("Webhook: no user holds subscription '%s', ignoring", sub.ID)
			return nil
		}
		return fmt.Errorf("%w: look up subscription '%s': %v", ErrWebhookProcessing, sub.ID, err)
	}

	if err := s.userRepo.ClearSubscription(ctx, user.ID); err != nil {
		return fmt.Errorf("%w: downgrade user '%s': %v", ErrWebhookProcessing, user.ID, err)
	}

	log.Printf("Webhook: user '%s' downgraded to %s after subscription '%s' was deleted", user.ID, models.PlanFree, sub.ID)
	return nil
}

// CancelSubscription cancels the subscription at the gateway. Local plan
// state is deliberately untouched here; the customer.subscription.deleted
// webhook performs the downgrade so dashboard-initiated cancellations are
// handled identically.
func (s *billingService) CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscriptionId is required", ErrInvalidInput)
	}

	sub, err := s.gateway.CancelSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%w: cancel subscription '%s': %v", ErrGateway, subscriptionID, err)
	}

	log.Printf("Canceled subscription '%s' (status=%s)", sub.ID, sub.Status)
	return sub, nil
}
