package core

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"crewboard-backend-go/internal/config"
	"crewboard-backend-go/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

func testConfig() *config.Config {
	return &config.Config{
		ClientURL:           "https://app.crewboard.test",
		StripeWebhookSecret: testWebhookSecret,
		PriceTable: map[string]map[string]string{
			"monthly":    {"USD": "price_m_usd", "EUR": "price_m_eur", "BRL": "price_m_brl"},
			"annually":   {"USD": "price_a_usd", "EUR": "price_a_eur", "BRL": "price_a_brl"},
			"biannually": {"USD": "price_b_usd", "EUR": "price_b_eur"}, // BRL deliberately absent
		},
	}
}

// signWebhookPayload produces a Stripe-Signature header value for payload,
// using the documented signed-payload scheme: HMAC-SHA256 over
// "{timestamp}.{payload}".
func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func checkoutCompletedEvent(sessionID, uid, frequency, paymentStatus string) []byte {
	metadata := ""
	if uid != "" {
		metadata = fmt.Sprintf(`"uid": %q, "billingFrequency": %q`, uid, frequency)
	}
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"object": "checkout.session",
				"mode": "subscription",
				"payment_status": %q,
				"payment_intent": "pi_test_1",
				"subscription": "sub_test_1",
				"metadata": {%s}
			}
		}
	}`, stripe.APIVersion, sessionID, paymentStatus, metadata))
}

func subscriptionDeletedEvent(subscriptionID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_2",
		"object": "event",
		"api_version": %q,
		"type": "customer.subscription.deleted",
		"data": {
			"object": {
				"id": %q,
				"object": "subscription",
				"status": "canceled"
			}
		}
	}`, stripe.APIVersion, subscriptionID))
}

func TestCreateCheckoutSession(t *testing.T) {
	ctx := context.Background()

	t.Run("brazilian user gets BRL price with correlation metadata", func(t *testing.T) {
		gateway := newFakeGateway()
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), gateway, testConfig())

		session, err := svc.CreateCheckoutSession(ctx, "u1", models.FrequencyMonthly, "BR")
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.NotEmpty(t, session.URL)

		require.Len(t, gateway.checkoutCalls, 1)
		call := gateway.checkoutCalls[0]
		assert.Equal(t, "price_m_brl", call.PriceID)
		assert.Equal(t, "u1", call.UID)
		assert.Equal(t, models.FrequencyMonthly, call.BillingFrequency)
		assert.Equal(t, "https://app.crewboard.test/settings", call.SuccessURL)
		assert.Equal(t, "https://app.crewboard.test/settings", call.CancelURL)
		assert.NotEmpty(t, call.IdempotencyKey)
	})

	t.Run("unknown country falls back to USD", func(t *testing.T) {
		gateway := newFakeGateway()
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), gateway, testConfig())

		_, err := svc.CreateCheckoutSession(ctx, "u1", models.FrequencyAnnually, "JP")
		require.NoError(t, err)
		require.Len(t, gateway.checkoutCalls, 1)
		assert.Equal(t, "price_a_usd", gateway.checkoutCalls[0].PriceID)
	})

	t.Run("missing price entry fails before any gateway call", func(t *testing.T) {
		gateway := newFakeGateway()
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), gateway, testConfig())

		// biannually x BRL is not configured in testConfig.
		_, err := svc.CreateCheckoutSession(ctx, "u1", models.FrequencyBiannually, "BR")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPriceNotConfigured)
		assert.Empty(t, gateway.checkoutCalls, "gateway must not be called without a configured price")
	})

	t.Run("unsupported frequency is invalid input", func(t *testing.T) {
		gateway := newFakeGateway()
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), gateway, testConfig())

		_, err := svc.CreateCheckoutSession(ctx, "u1", "weekly", "US")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, gateway.checkoutCalls)
	})

	t.Run("missing uid is invalid input", func(t *testing.T) {
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), newFakeGateway(), testConfig())
		_, err := svc.CreateCheckoutSession(ctx, "", models.FrequencyMonthly, "US")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("gateway failure surfaces as gateway error", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.checkoutErr = fmt.Errorf("stripe: boom")
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), gateway, testConfig())

		_, err := svc.CreateCheckoutSession(ctx, "u1", models.FrequencyMonthly, "US")
		assert.ErrorIs(t, err, ErrGateway)
	})
}

func TestHandleStripeWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("paid session records transaction and promotes user", func(t *testing.T) {
		userRepo := newFakeUserRepo(&models.User{ID: "u1", Email: "u1@example.com", Plan: models.PlanFree})
		txnRepo := newFakeTxnRepo()
		svc := NewBillingService(userRepo, txnRepo, newFakeGateway(), testConfig())

		payload := checkoutCompletedEvent("cs_test_1", "u1", "monthly", "paid")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		require.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))

		txn, err := txnRepo.GetByID(ctx, "u1", "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionCompleted, txn.Status)
		assert.Equal(t, "pi_test_1", txn.PaymentIntentID)

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.PlanPremium, user.Plan)
		assert.Equal(t, "monthly", user.BillingFrequency)
		assert.Equal(t, "sub_test_1", user.SubscriptionID)
		assert.False(t, user.PlanUpdatedAt.IsZero())
	})

	t.Run("unpaid session records failure and leaves user untouched", func(t *testing.T) {
		userRepo := newFakeUserRepo(&models.User{ID: "u1", Plan: models.PlanFree})
		txnRepo := newFakeTxnRepo()
		svc := NewBillingService(userRepo, txnRepo, newFakeGateway(), testConfig())

		payload := checkoutCompletedEvent("cs_test_2", "u1", "annually", "unpaid")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		require.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))

		txn, err := txnRepo.GetByID(ctx, "u1", "cs_test_2")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionFailed, txn.Status)

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.PlanFree, user.Plan)
		assert.Empty(t, user.SubscriptionID)
	})

	t.Run("redelivery is idempotent", func(t *testing.T) {
		userRepo := newFakeUserRepo(&models.User{ID: "u1", Plan: models.PlanFree})
		txnRepo := newFakeTxnRepo()
		svc := NewBillingService(userRepo, txnRepo, newFakeGateway(), testConfig())

		payload := checkoutCompletedEvent("cs_test_3", "u1", "monthly", "paid")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		require.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))
		require.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))

		assert.Equal(t, 1, txnRepo.count("u1"), "redelivery must not create a second transaction")
		txn, err := txnRepo.GetByID(ctx, "u1", "cs_test_3")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionCompleted, txn.Status)

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.PlanPremium, user.Plan)
	})

	t.Run("invalid signature never reaches the write path", func(t *testing.T) {
		userRepo := newFakeUserRepo(&models.User{ID: "u1", Plan: models.PlanFree})
		txnRepo := newFakeTxnRepo()
		svc := NewBillingService(userRepo, txnRepo, newFakeGateway(), testConfig())

		payload := checkoutCompletedEvent("cs_test_4", "u1", "monthly", "paid")
		sig := signWebhookPayload(payload, "whsec_wrong_secret", time.Now())
		err := svc.HandleStripeWebhook(ctx, sig, payload)
		assert.ErrorIs(t, err, ErrWebhookSignature)

		assert.Equal(t, 0, txnRepo.count("u1"))
		user, _ := userRepo.GetByID(ctx, "u1")
		assert.Equal(t, models.PlanFree, user.Plan)
	})

	t.Run("session without uid metadata is acknowledged without writes", func(t *testing.T) {
		txnRepo := newFakeTxnRepo()
		svc := NewBillingService(newFakeUserRepo(), txnRepo, newFakeGateway(), testConfig())

		payload := checkoutCompletedEvent("cs_test_5", "", "", "paid")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		require.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))
		assert.Empty(t, txnRepo.txns)
	})

	t.Run("unhandled event types are acknowledged", func(t *testing.T) {
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), newFakeGateway(), testConfig())

		payload := []byte(fmt.Sprintf(`{"id":"evt_x","object":"event","api_version":%q,"type":"invoice.payment_succeeded","data":{"object":{}}}`, stripe.APIVersion))
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		assert.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))
	})

	t.Run("subscription deleted downgrades the owning user", func(t *testing.T) {
		userRepo := newFakeUserRepo(&models.User{
			ID:               "u1",
			Plan:             models.PlanPremium,
			SubscriptionID:   "sub_test_9",
			BillingFrequency: "monthly",
		})
		svc := NewBillingService(userRepo, newFakeTxnRepo(), newFakeGateway(), testConfig())

		payload := subscriptionDeletedEvent("sub_test_9")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		require.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))

		user, err := userRepo.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, models.PlanFree, user.Plan)
		assert.Empty(t, user.SubscriptionID)
		assert.Empty(t, user.BillingFrequency)
	})

	t.Run("subscription deleted for unknown subscription is acknowledged", func(t *testing.T) {
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), newFakeGateway(), testConfig())

		payload := subscriptionDeletedEvent("sub_unknown")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		assert.NoError(t, svc.HandleStripeWebhook(ctx, sig, payload))
	})

	t.Run("transaction write failure surfaces for redelivery", func(t *testing.T) {
		txnRepo := newFakeTxnRepo()
		txnRepo.err = fmt.Errorf("firestore unavailable")
		svc := NewBillingService(newFakeUserRepo(), txnRepo, newFakeGateway(), testConfig())

		payload := checkoutCompletedEvent("cs_test_6", "u1", "monthly", "paid")
		sig := signWebhookPayload(payload, testWebhookSecret, time.Now())
		err := svc.HandleStripeWebhook(ctx, sig, payload)
		assert.ErrorIs(t, err, ErrWebhookProcessing)
	})
}

func TestCancelSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("passes through to the gateway without local writes", func(t *testing.T) {
		userRepo := newFakeUserRepo(&models.User{ID: "u1", Plan: models.PlanPremium, SubscriptionID: "sub_1"})
		gateway := newFakeGateway()
		svc := NewBillingService(userRepo, newFakeTxnRepo(), gateway, testConfig())

		sub, err := svc.CancelSubscription(ctx, "sub_1")
		require.NoError(t, err)
		assert.Equal(t, "sub_1", sub.ID)
		assert.Equal(t, "canceled", sub.Status)
		assert.Equal(t, []string{"sub_1"}, gateway.canceled)

		// The downgrade is the deletion webhook's job, not the cancel call's.
		user, _ := userRepo.GetByID(ctx, "u1")
		assert.Equal(t, models.PlanPremium, user.Plan)
	})

	t.Run("missing subscription id is invalid input", func(t *testing.T) {
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), newFakeGateway(), testConfig())
		_, err := svc.CancelSubscription(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("gateway failure surfaces as gateway error", func(t *testing.T) {
		gateway := newFakeGateway()
		gateway.cancelErr = fmt.Errorf("stripe: no such subscription")
		svc := NewBillingService(newFakeUserRepo(), newFakeTxnRepo(), gateway, testConfig())
		_, err := svc.CancelSubscription(ctx, "sub_1")
		assert.ErrorIs(t, err, ErrGateway)
	})
}
