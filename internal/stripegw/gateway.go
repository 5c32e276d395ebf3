// Package stripegw implements core.PaymentGateway on top of the Stripe SDK.
package stripegw

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"crewboard-backend-go/internal/core"
)

// Gateway is a Stripe-backed payment gateway. It wraps a dedicated client
// API instance rather than the SDK's package-level globals, so the secret
// key is scoped to this value and tests never touch shared state.
type Gateway struct {
	sc *client.API
}

// New creates a Gateway using the given secret key (sk_test_... or
// sk_live_...).
func New(secretKey string) (*Gateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Gateway{sc: sc}, nil
}

// CreateCheckoutSession requests a subscription-mode hosted checkout session.
// The uid and billing frequency ride in session metadata for webhook
// correlation.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, p core.CheckoutParams) (*core.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Metadata: map[string]string{
			"uid":              p.UID,
			"billingFrequency": p.BillingFrequency,
		},
	}
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	session, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}
	return &core.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CreateCustomer creates a Stripe customer tagged with the user's uid.
func (g *Gateway) CreateCustomer(ctx context.Context, uid, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"uid": uid,
		},
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx

	cust, err := g.sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe customer creation failed: %w", err)
	}
	return cust.ID, nil
}

// CreateSetupIntent issues a card setup intent for off-session future usage
// and returns its client secret.
func (g *Gateway) CreateSetupIntent(ctx context.Context, customerID string) (string, error) {
	params := &stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		Usage:              stripe.String(string(stripe.SetupIntentUsageOffSession)),
		PaymentMethodTypes: []*string{stripe.String("card")},
	}
	params.Context = ctx

	si, err := g.sc.SetupIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe setup intent creation failed: %w", err)
	}
	return si.ClientSecret, nil
}

// GetPaymentMethod retrieves a payment method's card display metadata.
func (g *Gateway) GetPaymentMethod(ctx context.Context, paymentMethodID string) (*core.PaymentMethodInfo, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := g.sc.PaymentMethods.Get(paymentMethodID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment method retrieval failed: %w", err)
	}

	info := &core.PaymentMethodInfo{ID: pm.ID}
	if pm.Card != nil {
		info.Brand = string(pm.Card.Brand)
		info.Last4 = pm.Card.Last4
		info.ExpMonth = pm.Card.ExpMonth
		info.ExpYear = pm.Card.ExpYear
	}
	if pm.BillingDetails != nil {
		info.CardholderName = pm.BillingDetails.Name
	}
	return info, nil
}

// DetachPaymentMethod detaches a payment method from its customer.
func (g *Gateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx

	if _, err := g.sc.PaymentMethods.Detach(paymentMethodID, params); err != nil {
		return fmt.Errorf("stripe payment method detach failed: %w", err)
	}
	return nil
}

// SetDefaultPaymentMethod sets the customer's invoice default payment method.
func (g *Gateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	params.Context = ctx

	if _, err := g.sc.Customers.Update(customerID, params); err != nil {
		return fmt.Errorf("stripe default payment method update failed: %w", err)
	}
	return nil
}

// CancelSubscription cancels the subscription immediately.
func (g *Gateway) CancelSubscription(ctx context.Context, subscriptionID string) (*core.SubscriptionInfo, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := g.sc.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe subscription cancel failed: %w", err)
	}
	return &core.SubscriptionInfo{ID: sub.ID, Status: string(sub.Status)}, nil
}
