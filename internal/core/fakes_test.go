package core

import (
	"context"
	"fmt"
	"time"

	"crewboard-backend-go/internal/db"
	"crewboard-backend-go/internal/models"
)

// fakeUserRepo is an in-memory db.UserRepository.
type fakeUserRepo struct {
	users map[string]*models.User
	err   error // returned from every call when set
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.err != nil {
		return r.err
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if r.err != nil {
		return r.err
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

func (r *fakeUserRepo) ApplyPremium(ctx context.Context, userID, subscriptionID, billingFrequency string) error {
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[userID]
	if !ok {
		// Merge semantics create the document when absent.
		u = &models.User{ID: userID}
		r.users[userID] = u
	}
	u.Plan = models.PlanPremium
	u.SubscriptionID = subscriptionID
	u.BillingFrequency = billingFrequency
	u.PlanUpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) ClearSubscription(ctx context.Context, userID string) error {
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	u.Plan = models.PlanFree
	u.SubscriptionID = ""
	u.BillingFrequency = ""
	u.PlanUpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.SubscriptionID == subscriptionID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("subscription '%s': %w", subscriptionID, db.ErrNotFound)
}

// fakeTxnRepo is an in-memory db.TransactionRepository keyed by
// userID then session ID, mirroring the Firestore subcollection layout.
type fakeTxnRepo struct {
	txns map[string]map[string]*models.Transaction
	err  error
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{txns: make(map[string]map[string]*models.Transaction)}
}

func (r *fakeTxnRepo) Upsert(ctx context.Context, userID string, txn *models.Transaction) error {
	if r.err != nil {
		return r.err
	}
	if r.txns[userID] == nil {
		r.txns[userID] = make(map[string]*models.Transaction)
	}
	cp := *txn
	cp.UpdatedAt = time.Now().UTC()
	r.txns[userID][txn.ID] = &cp
	return nil
}

func (r *fakeTxnRepo) GetByID(ctx context.Context, userID, sessionID string) (*models.Transaction, error) {
	if r.err != nil {
		return nil, r.err
	}
	txn, ok := r.txns[userID][sessionID]
	if !ok {
		return nil, fmt.Errorf("transaction '%s': %w", sessionID, db.ErrNotFound)
	}
	cp := *txn
	return &cp, nil
}

func (r *fakeTxnRepo) count(userID string) int {
	return len(r.txns[userID])
}

// fakeCardRepo is an in-memory db.CardRepository.
type fakeCardRepo struct {
	cards map[string]map[string]*models.SavedCard
	err   error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[string]map[string]*models.SavedCard)}
}

func (r *fakeCardRepo) Save(ctx context.Context, userID string, card *models.SavedCard) error {
	if r.err != nil {
		return r.err
	}
	if r.cards[userID] == nil {
		r.cards[userID] = make(map[string]*models.SavedCard)
	}
	cp := *card
	r.cards[userID][card.ID] = &cp
	return nil
}

func (r *fakeCardRepo) GetByID(ctx context.Context, userID, paymentMethodID string) (*models.SavedCard, error) {
	if r.err != nil {
		return nil, r.err
	}
	card, ok := r.cards[userID][paymentMethodID]
	if !ok {
		return nil, fmt.Errorf("card '%s': %w", paymentMethodID, db.ErrNotFound)
	}
	cp := *card
	return &cp, nil
}

func (r *fakeCardRepo) ListByUser(ctx context.Context, userID string) ([]*models.SavedCard, error) {
	if r.err != nil {
		return nil, r.err
	}
	cards := make([]*models.SavedCard, 0, len(r.cards[userID]))
	for _, card := range r.cards[userID] {
		cp := *card
		cards = append(cards, &cp)
	}
	return cards, nil
}

func (r *fakeCardRepo) Delete(ctx context.Context, userID, paymentMethodID string) error {
	if r.err != nil {
		return r.err
	}
	delete(r.cards[userID], paymentMethodID)
	return nil
}

func (r *fakeCardRepo) SetPrimary(ctx context.Context, userID, paymentMethodID string) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.cards[userID][paymentMethodID]; !ok {
		return fmt.Errorf("card '%s': %w", paymentMethodID, db.ErrNotFound)
	}
	for id, card := range r.cards[userID] {
		card.IsPrimary = id == paymentMethodID
	}
	return nil
}

// fakeGateway records calls and returns canned responses.
type fakeGateway struct {
	checkoutCalls []CheckoutParams
	checkoutErr   error

	createdCustomers int
	customerErr      error

	setupIntentCustomers []string
	setupIntentErr       error

	paymentMethods map[string]*PaymentMethodInfo
	getPMErr       error

	detached  []string
	detachErr error

	defaultPM     map[string]string // customerID -> paymentMethodID
	setDefaultErr error

	canceled  []string
	cancelErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		paymentMethods: make(map[string]*PaymentMethodInfo),
		defaultPM:      make(map[string]string),
	}
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	g.checkoutCalls = append(g.checkoutCalls, params)
	return &CheckoutSession{
		ID:  fmt.Sprintf("cs_test_%d", len(g.checkoutCalls)),
		URL: "https://checkout.stripe.com/c/pay/cs_test",
	}, nil
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, uid, email, name string) (string, error) {
	if g.customerErr != nil {
		return "", g.customerErr
	}
	g.createdCustomers++
	return fmt.Sprintf("cus_test_%d", g.createdCustomers), nil
}

func (g *fakeGateway) CreateSetupIntent(ctx context.Context, customerID string) (string, error) {
	if g.setupIntentErr != nil {
		return "", g.setupIntentErr
	}
	g.setupIntentCustomers = append(g.setupIntentCustomers, customerID)
	return "seti_test_secret_123", nil
}

func (g *fakeGateway) GetPaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethodInfo, error) {
	if g.getPMErr != nil {
		return nil, g.getPMErr
	}
	if info, ok := g.paymentMethods[paymentMethodID]; ok {
		cp := *info
		return &cp, nil
	}
	return &PaymentMethodInfo{ID: paymentMethodID, Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2031}, nil
}

func (g *fakeGateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	if g.detachErr != nil {
		return g.detachErr
	}
	g.detached = append(g.detached, paymentMethodID)
	return nil
}

func (g *fakeGateway) SetDefaultPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	if g.setDefaultErr != nil {
		return g.setDefaultErr
	}
	g.defaultPM[customerID] = paymentMethodID
	return nil
}

func (g *fakeGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error) {
	if g.cancelErr != nil {
		return nil, g.cancelErr
	}
	g.canceled = append(g.canceled, subscriptionID)
	return &SubscriptionInfo{ID: subscriptionID, Status: "canceled"}, nil
}
