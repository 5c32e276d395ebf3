package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"crewboard-backend-go/internal/db"
	"crewboard-backend-go/internal/models"
)

// Sentinel errors for payment-method operations.
var (
	ErrCardNotFound      = errors.New("payment method not found")
	ErrCustomerNotLinked = errors.New("user has no payment gateway customer")
)

// paymentMethodService implements the PaymentMethodService interface.
type paymentMethodService struct {
	userRepo db.UserRepository
	cardRepo db.CardRepository
	gateway  PaymentGateway
}

// NewPaymentMethodService creates a new paymentMethodService.
func NewPaymentMethodService(userRepo db.UserRepository, cardRepo db.CardRepository, gateway PaymentGateway) PaymentMethodService {
	return &paymentMethodService{
		userRepo: userRepo,
		cardRepo: cardRepo,
		gateway:  gateway,
	}
}

// ensureCustomer returns the user's gateway customer ID, creating the
// customer lazily on first use and persisting the new ID on the user
// document before returning it.
func (s *paymentMethodService) ensureCustomer(ctx context.Context, uid string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: user '%s'", ErrUserNotFound, uid)
		}
		return "", fmt.Errorf("failed to load user '%s': %w", uid, err)
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, uid, user.Email, user.DisplayName)
	if err != nil {
		return "", fmt.Errorf("%w: create customer for user '%s': %v", ErrGateway, uid, err)
	}
	if err := s.userRepo.SetStripeCustomerID(ctx, uid, customerID); err != nil {
		return "", fmt.Errorf("failed to persist customer ID for user '%s': %w", uid, err)
	}

	log.Printf("Created gateway customer '%s' for user '%s'", customerID, uid)
	return customerID, nil
}

// CreateSetupIntent issues a setup intent scoped to off-session future
// usage and returns its client secret for browser-side card tokenization.
func (s *paymentMethodService) CreateSetupIntent(ctx context.Context, uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}

	customerID, err := s.ensureCustomer(ctx, uid)
	if err != nil {
		return "", err
	}

	clientSecret, err := s.gateway.CreateSetupIntent(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("%w: create setup intent for user '%s': %v", ErrGateway, uid, err)
	}
	return clientSecret, nil
}

// SavePaymentMethod fetches the confirmed payment method's display metadata
// from the gateway and mirrors it as a SavedCard with isPrimary=false.
func (s *paymentMethodService) SavePaymentMethod(ctx context.Context, uid, paymentMethodID, cardholderName string) (*models.SavedCard, error) {
	if uid == "" || paymentMethodID == "" {
		return nil, fmt.Errorf("%w: uid and paymentMethodId are required", ErrInvalidInput)
	}

	info, err := s.gateway.GetPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve payment method '%s': %v", ErrGateway, paymentMethodID, err)
	}

	name := cardholderName
	if name == "" {
		name = info.CardholderName
	}
	card := &models.SavedCard{
		ID:             info.ID,
		Brand:          info.Brand,
		Last4:          info.Last4,
		ExpMonth:       info.ExpMonth,
		ExpYear:        info.ExpYear,
		CardholderName: name,
		IsPrimary:      false,
	}
	if err := s.cardRepo.Save(ctx, uid, card); err != nil {
		return nil, fmt.Errorf("failed to mirror payment method '%s' for user '%s': %w", paymentMethodID, uid, err)
	}

	log.Printf("Mirrored payment method '%s' (%s •••• %s) for user '%s'", card.ID, card.Brand, card.Last4, uid)
	return card, nil
}

// GetPaymentMethod returns one gateway payment method's display detail.
func (s *paymentMethodService) GetPaymentMethod(ctx context.Context, paymentMethodID string) (*PaymentMethodInfo, error) {
	if paymentMethodID == "" {
		return nil, fmt.Errorf("%w: paymentMethodId is required", ErrInvalidInput)
	}
	info, err := s.gateway.GetPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve payment method '%s': %v", ErrGateway, paymentMethodID, err)
	}
	return info, nil
}

// ListSavedCards returns the user's mirrored cards.
func (s *paymentMethodService) ListSavedCards(ctx context.Context, uid string) ([]*models.SavedCard, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrInvalidInput)
	}
	cards, err := s.cardRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user '%s': %w", uid, err)
	}
	return cards, nil
}

// DetachPaymentMethod removes the method at the gateway first (the source of
// truth), then deletes the mirror document. A gateway failure leaves the
// mirror in place, so the client keeps showing a card that still exists at
// the gateway and can retry; the reverse order could delete the mirror for a
// card that was never detached.
func (s *paymentMethodService) DetachPaymentMethod(ctx context.Context, uid, paymentMethodID string) (*PaymentMethodInfo, error) {
	if uid == "" || paymentMethodID == "" {
		return nil, fmt.Errorf("%w: uid and paymentMethodId are required", ErrInvalidInput)
	}

	info, err := s.gateway.GetPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve payment method '%s': %v", ErrGateway, paymentMethodID, err)
	}

	if err := s.gateway.DetachPaymentMethod(ctx, paymentMethodID); err != nil {
		return nil, fmt.Errorf("%w: detach payment method '%s': %v", ErrGateway, paymentMethodID, err)
	}
	if err := s.cardRepo.Delete(ctx, uid, paymentMethodID); err != nil {
		return nil, fmt.Errorf("failed to delete mirror for payment method '%s': %w", paymentMethodID, err)
	}

	log.Printf("Detached payment method '%s' for user '%s'", paymentMethodID, uid)
	return info, nil
}

// SetPrimaryPaymentMethod updates the gateway customer's default payment
// method, then flips the mirrored isPrimary flags in one Firestore
// transaction so exactly one card is primary.
func (s *paymentMethodService) SetPrimaryPaymentMethod(ctx context.Context, uid, paymentMethodID string) error {
	if uid == "" || paymentMethodID == "" {
		return fmt.Errorf("%w: uid and paymentMethodId are required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user '%s'", ErrUserNotFound, uid)
		}
		return fmt.Errorf("failed to load user '%s': %w", uid, err)
	}
	if user.StripeCustomerID == "" {
		return fmt.Errorf("%w: user '%s'", ErrCustomerNotLinked, uid)
	}

	if err := s.gateway.SetDefaultPaymentMethod(ctx, user.StripeCustomerID, paymentMethodID); err != nil {
		return fmt.Errorf("%w: set default payment method '%s': %v", ErrGateway, paymentMethodID, err)
	}

	if err := s.cardRepo.SetPrimary(ctx, uid, paymentMethodID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrCardNotFound, paymentMethodID)
		}
		return fmt.Errorf("failed to update primary flags for user '%s': %w", uid, err)
	}

	log.Printf("Payment method '%s' is now primary for user '%s'", paymentMethodID, uid)
	return nil
}
