package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"crewboard-backend-go/internal/models"
)

const usersCollection = "users"

// ErrNotFound is a common error for when a document is not found in Firestore.
var ErrNotFound = errors.New("document not found")

// firestoreUserRepository implements the UserRepository interface using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new instance of firestoreUserRepository.
func NewFirestoreUserRepository(client *firestore.Client) UserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for UserRepository.")
	}
	return &firestoreUserRepository{client: client}
}

// Create adds a new user document to Firestore. The user.ID (Firebase Auth
// UID) is used as the Firestore document ID. CreatedAt/UpdatedAt are
// populated server-side via the serverTimestamp tag.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s' already exists: %w", user.ID, err)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user document from Firestore by its ID (Firebase Auth UID).
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// Update rewrites the profile fields of an existing user document. The
// billing fields have dedicated mutators below and are not touched here.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, map[string]interface{}{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"photoURL":    user.PhotoURL,
		"updatedAt":   firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// SetStripeCustomerID persists the gateway customer ID created lazily on the
// first payment-method setup.
func (r *firestoreUserRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	if userID == "" || customerID == "" {
		return errors.New("userID and customerID are required for SetStripeCustomerID")
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"stripeCustomerId": customerID,
		"updatedAt":        firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to set stripe customer ID for user '%s': %w", userID, err)
	}
	return nil
}

// ApplyPremium merges the plan promotion written by the webhook receiver.
// The merge write is idempotent: redelivering the same event rewrites the
// same values, only the timestamps move.
func (r *firestoreUserRepository) ApplyPremium(ctx context.Context, userID, subscriptionID, billingFrequency string) error {
	if userID == "" {
		return errors.New("userID is required for ApplyPremium")
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"currentPlan":      models.PlanPremium,
		"subscriptionId":   subscriptionID,
		"billingFrequency": billingFrequency,
		"planUpdatedAt":    time.Now().UTC(),
		"updatedAt":        firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to apply premium plan for user '%s': %w", userID, err)
	}
	return nil
}

// ClearSubscription reverts the user to the free plan. Firestore's Delete
// sentinel removes the subscription fields instead of leaving stale values.
func (r *firestoreUserRepository) ClearSubscription(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID is required for ClearSubscription")
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"currentPlan":      models.PlanFree,
		"subscriptionId":   firestore.Delete,
		"billingFrequency": firestore.Delete,
		"planUpdatedAt":    time.Now().UTC(),
		"updatedAt":        firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to clear subscription for user '%s': %w", userID, err)
	}
	return nil
}

// GetBySubscriptionID finds the user document holding the given gateway
// subscription ID. Subscription IDs are unique per Stripe subscription, so
// the first match is the owner.
func (r *firestoreUserRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	if subscriptionID == "" {
		return nil, errors.New("subscriptionID cannot be empty for GetBySubscriptionID")
	}
	iter := r.client.Collection(usersCollection).
		Where("subscriptionId", "==", subscriptionID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("no user with subscription '%s': %w", subscriptionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by subscription '%s': %w", subscriptionID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user data for subscription '%s': %w", subscriptionID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}
