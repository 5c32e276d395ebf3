package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"crewboard-backend-go/internal/models"
)

const paymentMethodsCollection = "paymentMethods"

// firestoreCardRepository implements CardRepository using a subcollection
// under each user document: users/{uid}/paymentMethods/{paymentMethodId}.
type firestoreCardRepository struct {
	client *firestore.Client
}

// NewFirestoreCardRepository creates a new saved-card repository.
func NewFirestoreCardRepository(client *firestore.Client) CardRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CardRepository.")
	}
	return &firestoreCardRepository{client: client}
}

func (r *firestoreCardRepository) cardsRef(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(paymentMethodsCollection)
}

// Save mirrors a card document, keyed by the Stripe payment-method ID.
// Merge semantics keep a repeated save (e.g. a retried confirm call) from
// clobbering an isPrimary flag set in between.
func (r *firestoreCardRepository) Save(ctx context.Context, userID string, card *models.SavedCard) error {
	if userID == "" || card == nil || card.ID == "" {
		return errors.New("userID and card ID are required for Save")
	}
	_, err := r.cardsRef(userID).Doc(card.ID).Set(ctx, map[string]interface{}{
		"brand":          card.Brand,
		"last4":          card.Last4,
		"expMonth":       card.ExpMonth,
		"expYear":        card.ExpYear,
		"cardholderName": card.CardholderName,
		"isPrimary":      card.IsPrimary,
		"createdAt":      firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save card '%s' for user '%s': %w", card.ID, userID, err)
	}
	return nil
}

// GetByID retrieves one mirrored card.
func (r *firestoreCardRepository) GetByID(ctx context.Context, userID, paymentMethodID string) (*models.SavedCard, error) {
	if userID == "" || paymentMethodID == "" {
		return nil, errors.New("userID and paymentMethodID are required for GetByID")
	}
	docSnap, err := r.cardsRef(userID).Doc(paymentMethodID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("card '%s' not found: %w", paymentMethodID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card '%s' for user '%s': %w", paymentMethodID, userID, err)
	}

	var card models.SavedCard
	if err := docSnap.DataTo(&card); err != nil {
		return nil, fmt.Errorf("failed to decode card '%s': %w", paymentMethodID, err)
	}
	card.ID = docSnap.Ref.ID
	return &card, nil
}

// ListByUser returns all mirrored cards for a user.
func (r *firestoreCardRepository) ListByUser(ctx context.Context, userID string) ([]*models.SavedCard, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser")
	}
	docSnaps, err := r.cardsRef(userID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for user '%s': %w", userID, err)
	}

	cards := make([]*models.SavedCard, 0, len(docSnaps))
	for _, docSnap := range docSnaps {
		var card models.SavedCard
		if err := docSnap.DataTo(&card); err != nil {
			return nil, fmt.Errorf("failed to decode card '%s': %w", docSnap.Ref.ID, err)
		}
		card.ID = docSnap.Ref.ID
		cards = append(cards, &card)
	}
	return cards, nil
}

// Delete removes a mirrored card document. Deleting an already-deleted
// document is a no-op in Firestore, so the detach flow can safely retry.
func (r *firestoreCardRepository) Delete(ctx context.Context, userID, paymentMethodID string) error {
	if userID == "" || paymentMethodID == "" {
		return errors.New("userID and paymentMethodID are required for Delete")
	}
	_, err := r.cardsRef(userID).Doc(paymentMethodID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete card '%s' for user '%s': %w", paymentMethodID, userID, err)
	}
	return nil
}

// SetPrimary flips the isPrimary flags inside one Firestore transaction so
// that exactly one card ends up primary. Two overlapping calls serialize at
// the database; the last committed transaction wins for every flag at once,
// which closes the two-winners race of a plain batch write.
func (r *firestoreCardRepository) SetPrimary(ctx context.Context, userID, paymentMethodID string) error {
	if userID == "" || paymentMethodID == "" {
		return errors.New("userID and paymentMethodID are required for SetPrimary")
	}

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// All reads must precede all writes inside a Firestore transaction.
		docSnaps, err := tx.Documents(r.cardsRef(userID)).GetAll()
		if err != nil {
			return fmt.Errorf("failed to read cards for user '%s': %w", userID, err)
		}

		found := false
		for _, docSnap := range docSnaps {
			if docSnap.Ref.ID == paymentMethodID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("card '%s' not found for user '%s': %w", paymentMethodID, userID, ErrNotFound)
		}

		for _, docSnap := range docSnaps {
			if err := tx.Set(docSnap.Ref, map[string]interface{}{
				"isPrimary": docSnap.Ref.ID == paymentMethodID,
			}, firestore.MergeAll); err != nil {
				return fmt.Errorf("failed to update primary flag on card '%s': %w", docSnap.Ref.ID, err)
			}
		}
		return nil
	})
}
