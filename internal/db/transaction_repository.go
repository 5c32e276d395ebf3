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

const transactionsCollection = "transactions"

// firestoreTransactionRepository implements TransactionRepository using a
// subcollection under each user document:
// users/{uid}/transactions/{checkoutSessionId}.
type firestoreTransactionRepository struct {
	client *firestore.Client
}

// NewFirestoreTransactionRepository creates a new transaction repository.
func NewFirestoreTransactionRepository(client *firestore.Client) TransactionRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for TransactionRepository.")
	}
	return &firestoreTransactionRepository{client: client}
}

// Upsert writes the transaction with merge semantics. The checkout session
// ID is the document ID, which makes webhook redelivery a no-op rewrite of
// the same document rather than a duplicate.
func (r *firestoreTransactionRepository) Upsert(ctx context.Context, userID string, txn *models.Transaction) error {
	if userID == "" || txn == nil || txn.ID == "" {
		return errors.New("userID and transaction ID are required for Upsert")
	}
	// MergeAll requires map data, so the model is flattened here.
	_, err := r.client.Collection(usersCollection).Doc(userID).
		Collection(transactionsCollection).Doc(txn.ID).
		Set(ctx, map[string]interface{}{
			"status":           txn.Status,
			"paymentIntentId":  txn.PaymentIntentID,
			"billingFrequency": txn.BillingFrequency,
			"updatedAt":        firestore.ServerTimestamp,
		}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction '%s' for user '%s': %w", txn.ID, userID, err)
	}
	return nil
}

// GetByID retrieves one transaction by its checkout session ID.
func (r *firestoreTransactionRepository) GetByID(ctx context.Context, userID, sessionID string) (*models.Transaction, error) {
	if userID == "" || sessionID == "" {
		return nil, errors.New("userID and sessionID are required for GetByID")
	}
	docSnap, err := r.client.Collection(usersCollection).Doc(userID).
		Collection(transactionsCollection).Doc(sessionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("transaction '%s' not found: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction '%s' for user '%s': %w", sessionID, userID, err)
	}

	var txn models.Transaction
	if err := docSnap.DataTo(&txn); err != nil {
		return nil, fmt.Errorf("failed to decode transaction '%s': %w", sessionID, err)
	}
	txn.ID = docSnap.Ref.ID
	return &txn, nil
}
