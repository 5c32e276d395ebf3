package models

import "time"

// Transaction statuses.
const (
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

// Transaction records the outcome of one checkout attempt. The Stripe
// Checkout Session ID is the document ID, so webhook redeliveries for the
// same session overwrite the same document instead of duplicating it.
type Transaction struct {
	ID               string    `json:"id" firestore:"-"`          // Checkout Session ID, used as the document ID
	Status           string    `json:"status" firestore:"status"` // "completed" or "failed"
	PaymentIntentID  string    `json:"paymentIntentId,omitempty" firestore:"paymentIntentId,omitempty"`
	BillingFrequency string    `json:"billingFrequency,omitempty" firestore:"billingFrequency,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
