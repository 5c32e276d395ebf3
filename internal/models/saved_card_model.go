package models

import "time"

// SavedCard is a mirror document of a Stripe payment method, kept under the
// owning user for fast reads. The Stripe payment-method ID is the document
// ID. Card numbers never touch this backend; Stripe tokenizes in the browser
// and only display metadata is mirrored here.
type SavedCard struct {
	ID             string    `json:"id" firestore:"-"` // Stripe payment-method ID, used as the document ID
	Brand          string    `json:"brand" firestore:"brand"`
	Last4          string    `json:"last4" firestore:"last4"`
	ExpMonth       int64     `json:"expMonth" firestore:"expMonth"`
	ExpYear        int64     `json:"expYear" firestore:"expYear"`
	CardholderName string    `json:"cardholderName,omitempty" firestore:"cardholderName,omitempty"`
	IsPrimary      bool      `json:"isPrimary" firestore:"isPrimary"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
