package models

import "time"

// Plan names stored on the user document.
const (
	PlanFree    = "Free"
	PlanPremium = "Premium"
)

// Billing frequencies accepted by the checkout flow.
const (
	FrequencyMonthly    = "monthly"
	FrequencyAnnually   = "annually"
	FrequencyBiannually = "biannually"
)

// ValidFrequency reports whether f is one of the supported billing frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyMonthly, FrequencyAnnually, FrequencyBiannually:
		return true
	}
	return false
}

// User represents a user in the system.
// Auth fields (email, display name, photo) originate from Firebase Auth;
// plan and billing fields are owned by this backend and are mutated by the
// webhook receiver and the payment-method flows.
type User struct {
	ID               string    `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email            string    `json:"email" firestore:"email"`
	DisplayName      string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	PhotoURL         string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	Plan             string    `json:"currentPlan" firestore:"currentPlan"` // "Free" or "Premium"
	StripeCustomerID string    `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	SubscriptionID   string    `json:"subscriptionId,omitempty" firestore:"subscriptionId,omitempty"`
	BillingFrequency string    `json:"billingFrequency,omitempty" firestore:"billingFrequency,omitempty"`
	PlanUpdatedAt    time.Time `json:"planUpdatedAt,omitempty" firestore:"planUpdatedAt,omitempty"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
