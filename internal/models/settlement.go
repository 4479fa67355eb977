package models

// Settlement represents a payment between group members to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// From is the address that paid (debtor settling up).
	From string

	// To is the address that received payment (creditor being paid).
	To string

	// Amount is the payment amount in SUI.
	Amount float64

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// Note is an optional description for the settlement.
	Note string
}
