package models

// Group represents an expense ledger shared by a set of participants.
// For the Sui backend the ID is the ExpenseGroup object ID.
type Group struct {
	// ID is the unique identifier for the group (UUID or on-chain object ID).
	ID string

	// Name is the display name of the group (e.g., "Default Group", "Lisbon trip").
	Name string

	// Admin is the address that created the group.
	Admin string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
