package models

// Expense represents a shared cost recorded in a group's ledger.
// An Expense is treated as immutable once constructed; the calculator never modifies one.
type Expense struct {
	// ID is the unique identifier for the expense.
	// On-chain expenses use the object ID; local expenses use a UUID.
	ID string

	// GroupID is the group whose ledger holds this expense.
	GroupID string

	// Description is the human-readable label (e.g., "Dinner", "Taxi to airport").
	Description string

	// Amount is the expense total in SUI. Must be positive and finite.
	Amount float64

	// Payer is the address of the participant who fronted the money.
	// The payer may or may not also appear in Participants.
	Payer string

	// Participants are the addresses sharing the cost.
	// Duplicates are collapsed for the split, but the original order is kept for display.
	Participants []string

	// Merchant, Category and Date are descriptive metadata only.
	Merchant string
	Category string
	Date     string

	// Settled is informational. Settlement happens outside the balance computation.
	Settled bool

	// CreatedAt is the Unix timestamp when the expense was recorded locally.
	CreatedAt int64
}

// DistinctParticipants returns the participants with duplicates and empty entries removed,
// keeping first-occurrence order.
func (e Expense) DistinctParticipants() []string {
	seen := make(map[string]struct{}, len(e.Participants))
	distinct := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}
	return distinct
}

// ExpenseCategory is one of the categories offered when recording an expense.
type ExpenseCategory string

const (
	CategoryFood           ExpenseCategory = "Food & Dining"
	CategoryTransportation ExpenseCategory = "Transportation"
	CategoryEntertainment  ExpenseCategory = "Entertainment"
	CategoryUtilities      ExpenseCategory = "Utilities & Bills"
	CategoryShopping       ExpenseCategory = "Shopping"
	CategoryHealthcare     ExpenseCategory = "Healthcare"
	CategoryTravel         ExpenseCategory = "Travel"
	CategoryOther          ExpenseCategory = "Other"
)
