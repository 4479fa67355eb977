package service

// Balance result states reported by GetBalances.
const (
	StateSuccess = "success"
	StateEmpty   = "empty"
	StateFailed  = "failed"
)

// Group is the wire form of models.Group.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Admin     string `json:"admin,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Expense is the wire form of models.Expense.
type Expense struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
	Merchant     string   `json:"merchant,omitempty"`
	Category     string   `json:"category,omitempty"`
	Date         string   `json:"date,omitempty"`
	Settled      bool     `json:"settled,omitempty"`
}

// Settlement is the wire form of models.Settlement.
type Settlement struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	CreatedAt int64   `json:"created_at"`
	Note      string  `json:"note,omitempty"`
}

// Balance is one participant's position in a group.
type Balance struct {
	Address      string   `json:"address"`
	ShortAddress string   `json:"short_address"`
	Nickname     string   `json:"nickname,omitempty"`
	Balance      float64  `json:"balance"`
	TotalPaid    float64  `json:"total_paid"`
	TotalOwed    float64  `json:"total_owed"`
	Display      string   `json:"display"`
	Settled      bool     `json:"settled"`
	ExpenseIDs   []string `json:"expense_ids"`
}

// Debt is one transfer in the simplified settle-up plan.
type Debt struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Amount  float64 `json:"amount"`
	Display string  `json:"display"`
}

// Summary totals a group's balances.
type Summary struct {
	TotalOwed float64 `json:"total_owed"`
	TotalDebt float64 `json:"total_debt"`
	Pending   int     `json:"pending"`
}

type GetBalancesRequest struct {
	GroupID            string `json:"group_id" validate:"required,max=128"`
	SortBy             string `json:"sort_by" validate:"omitempty,oneof=address name amount"`
	Descending         bool   `json:"descending"`
	Filter             string `json:"filter" validate:"omitempty,oneof=all pending settled"`
	IncludeSettlements bool   `json:"include_settlements"`
}

type GetBalancesResponse struct {
	State    string    `json:"state"`
	Balances []Balance `json:"balances"`
	Debts    []Debt    `json:"debts"`
	Summary  Summary   `json:"summary"`
	// Dropped counts fetched expenses that failed validation and were left out.
	Dropped int `json:"dropped"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"max=64"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

type GetLatestGroupRequest struct{}

type GetLatestGroupResponse struct {
	Group Group `json:"group"`
}

type RecordExpenseRequest struct {
	GroupID      string   `json:"group_id" validate:"required,max=128"`
	Description  string   `json:"description" validate:"required,max=256"`
	Amount       float64  `json:"amount" validate:"gt=0"`
	Payer        string   `json:"payer" validate:"required"`
	Participants []string `json:"participants" validate:"required,min=1,dive,required"`
	Merchant     string   `json:"merchant" validate:"max=128"`
	Category     string   `json:"category" validate:"max=64"`
	Date         string   `json:"date" validate:"max=32"`
}

type RecordExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type RecordSettlementRequest struct {
	GroupID string  `json:"group_id" validate:"required,max=128"`
	To      string  `json:"to" validate:"required"`
	Amount  float64 `json:"amount" validate:"gt=0"`
	Note    string  `json:"note" validate:"max=256"`
}

type RecordSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id" validate:"required,max=128"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id" validate:"required,max=128"`
}

type DeleteSettlementResponse struct{}

type SetNicknameRequest struct {
	// Address defaults to the caller's own address. Naming any other address is rejected.
	Address  string `json:"address"`
	Nickname string `json:"nickname"`
	// Clear removes the nickname instead of setting it.
	Clear bool `json:"clear"`
}

type SetNicknameResponse struct {
	Address  string `json:"address"`
	Nickname string `json:"nickname"`
}

type ListNicknamesRequest struct{}

type ListNicknamesResponse struct {
	Nicknames map[string]string `json:"nicknames"`
}
