package calculator

import (
	"errors"
	"math"

	"github.com/mmynk/suisplit/internal/models"
)

var (
	ErrInvalidAmount      = errors.New("amount must be positive and finite")
	ErrMissingDescription = errors.New("description is required")
	ErrMissingPayer       = errors.New("payer is required")
	ErrNoParticipants     = errors.New("must have at least one participant")
)

// Share is what a single expense contributes to one identity.
type Share struct {
	Paid float64 // Amount fronted by this identity
	Owed float64 // This identity's portion of the cost
}

// Net returns the share's effect on the identity's balance.
func (s Share) Net() float64 {
	return s.Paid - s.Owed
}

// ValidateExpense reports why an expense cannot take part in a split, or nil if it can.
func ValidateExpense(e models.Expense) error {
	if e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return ErrInvalidAmount
	}
	if e.Description == "" {
		return ErrMissingDescription
	}
	if e.Payer == "" {
		return ErrMissingPayer
	}
	if len(e.DistinctParticipants()) == 0 {
		return ErrNoParticipants
	}
	return nil
}

// SplitExpense computes how one expense affects each identity involved in it.
// Every distinct participant is charged amount/n and the payer is credited the full amount,
// so a payer who also participates nets amount*(n-1)/n.
func SplitExpense(e models.Expense) (map[string]Share, error) {
	if err := ValidateExpense(e); err != nil {
		return nil, err
	}

	participants := e.DistinctParticipants()
	perPerson := e.Amount / float64(len(participants))

	shares := make(map[string]Share, len(participants)+1)
	for _, p := range participants {
		shares[p] = Share{Owed: perPerson}
	}

	payer := shares[e.Payer]
	payer.Paid = e.Amount
	shares[e.Payer] = payer

	return shares, nil
}
