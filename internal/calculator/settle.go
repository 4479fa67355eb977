package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/suisplit/internal/models"
)

var (
	ErrSelfSettlement     = errors.New("cannot settle with yourself")
	ErrPayerNotMember     = errors.New("payer is not part of this group")
	ErrReceiverNotMember  = errors.New("receiver is not part of this group")
	ErrNothingOwed        = errors.New("payer does not owe anything")
	ErrNotOwed            = errors.New("receiver is not owed anything")
	ErrSettlementTooLarge = errors.New("settlement exceeds the outstanding debt")
)

// ValidateSettlement checks a settlement against the group's current balances.
// The payer must owe money, the receiver must be owed money, and the amount may not
// exceed the smaller of the two by more than one cent.
func ValidateSettlement(balances []ParticipantBalance, s models.Settlement) error {
	if s.Amount <= 0 || math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
		return ErrInvalidAmount
	}
	if s.From == s.To {
		return ErrSelfSettlement
	}

	from, ok := findBalance(balances, s.From)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPayerNotMember, s.From)
	}
	to, ok := findBalance(balances, s.To)
	if !ok {
		return fmt.Errorf("%w: %s", ErrReceiverNotMember, s.To)
	}

	if from.Balance > -settledThreshold {
		return ErrNothingOwed
	}
	if to.Balance < settledThreshold {
		return ErrNotOwed
	}

	limit := math.Min(-from.Balance, to.Balance)
	if s.Amount > limit+settleEpsilon {
		return fmt.Errorf("%w: at most %.2f", ErrSettlementTooLarge, limit)
	}
	return nil
}

func findBalance(balances []ParticipantBalance, address string) (ParticipantBalance, bool) {
	for _, b := range balances {
		if b.Address == address {
			return b, true
		}
	}
	return ParticipantBalance{}, false
}
