package calculator

import (
	"fmt"
	"math"
	"strings"
)

// settledThreshold is the magnitude below which a balance displays as 0.00.
const settledThreshold = 0.005

// Filter selects balances by settlement status.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterPending Filter = "pending"
	FilterSettled Filter = "settled"
)

// ParseFilter maps a request value to a Filter. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(s)) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPending:
		return FilterPending, nil
	case FilterSettled:
		return FilterSettled, nil
	default:
		return "", fmt.Errorf("unknown filter %q", s)
	}
}

// IsSettled reports whether a balance rounds to zero at display precision.
func (b ParticipantBalance) IsSettled() bool {
	return math.Abs(b.Balance) < settledThreshold
}

// FilterBalances returns the balances matching f, in their original order.
func FilterBalances(balances []ParticipantBalance, f Filter) []ParticipantBalance {
	out := make([]ParticipantBalance, 0, len(balances))
	for _, b := range balances {
		switch f {
		case FilterPending:
			if b.IsSettled() {
				continue
			}
		case FilterSettled:
			if !b.IsSettled() {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// Summary aggregates a set of balances for display.
type Summary struct {
	TotalOwed float64 // Sum of positive balances
	TotalDebt float64 // Sum of magnitudes of negative balances
	Pending   int     // Participants whose balance is not settled
}

// Summarize computes totals over balances. For valid input TotalOwed equals TotalDebt.
func Summarize(balances []ParticipantBalance) Summary {
	var s Summary
	for _, b := range balances {
		if b.Balance > 0 {
			s.TotalOwed += b.Balance
		} else {
			s.TotalDebt -= b.Balance
		}
		if !b.IsSettled() {
			s.Pending++
		}
	}
	return s
}
