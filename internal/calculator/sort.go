package calculator

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the field balances are ordered by.
type SortKey string

const (
	SortByAddress SortKey = "address"
	SortByName    SortKey = "name"
	SortByAmount  SortKey = "amount"
)

// ParseSortKey maps a request value to a SortKey. An empty string means SortByAmount.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(s)) {
	case "", SortByAmount:
		return SortByAmount, nil
	case SortByAddress:
		return SortByAddress, nil
	case SortByName:
		return SortByName, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Order describes how SortBalances arranges balances.
type Order struct {
	Key        SortKey
	Descending bool

	// Name resolves an address to a display name for SortByName.
	// Addresses without a name sort by the address itself.
	Name func(address string) string
}

// SortBalances sorts balances in place. The sort is stable, so sorting by a secondary key
// first and then by the primary key keeps ties in secondary order.
func SortBalances(balances []ParticipantBalance, order Order) {
	label := func(address string) string {
		if order.Name != nil {
			if name := order.Name(address); name != "" {
				return strings.ToLower(name)
			}
		}
		return strings.ToLower(address)
	}

	less := func(a, b ParticipantBalance) bool {
		switch order.Key {
		case SortByAddress:
			return a.Address < b.Address
		case SortByName:
			return label(a.Address) < label(b.Address)
		default:
			return a.Balance < b.Balance
		}
	}

	sort.SliceStable(balances, func(i, j int) bool {
		if order.Descending {
			return less(balances[j], balances[i])
		}
		return less(balances[i], balances[j])
	})
}
