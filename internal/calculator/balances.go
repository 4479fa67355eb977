package calculator

import (
	"math"
	"sort"

	"github.com/mmynk/suisplit/internal/models"
)

// settleEpsilon is the smallest residue worth a transfer; anything below is float noise.
const settleEpsilon = 0.01

// ParticipantBalance represents the balance information for one address.
type ParticipantBalance struct {
	Address   string
	Balance   float64 // Positive = owed money, Negative = owes money
	TotalPaid float64 // Total fronted across expenses (plus settlements paid)
	TotalOwed float64 // Total share charged across expenses (plus settlements received)

	// Expenses are the valid expenses where this address is the payer or a participant,
	// in input order.
	Expenses []models.Expense
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

// CalculateParticipantBalances computes one balance per address appearing as payer or
// participant in any valid expense. Invalid expenses (see ValidateExpense) are skipped.
//
// Algorithm:
// - For each expense: payer is credited the full amount, each distinct participant owes amount/n
// - Aggregate: balance = total_paid - total_owed
//
// The result is ordered by first appearance in the input, so the same input always yields
// the same output. The input slice and its expenses are never modified.
func CalculateParticipantBalances(expenses []models.Expense) []ParticipantBalance {
	balances := make([]ParticipantBalance, 0)
	index := make(map[string]int)

	slot := func(address string) int {
		if i, ok := index[address]; ok {
			return i
		}
		balances = append(balances, ParticipantBalance{Address: address})
		index[address] = len(balances) - 1
		return len(balances) - 1
	}

	for _, expense := range expenses {
		shares, err := SplitExpense(expense)
		if err != nil {
			continue
		}

		// Walk participants then payer so identities are registered in a stable order.
		involved := expense.DistinctParticipants()
		if !containsAddress(involved, expense.Payer) {
			involved = append(involved, expense.Payer)
		}

		for _, address := range involved {
			i := slot(address)
			share := shares[address]
			balances[i].TotalPaid += share.Paid
			balances[i].TotalOwed += share.Owed
			balances[i].Expenses = append(balances[i].Expenses, expense)
		}
	}

	for i := range balances {
		balances[i].Balance = balances[i].TotalPaid - balances[i].TotalOwed
	}

	return balances
}

// ApplySettlements returns a copy of balances with each settlement applied as a delta:
// the payer's balance improves by the amount and the receiver's decreases by it.
// Settlements with a non-positive amount, a missing side, or the same address on both
// sides are ignored. Addresses not yet present are appended.
func ApplySettlements(balances []ParticipantBalance, settlements []models.Settlement) []ParticipantBalance {
	result := make([]ParticipantBalance, len(balances))
	copy(result, balances)

	index := make(map[string]int, len(result))
	for i, b := range result {
		index[b.Address] = i
	}
	slot := func(address string) int {
		if i, ok := index[address]; ok {
			return i
		}
		result = append(result, ParticipantBalance{Address: address})
		index[address] = len(result) - 1
		return len(result) - 1
	}

	for _, s := range settlements {
		if s.From == "" || s.To == "" || s.From == s.To {
			continue
		}
		if s.Amount <= 0 || math.IsNaN(s.Amount) || math.IsInf(s.Amount, 0) {
			continue
		}

		from := slot(s.From)
		result[from].TotalPaid += s.Amount
		to := slot(s.To)
		result[to].TotalOwed += s.Amount
	}

	for i := range result {
		result[i].Balance = result[i].TotalPaid - result[i].TotalOwed
	}

	return result
}

// SimplifyDebts turns net balances into a short list of transfers that settles everyone.
// Debtors and creditors are matched greedily, largest first; residues under one cent are dropped.
func SimplifyDebts(balances []ParticipantBalance) []DebtEdge {
	type party struct {
		address string
		amount  float64
	}

	var creditors, debtors []party
	for _, b := range balances {
		if b.Balance >= settleEpsilon {
			creditors = append(creditors, party{b.Address, b.Balance})
		} else if b.Balance <= -settleEpsilon {
			debtors = append(debtors, party{b.Address, -b.Balance})
		}
	}

	largestFirst := func(parties []party) {
		sort.SliceStable(parties, func(i, j int) bool {
			if parties[i].amount != parties[j].amount {
				return parties[i].amount > parties[j].amount
			}
			return parties[i].address < parties[j].address
		})
	}
	largestFirst(creditors)
	largestFirst(debtors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := math.Min(debtors[i].amount, creditors[j].amount)

		if amount >= settleEpsilon {
			edges = append(edges, DebtEdge{
				From:   debtors[i].address,
				To:     creditors[j].address,
				Amount: amount,
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < settleEpsilon {
			i++
		}
		if creditors[j].amount < settleEpsilon {
			j++
		}
	}

	return edges
}

// NetTotal sums all balances. For valid input it is zero up to float rounding.
func NetTotal(balances []ParticipantBalance) float64 {
	var total float64
	for _, b := range balances {
		total += b.Balance
	}
	return total
}

func containsAddress(addresses []string, address string) bool {
	for _, a := range addresses {
		if a == address {
			return true
		}
	}
	return false
}
