package service

import (
	"github.com/mmynk/suisplit/internal/calculator"
	"github.com/mmynk/suisplit/internal/models"
	"github.com/mmynk/suisplit/pkg/format"
)

func toGroup(g *models.Group) Group {
	return Group{
		ID:        g.ID,
		Name:      g.Name,
		Admin:     g.Admin,
		CreatedAt: g.CreatedAt,
	}
}

func toExpense(e *models.Expense) Expense {
	return Expense{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Payer:        e.Payer,
		Participants: e.Participants,
		Merchant:     e.Merchant,
		Category:     e.Category,
		Date:         e.Date,
		Settled:      e.Settled,
	}
}

func toSettlement(s *models.Settlement) Settlement {
	return Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		From:      s.From,
		To:        s.To,
		Amount:    s.Amount,
		CreatedAt: s.CreatedAt,
		Note:      s.Note,
	}
}

func toBalance(b calculator.ParticipantBalance, name string) Balance {
	ids := make([]string, 0, len(b.Expenses))
	for _, e := range b.Expenses {
		ids = append(ids, e.ID)
	}
	return Balance{
		Address:      b.Address,
		ShortAddress: format.ShortAddress(b.Address),
		Nickname:     name,
		Balance:      b.Balance,
		TotalPaid:    b.TotalPaid,
		TotalOwed:    b.TotalOwed,
		Display:      format.Currency(b.Balance, ""),
		Settled:      b.IsSettled(),
		ExpenseIDs:   ids,
	}
}

func settlementValues(settlements []*models.Settlement) []models.Settlement {
	out := make([]models.Settlement, 0, len(settlements))
	for _, s := range settlements {
		out = append(out, *s)
	}
	return out
}
