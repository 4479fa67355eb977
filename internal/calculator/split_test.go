package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/mmynk/suisplit/internal/models"
)

func TestValidateExpense(t *testing.T) {
	valid := models.Expense{
		ID:           "e1",
		Description:  "Dinner",
		Amount:       30,
		Payer:        "0xA",
		Participants: []string{"0xA", "0xB"},
	}

	tests := []struct {
		name    string
		mutate  func(e *models.Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(e *models.Expense) {}},
		{name: "zero amount", mutate: func(e *models.Expense) { e.Amount = 0 }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(e *models.Expense) { e.Amount = -5 }, wantErr: ErrInvalidAmount},
		{name: "NaN amount", mutate: func(e *models.Expense) { e.Amount = math.NaN() }, wantErr: ErrInvalidAmount},
		{name: "infinite amount", mutate: func(e *models.Expense) { e.Amount = math.Inf(1) }, wantErr: ErrInvalidAmount},
		{name: "empty description", mutate: func(e *models.Expense) { e.Description = "" }, wantErr: ErrMissingDescription},
		{name: "missing payer", mutate: func(e *models.Expense) { e.Payer = "" }, wantErr: ErrMissingPayer},
		{name: "no participants", mutate: func(e *models.Expense) { e.Participants = nil }, wantErr: ErrNoParticipants},
		{name: "only blank participants", mutate: func(e *models.Expense) { e.Participants = []string{"", ""} }, wantErr: ErrNoParticipants},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			e.Participants = append([]string(nil), valid.Participants...)
			tt.mutate(&e)

			err := ValidateExpense(e)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitExpense(t *testing.T) {
	tests := []struct {
		name    string
		expense models.Expense
		want    map[string]float64 // net per address
	}{
		{
			name: "payer included",
			expense: models.Expense{
				Description: "Groceries", Amount: 90, Payer: "A",
				Participants: []string{"A", "B", "C"},
			},
			want: map[string]float64{"A": 60, "B": -30, "C": -30},
		},
		{
			name: "payer excluded",
			expense: models.Expense{
				Description: "Gift", Amount: 30, Payer: "A",
				Participants: []string{"B", "C"},
			},
			want: map[string]float64{"A": 30, "B": -15, "C": -15},
		},
		{
			name: "payer is the only participant",
			expense: models.Expense{
				Description: "Coffee", Amount: 4.5, Payer: "A",
				Participants: []string{"A"},
			},
			want: map[string]float64{"A": 0},
		},
		{
			name: "duplicates collapse",
			expense: models.Expense{
				Description: "Taxi", Amount: 20, Payer: "A",
				Participants: []string{"B", "B", "C"},
			},
			want: map[string]float64{"A": 20, "B": -10, "C": -10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitExpense(tt.expense)
			if err != nil {
				t.Fatalf("SplitExpense() error = %v", err)
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			var sum float64
			for address, want := range tt.want {
				got := shares[address].Net()
				if math.Abs(got-want) > 0.01 {
					t.Errorf("%s net = %v, want %v", address, got, want)
				}
				sum += got
			}
			if math.Abs(sum) > 1e-9 {
				t.Errorf("shares sum to %v, want 0", sum)
			}
		})
	}
}

func TestSplitExpense_Invalid(t *testing.T) {
	_, err := SplitExpense(models.Expense{Description: "Nothing", Amount: 10, Payer: "A"})
	if !errors.Is(err, ErrNoParticipants) {
		t.Errorf("SplitExpense() error = %v, want %v", err, ErrNoParticipants)
	}
}
