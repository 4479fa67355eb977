package calculator

import (
	"math"
	"reflect"
	"testing"
)

func TestFilterBalances(t *testing.T) {
	balances := []ParticipantBalance{
		{Address: "A", Balance: 15},
		{Address: "B", Balance: 0.001},
		{Address: "C", Balance: -15.001},
		{Address: "D", Balance: 0},
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"A", "B", "C", "D"}},
		{FilterPending, []string{"A", "C"}},
		{FilterSettled, []string{"B", "D"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := addresses(FilterBalances(balances, tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterBalances(%s) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]ParticipantBalance{
		{Address: "A", Balance: 75},
		{Address: "B", Balance: -15},
		{Address: "C", Balance: -15},
		{Address: "D", Balance: -45},
		{Address: "E", Balance: 0},
	})

	if math.Abs(s.TotalOwed-75) > 0.01 {
		t.Errorf("TotalOwed = %v, want 75", s.TotalOwed)
	}
	if math.Abs(s.TotalDebt-75) > 0.01 {
		t.Errorf("TotalDebt = %v, want 75", s.TotalDebt)
	}
	if s.Pending != 4 {
		t.Errorf("Pending = %d, want 4", s.Pending)
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := ParseFilter(""); err != nil || f != FilterAll {
		t.Errorf("ParseFilter(\"\") = %v, %v", f, err)
	}
	if f, err := ParseFilter("Pending"); err != nil || f != FilterPending {
		t.Errorf("ParseFilter(Pending) = %v, %v", f, err)
	}
	if _, err := ParseFilter("overdue"); err == nil {
		t.Error("expected error for unknown filter")
	}
}
