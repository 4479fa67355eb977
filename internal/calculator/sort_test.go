package calculator

import (
	"reflect"
	"testing"
)

func addresses(balances []ParticipantBalance) []string {
	out := make([]string, len(balances))
	for i, b := range balances {
		out[i] = b.Address
	}
	return out
}

func TestSortBalances(t *testing.T) {
	input := []ParticipantBalance{
		{Address: "0xc", Balance: -10},
		{Address: "0xa", Balance: 25},
		{Address: "0xd", Balance: -10},
		{Address: "0xb", Balance: -5},
	}
	names := map[string]string{"0xa": "zoe", "0xb": "Bob", "0xc": "alice"}

	tests := []struct {
		name  string
		order Order
		want  []string
	}{
		{name: "amount ascending keeps ties in input order", order: Order{Key: SortByAmount}, want: []string{"0xc", "0xd", "0xb", "0xa"}},
		{name: "amount descending", order: Order{Key: SortByAmount, Descending: true}, want: []string{"0xa", "0xb", "0xc", "0xd"}},
		{name: "address", order: Order{Key: SortByAddress}, want: []string{"0xa", "0xb", "0xc", "0xd"}},
		{
			name:  "name falls back to address",
			order: Order{Key: SortByName, Name: func(a string) string { return names[a] }},
			want:  []string{"0xd", "0xc", "0xb", "0xa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := append([]ParticipantBalance(nil), input...)
			SortBalances(balances, tt.order)
			if got := addresses(balances); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortBalances_StableSecondaryKey(t *testing.T) {
	balances := []ParticipantBalance{
		{Address: "0xd", Balance: -10},
		{Address: "0xb", Balance: 5},
		{Address: "0xc", Balance: -10},
		{Address: "0xa", Balance: 5},
	}

	SortBalances(balances, Order{Key: SortByAddress})
	SortBalances(balances, Order{Key: SortByAmount, Descending: true})

	want := []string{"0xa", "0xb", "0xc", "0xd"}
	if got := addresses(balances); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestParseSortKey(t *testing.T) {
	for in, want := range map[string]SortKey{"": SortByAmount, "AMOUNT": SortByAmount, "name": SortByName, "address": SortByAddress} {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSortKey("date"); err == nil {
		t.Error("expected error for unknown key")
	}
}
