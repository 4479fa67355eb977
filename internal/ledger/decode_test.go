package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/suisplit/internal/calculator"
)

const expenseType = "0x5ecf::expense_splitter::Expense"

func TestDecodeExpenses_SuiWrapped(t *testing.T) {
	raw := []byte(`[
		{
			"type": "0x5ecf::expense_splitter::Expense",
			"fields": {
				"id": {"id": "0xe1"},
				"amount": "90000000000",
				"description": "Dinner",
				"payer": "0xA",
				"participants": ["0xA", "0xB", "0xC"],
				"merchant": "Taqueria",
				"category": "Food & Dining",
				"settled": false
			}
		}
	]`)

	expenses, report, err := DecodeExpenses(raw, DecodeOptions{TypeTag: expenseType, GroupID: "0xgroup"})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 1, report.Total)
	assert.Zero(t, report.Dropped())

	e := expenses[0]
	assert.Equal(t, "0xe1", e.ID)
	assert.Equal(t, "0xgroup", e.GroupID)
	assert.InDelta(t, 90.0, e.Amount, 1e-9)
	assert.Equal(t, "Dinner", e.Description)
	// Addresses are lowercased so one wallet is one identity.
	assert.Equal(t, "0xa", e.Payer)
	assert.Equal(t, []string{"0xa", "0xb", "0xc"}, e.Participants)
	assert.Equal(t, "Taqueria", e.Merchant)
	assert.Equal(t, "Food & Dining", e.Category)
}

func TestDecodeExpenses_BareRecordsInSUI(t *testing.T) {
	raw := []byte(`[
		{"id": "e1", "amount": 30, "description": "Gift", "payer": "0xa", "participants": ["0xb", "0xc"]},
		{"id": "e2", "amount": "12.5", "description": "Taxi", "payer": "0xb", "participants": ["0xb", "0xb", "0xc"], "settled": true}
	]`)

	expenses, report, err := DecodeExpenses(raw, DecodeOptions{AmountsInSUI: true})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Zero(t, report.Dropped())
	assert.InDelta(t, 30.0, expenses[0].Amount, 1e-9)
	assert.InDelta(t, 12.5, expenses[1].Amount, 1e-9)
	assert.True(t, expenses[1].Settled)
	// Duplicates are kept here; they collapse only in the split.
	assert.Equal(t, []string{"0xb", "0xb", "0xc"}, expenses[1].Participants)

	balances := calculator.CalculateParticipantBalances(expenses)
	assert.InDelta(t, 0.0, calculator.NetTotal(balances), 1e-9)
}

func TestDecodeExpenses_DropsInvalidRecords(t *testing.T) {
	raw := []byte(`[
		{"id": "ok", "amount": "1000000000", "description": "Coffee", "payer": "0xa", "participants": ["0xa", "0xb"]},
		{"id": "neg", "amount": "-5", "description": "Refund", "payer": "0xa", "participants": ["0xa"]},
		{"id": "zero", "amount": 0, "description": "Nothing", "payer": "0xa", "participants": ["0xa"]},
		{"id": "nan", "amount": "NaN", "description": "Broken", "payer": "0xa", "participants": ["0xa"]},
		{"id": "noamount", "description": "Missing", "payer": "0xa", "participants": ["0xa"]},
		{"id": "nodesc", "amount": "10", "description": "", "payer": "0xa", "participants": ["0xa"]},
		{"id": "nopayer", "amount": "10", "description": "Orphan", "participants": ["0xa"]},
		{"id": "empty", "amount": "10", "description": "Nobody", "payer": "0xa", "participants": []},
		{"id": "notlist", "amount": "10", "description": "Scalar", "payer": "0xa", "participants": "0xa"},
		{"id": "numbers", "amount": "10", "description": "Numbers", "payer": "0xa", "participants": [1, 2]},
		{"id": "badpayer", "amount": "10", "description": "Alias", "payer": "alice", "participants": ["0xa"]},
		{"id": "badparticipant", "amount": "10", "description": "Alias", "payer": "0xa", "participants": ["0xa", "bob"]},
		{"type": 7, "fields": {"id": "badtype", "amount": "10", "description": "Typed", "payer": "0xa", "participants": ["0xa"]}},
		"not an object",
		null
	]`)

	expenses, report, err := DecodeExpenses(raw, DecodeOptions{})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "ok", expenses[0].ID)
	assert.InDelta(t, 1.0, expenses[0].Amount, 1e-9)

	assert.Equal(t, 15, report.Total)
	reasons := make(map[string]string)
	for _, rej := range report.Rejected {
		reasons[rej.ID] = rej.Reason
	}
	assert.Equal(t, map[string]string{
		"neg":            ReasonInvalidAmount,
		"zero":           ReasonInvalidAmount,
		"nan":            ReasonInvalidAmount,
		"noamount":       ReasonInvalidAmount,
		"nodesc":         ReasonMissingDescription,
		"nopayer":        ReasonMissingPayer,
		"empty":          ReasonInvalidParticipants,
		"notlist":        ReasonInvalidParticipants,
		"numbers":        ReasonInvalidParticipants,
		"badpayer":       ReasonInvalidAddress,
		"badparticipant": ReasonInvalidAddress,
		"#12":            ReasonMalformed,
		"#13":            ReasonMalformed,
		"#14":            ReasonMalformed,
	}, reasons)
}

func TestDecodeExpenses_TypeTagFilter(t *testing.T) {
	raw := []byte(`[
		{"type": "0x5ecf::expense_splitter::Expense", "fields": {"amount": "2000000000", "description": "Fuel", "payer": "0xa", "participants": ["0xb"]}},
		{"type": "0x9999::other::Thing", "fields": {"amount": "2000000000", "description": "Fuel", "payer": "0xa", "participants": ["0xb"]}}
	]`)

	expenses, report, err := DecodeExpenses(raw, DecodeOptions{TypeTag: expenseType})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, expenseType+"#0", expenses[0].ID)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, ReasonWrongType, report.Rejected[0].Reason)
	assert.Equal(t, 1, report.Rejected[0].Index)
}

func TestDecodeExpenses_InputShape(t *testing.T) {
	for _, raw := range []string{`{"expenses": []}`, `"expenses"`, `42`, `[1, 2`} {
		_, _, err := DecodeExpenses([]byte(raw), DecodeOptions{})
		assert.ErrorIs(t, err, ErrInputShape, "input %s", raw)
	}

	expenses, report, err := DecodeExpenses([]byte(`null`), DecodeOptions{})
	require.NoError(t, err)
	assert.Empty(t, expenses)
	assert.Zero(t, report.Total)
}

func TestDecodeExpenses_NormalizesAddresses(t *testing.T) {
	raw := []byte(`[
		{"id": "e1", "amount": "20", "description": "Lunch", "payer": " 0xA11CE ", "participants": ["0xa11ce", "0xB0B", "0xb0b"]}
	]`)

	expenses, report, err := DecodeExpenses(raw, DecodeOptions{AmountsInSUI: true})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Zero(t, report.Dropped())
	assert.Equal(t, "0xa11ce", expenses[0].Payer)
	assert.Equal(t, []string{"0xa11ce", "0xb0b"}, expenses[0].DistinctParticipants())

	balances := calculator.CalculateParticipantBalances(expenses)
	require.Len(t, balances, 2)
	assert.InDelta(t, 10.0, balances[0].Balance, 1e-9)
	assert.InDelta(t, -10.0, balances[1].Balance, 1e-9)
}
