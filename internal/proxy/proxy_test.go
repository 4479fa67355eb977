package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/suisplit/internal/ledger"
	"github.com/mmynk/suisplit/internal/ledger/sui"
	"github.com/mmynk/suisplit/internal/models"
)

type fakeLedger struct {
	objects  map[string]string
	expenses map[string][]models.Expense
	err      error
}

func (f *fakeLedger) Name() string { return "fake" }

func (f *fakeLedger) GetObject(ctx context.Context, id string) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.objects[id]), nil
}

func (f *fakeLedger) FetchExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	expenses, ok := f.expenses[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrGroupNotFound, groupID)
	}
	return expenses, nil
}

func newTestRouter(f *fakeLedger, perMinute int) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, f, f, perMinute).Router()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleTest(t *testing.T) {
	rec := get(t, newTestRouter(&fakeLedger{}, 10), "/api/test")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"SuiSplit backend is working!"}`, rec.Body.String())
}

func TestHandleGetObject(t *testing.T) {
	f := &fakeLedger{objects: map[string]string{
		"0x9a0b": `{"data":{"objectId":"0x9a0b","content":{"fields":{"expenses":[]}}}}`,
	}}
	h := newTestRouter(f, 10)

	rec := get(t, h, "/api/object/0x9a0b")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, f.objects["0x9a0b"], rec.Body.String())

	rec = get(t, h, "/api/object/0x9A0B")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, f.objects["0x9a0b"], rec.Body.String())

	rec = get(t, h, "/api/object/not-hex")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetObject_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"breaker open", fmt.Errorf("%w: open", sui.ErrUnavailable), http.StatusServiceUnavailable},
		{"rpc error", &sui.RPCError{Code: -32000, Message: "boom"}, http.StatusInternalServerError},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"invalid id", sui.ErrInvalidObjectID, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestRouter(&fakeLedger{err: tt.err}, 10), "/api/object/0x1")
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleGetExpenseGroup(t *testing.T) {
	f := &fakeLedger{expenses: map[string][]models.Expense{
		"0x9a0b": {{ID: "0x1", Description: "Boat", Amount: 90, Payer: "0xa", Participants: []string{"0xa", "0xb"}}},
	}}
	h := newTestRouter(f, 10)

	rec := get(t, h, "/api/expense-group/0x9a0b")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		GroupID  string        `json:"group_id"`
		Expenses []expenseView `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "0x9a0b", body.GroupID)
	require.Len(t, body.Expenses, 1)
	assert.Equal(t, 90.0, body.Expenses[0].Amount)

	rec = get(t, h, "/api/expense-group/0xdead")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestRouter(&fakeLedger{objects: map[string]string{"0x1": `{}`}}, 2)

	assert.Equal(t, http.StatusOK, get(t, h, "/api/object/0x1").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/object/0x1").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(t, h, "/api/object/0x1").Code)

	// The health route is not limited.
	assert.Equal(t, http.StatusOK, get(t, h, "/api/test").Code)
}
