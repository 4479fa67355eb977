package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/suisplit/internal/calculator"
	"github.com/mmynk/suisplit/internal/metrics"
	"github.com/mmynk/suisplit/internal/models"
)

// MistPerSui is the number of on-chain sub-units in one SUI.
const MistPerSui = 1_000_000_000

var mistPerSui = decimal.NewFromInt(MistPerSui)

// Rejection reasons reported for dropped records.
const (
	ReasonMalformed           = "malformed"
	ReasonWrongType           = "wrong_type"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonMissingDescription  = "missing_description"
	ReasonMissingPayer        = "missing_payer"
	ReasonInvalidAddress      = "invalid_address"
	ReasonInvalidParticipants = "invalid_participants"
)

// DecodeOptions controls how raw records are interpreted.
type DecodeOptions struct {
	// TypeTag, when set, must be contained in a record's Move type
	// (e.g. "0x5ecf...::expense_splitter::Expense"). Other records are dropped.
	TypeTag string

	// AmountsInSUI means amounts are already in SUI. By default they are MIST.
	AmountsInSUI bool

	// GroupID is stamped on every decoded expense.
	GroupID string
}

// Rejection describes one dropped record.
type Rejection struct {
	Index  int
	ID     string
	Reason string
}

// Report summarises a decode: how many records were seen and which were dropped.
type Report struct {
	Total    int
	Rejected []Rejection
}

// Dropped returns the number of rejected records.
func (r Report) Dropped() int {
	return len(r.Rejected)
}

// Observe logs every rejection and counts it in the dropped-records metric.
func (r Report) Observe(logger *slog.Logger, groupID string) {
	for _, rej := range r.Rejected {
		metrics.DroppedRecords.WithLabelValues(rej.Reason).Inc()
		logger.Warn("Dropped invalid expense record",
			"group_id", groupID,
			"index", rej.Index,
			"expense_id", rej.ID,
			"reason", rej.Reason,
		)
	}
}

// recordError carries the rejection reason for a single record.
type recordError struct {
	reason string
	id     string
}

func (e *recordError) Error() string {
	return fmt.Sprintf("record %s rejected: %s", e.id, e.reason)
}

// DecodeExpenses parses a JSON array of expense records. Each element is either a Sui
// object wrapper ({"type": ..., "fields": {...}}) or a bare field object.
//
// A null list decodes to no expenses. Anything other than an array or null fails with
// ErrInputShape. Individual records that fail validation are dropped and listed in the report.
func DecodeExpenses(raw []byte, opts DecodeOptions) ([]models.Expense, Report, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Expense{}, Report{}, nil
	}
	if trimmed[0] != '[' {
		return nil, Report{}, ErrInputShape
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, Report{}, fmt.Errorf("%w: %v", ErrInputShape, err)
	}

	report := Report{Total: len(records)}
	expenses := make([]models.Expense, 0, len(records))
	for i, record := range records {
		expense, err := decodeRecord(i, record, opts)
		if err != nil {
			var recErr *recordError
			if errors.As(err, &recErr) {
				report.Rejected = append(report.Rejected, Rejection{Index: i, ID: recErr.id, Reason: recErr.reason})
				continue
			}
			return nil, report, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, report, nil
}

func decodeRecord(index int, raw json.RawMessage, opts DecodeOptions) (models.Expense, error) {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || outer == nil {
		return models.Expense{}, &recordError{reason: ReasonMalformed, id: fmt.Sprintf("#%d", index)}
	}

	var moveType string
	fields := outer
	if wrapped, ok := outer["fields"]; ok {
		if err := json.Unmarshal(wrapped, &fields); err != nil || fields == nil {
			return models.Expense{}, &recordError{reason: ReasonMalformed, id: fmt.Sprintf("#%d", index)}
		}
		if typ, ok := outer["type"]; ok {
			if err := json.Unmarshal(typ, &moveType); err != nil {
				return models.Expense{}, &recordError{reason: ReasonMalformed, id: fmt.Sprintf("#%d", index)}
			}
		}
	}

	id := decodeID(fields["id"])
	if id == "" {
		prefix := moveType
		if prefix == "" {
			prefix = "expense"
		}
		id = fmt.Sprintf("%s#%d", prefix, index)
	}
	reject := func(reason string) (models.Expense, error) {
		return models.Expense{}, &recordError{reason: reason, id: id}
	}

	if opts.TypeTag != "" && !strings.Contains(moveType, opts.TypeTag) {
		return reject(ReasonWrongType)
	}

	amount, ok := decodeAmount(fields["amount"], opts.AmountsInSUI)
	if !ok {
		return reject(ReasonInvalidAmount)
	}

	description, ok := decodeString(fields["description"])
	if !ok {
		return reject(ReasonMissingDescription)
	}
	description = strings.TrimSpace(description)

	payer, ok := decodeString(fields["payer"])
	if !ok {
		return reject(ReasonMissingPayer)
	}
	if payer, ok = models.ParseAddress(payer); !ok {
		return reject(ReasonInvalidAddress)
	}

	var participants []string
	if err := json.Unmarshal(fields["participants"], &participants); err != nil || participants == nil {
		return reject(ReasonInvalidParticipants)
	}
	for i, p := range participants {
		if participants[i], ok = models.ParseAddress(p); !ok {
			return reject(ReasonInvalidAddress)
		}
	}

	expense := models.Expense{
		ID:           id,
		GroupID:      opts.GroupID,
		Description:  description,
		Amount:       amount,
		Payer:        payer,
		Participants: participants,
	}
	expense.Merchant, _ = decodeString(fields["merchant"])
	expense.Category, _ = decodeString(fields["category"])
	expense.Date, _ = decodeString(fields["date"])
	_ = json.Unmarshal(fields["settled"], &expense.Settled)

	if err := calculator.ValidateExpense(expense); err != nil {
		return reject(reasonFor(err))
	}

	return expense, nil
}

// decodeID accepts a plain string or a Sui UID wrapper ({"id": "0x..."}).
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var uid struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &uid); err == nil {
		return uid.ID
	}
	return ""
}

// decodeAmount accepts a JSON number or numeric string. Move u64 values arrive as strings.
func decodeAmount(raw json.RawMessage, inSUI bool) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	text := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return 0, false
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, false
	}
	if !d.IsPositive() {
		return 0, false
	}
	if !inSUI {
		d = d.Div(mistPerSui)
	}

	f, _ := d.Float64()
	if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, calculator.ErrInvalidAmount):
		return ReasonInvalidAmount
	case errors.Is(err, calculator.ErrMissingDescription):
		return ReasonMissingDescription
	case errors.Is(err, calculator.ErrMissingPayer):
		return ReasonMissingPayer
	case errors.Is(err, calculator.ErrNoParticipants):
		return ReasonInvalidParticipants
	default:
		return ReasonMalformed
	}
}
