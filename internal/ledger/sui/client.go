// Package sui reads expense groups from a Sui fullnode over JSON-RPC.
// It is read-only: creating groups and settling on-chain needs a wallet signature,
// which happens in the client application, not here.
package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mmynk/suisplit/internal/ledger"
	"github.com/mmynk/suisplit/internal/metrics"
	"github.com/mmynk/suisplit/internal/models"
)

var (
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("sui: fullnode unavailable")

	// ErrInvalidObjectID is returned for ids that are not 0x-prefixed hex. No request is sent.
	ErrInvalidObjectID = errors.New("sui: invalid object id")
)

// RPCError is a JSON-RPC error object returned by the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("sui rpc error %d: %s", e.Code, e.Message)
}

// JSON-RPC codes for requests the node rejected as malformed.
const (
	codeInvalidParams  = -32602
	codeInvalidRequest = -32600
)

// Rejected reports whether the node refused the request itself (invalid request, unknown
// method or bad params). Such errors say nothing about the node's health.
func (e *RPCError) Rejected() bool {
	return e.Code >= codeInvalidParams && e.Code <= codeInvalidRequest
}

// healthy reports whether err says nothing about the fullnode's health.
// Caller cancellations and rejected requests do not count toward opening the breaker.
func healthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && rpcErr.Rejected()
}

// Config configures a Client.
type Config struct {
	// URL is the fullnode JSON-RPC endpoint, e.g. https://fullnode.testnet.sui.io:443.
	URL string

	// PackageID and Module locate the expense splitter contract.
	PackageID string
	Module    string

	// Timeout bounds each HTTP round trip.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// CooldownPeriod is how long the breaker stays open before probing again.
	CooldownPeriod time.Duration
}

// Client is a ledger.Backend backed by a Sui fullnode.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
	nextID  atomic.Uint64
}

var (
	_ ledger.Backend = (*Client)(nil)
	_ ledger.Auditor = (*Client)(nil)
)

// New creates a Client. Zero timeouts and thresholds fall back to sensible defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CooldownPeriod == 0 {
		cfg.CooldownPeriod = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sui-rpc",
		MaxRequests:  1,
		Timeout:      cfg.CooldownPeriod,
		IsSuccessful: healthy,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Name implements ledger.Backend.
func (c *Client) Name() string {
	return "sui"
}

// ExpenseType is the fully qualified Move type of an expense record.
func (c *Client) ExpenseType() string {
	return fmt.Sprintf("%s::%s::Expense", c.cfg.PackageID, c.cfg.Module)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// call performs one JSON-RPC request through the circuit breaker.
func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d from fullnode", resp.StatusCode)
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(payload, &rpcResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if rpcResp.Error != nil {
			return nil, rpcResp.Error
		}
		return rpcResp.Result, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return result.(json.RawMessage), nil
}

// GetObject returns the raw sui_getObject result with content and type shown.
func (c *Client) GetObject(ctx context.Context, objectID string) (json.RawMessage, error) {
	objectID, ok := models.ParseAddress(objectID)
	if !ok {
		return nil, ErrInvalidObjectID
	}
	return c.call(ctx, "sui_getObject", []any{
		objectID,
		map[string]bool{"showContent": true, "showType": true},
	})
}

type objectResult struct {
	Data *struct {
		ObjectID string `json:"objectId"`
		Type     string `json:"type"`
		Content  *struct {
			Fields map[string]json.RawMessage `json:"fields"`
		} `json:"content"`
	} `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// FetchExpenses implements ledger.Backend by reading the ExpenseGroup object's expense vector.
func (c *Client) FetchExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	expenses, _, err := c.FetchExpensesAudited(ctx, groupID)
	return expenses, err
}

// FetchExpensesAudited implements ledger.Auditor.
func (c *Client) FetchExpensesAudited(ctx context.Context, groupID string) ([]models.Expense, ledger.Report, error) {
	expenses, report, err := c.fetchExpenses(ctx, groupID)
	if err != nil {
		metrics.LedgerFetches.WithLabelValues(c.Name(), "error").Inc()
		return nil, ledger.Report{}, err
	}
	metrics.LedgerFetches.WithLabelValues(c.Name(), "ok").Inc()
	return expenses, report, nil
}

func (c *Client) fetchExpenses(ctx context.Context, groupID string) ([]models.Expense, ledger.Report, error) {
	groupID, ok := models.ParseAddress(groupID)
	if !ok {
		return nil, ledger.Report{}, ErrInvalidObjectID
	}

	raw, err := c.GetObject(ctx, groupID)
	if err != nil {
		return nil, ledger.Report{}, err
	}

	var obj objectResult
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, ledger.Report{}, fmt.Errorf("failed to decode object %s: %w", groupID, err)
	}
	if obj.Data == nil {
		return nil, ledger.Report{}, fmt.Errorf("%w: %s", ledger.ErrGroupNotFound, groupID)
	}
	if obj.Data.Content == nil || obj.Data.Content.Fields == nil {
		c.logger.Debug("Group object has no content fields", "group_id", groupID)
		return []models.Expense{}, ledger.Report{}, nil
	}

	expenses, report, err := ledger.DecodeExpenses(obj.Data.Content.Fields["expenses"], ledger.DecodeOptions{
		TypeTag: c.ExpenseType(),
		GroupID: groupID,
	})
	if err != nil {
		return nil, ledger.Report{}, fmt.Errorf("group %s: %w", groupID, err)
	}
	report.Observe(c.logger, groupID)

	c.logger.Debug("Fetched expenses from fullnode",
		"group_id", groupID,
		"records", report.Total,
		"valid", len(expenses),
		"dropped", report.Dropped(),
	)
	return expenses, report, nil
}

type transactionPage struct {
	Data []struct {
		Digest string `json:"digest"`
		Events []struct {
			Type       string          `json:"type"`
			ParsedJSON json.RawMessage `json:"parsedJson"`
		} `json:"events"`
	} `json:"data"`
}

// LatestGroup finds the most recently created expense group by looking up the newest
// create_group transaction and its GroupCreated event.
func (c *Client) LatestGroup(ctx context.Context) (*models.Group, error) {
	raw, err := c.call(ctx, "suix_queryTransactionBlocks", []any{
		map[string]any{
			"filter": map[string]any{
				"MoveFunction": map[string]string{
					"package":  c.cfg.PackageID,
					"module":   c.cfg.Module,
					"function": "create_group",
				},
			},
			"options": map[string]bool{"showEffects": true, "showEvents": true},
		},
		nil,  // cursor
		1,    // limit
		true, // descending
	})
	if err != nil {
		return nil, err
	}

	var page transactionPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode transaction page: %w", err)
	}
	if len(page.Data) == 0 {
		return nil, ledger.ErrGroupNotFound
	}

	eventType := fmt.Sprintf("%s::%s::GroupCreated", c.cfg.PackageID, c.cfg.Module)
	for _, event := range page.Data[0].Events {
		if event.Type != eventType {
			continue
		}
		var created struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Admin string `json:"admin"`
		}
		if err := json.Unmarshal(event.ParsedJSON, &created); err != nil {
			continue
		}
		id, ok := models.ParseAddress(created.ID)
		if !ok {
			continue
		}
		return &models.Group{ID: id, Name: created.Name, Admin: models.NormalizeAddress(created.Admin)}, nil
	}

	return nil, ledger.ErrGroupNotFound
}
