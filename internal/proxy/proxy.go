// Package proxy exposes read-only ledger lookups over plain HTTP for browser clients.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/mmynk/suisplit/internal/ledger"
	"github.com/mmynk/suisplit/internal/ledger/sui"
	"github.com/mmynk/suisplit/internal/models"
)

// ObjectFetcher returns the raw sui_getObject result for an object ID.
type ObjectFetcher interface {
	GetObject(ctx context.Context, objectID string) (json.RawMessage, error)
}

// Handler serves the proxy routes.
type Handler struct {
	logger    *slog.Logger
	objects   ObjectFetcher
	backend   ledger.Backend
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs a proxy handler. requestsPerMinute limits each client IP.
func NewHandler(logger *slog.Logger, objects ObjectFetcher, backend ledger.Backend, requestsPerMinute int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	limiter := httprate.Limit(requestsPerMinute, time.Minute, httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return "ip:" + r.RemoteAddr, nil
		}
		return "ip:" + host, nil
	}))
	return &Handler{
		logger:    logger,
		objects:   objects,
		backend:   backend,
		rateLimit: limiter,
	}
}

// MountRoutes registers the proxy routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/test", h.handleTest)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/api/object/{id}", h.handleGetObject)
		r.Get("/api/expense-group/{id}", h.handleGetExpenseGroup)
	})
}

// Router returns a chi router with only the proxy routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "SuiSplit backend is working!"})
}

func (h *Handler) handleGetObject(w http.ResponseWriter, r *http.Request) {
	id, ok := models.ParseAddress(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid object id")
		return
	}
	if h.objects == nil {
		writeError(w, http.StatusNotImplemented, "object lookups are not enabled")
		return
	}

	result, err := h.objects.GetObject(r.Context(), id)
	if err != nil {
		h.logger.Error("Object lookup failed", "object_id", id, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

type expenseView struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	Payer        string   `json:"payer"`
	Participants []string `json:"participants"`
	Merchant     string   `json:"merchant,omitempty"`
	Category     string   `json:"category,omitempty"`
	Date         string   `json:"date,omitempty"`
	Settled      bool     `json:"settled"`
}

func (h *Handler) handleGetExpenseGroup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing group id")
		return
	}

	expenses, err := h.backend.FetchExpenses(r.Context(), id)
	if err != nil {
		h.logger.Error("Expense group lookup failed", "group_id", id, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group_id": id,
		"expenses": toViews(expenses),
	})
}

func toViews(expenses []models.Expense) []expenseView {
	views := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, expenseView{
			ID:           e.ID,
			Description:  e.Description,
			Amount:       e.Amount,
			Payer:        e.Payer,
			Participants: e.Participants,
			Merchant:     e.Merchant,
			Category:     e.Category,
			Date:         e.Date,
			Settled:      e.Settled,
		})
	}
	return views
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, sui.ErrInvalidObjectID):
		return http.StatusBadRequest
	case errors.Is(err, sui.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
