// Package service implements the BalanceService Connect RPC API.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/mmynk/suisplit/internal/calculator"
	"github.com/mmynk/suisplit/internal/ledger"
	"github.com/mmynk/suisplit/internal/ledger/sui"
	"github.com/mmynk/suisplit/internal/metrics"
	"github.com/mmynk/suisplit/internal/middleware"
	"github.com/mmynk/suisplit/internal/models"
	"github.com/mmynk/suisplit/internal/nickname"
	"github.com/mmynk/suisplit/internal/storage"
	"github.com/mmynk/suisplit/pkg/format"
)

const defaultFetchTimeout = 10 * time.Second

var errReadOnlyLedger = errors.New("expenses are recorded on-chain for this ledger")

// groupLocator is implemented by backends that can discover the newest group on their own.
type groupLocator interface {
	LatestGroup(ctx context.Context) (*models.Group, error)
}

// Deps are the collaborators of a BalanceService.
type Deps struct {
	// Backend supplies expenses for balance computation.
	Backend ledger.Backend

	// Store is the local ledger. It holds groups, local expenses and the settlement log.
	Store storage.Store

	// Settler records settlements. Usually the same value as Store.
	Settler ledger.Settler

	// Nicknames resolves display names. Optional.
	Nicknames nickname.Store

	// FetchTimeout bounds each ledger fetch. Zero means 10s.
	FetchTimeout time.Duration

	Logger *slog.Logger
}

// BalanceService implements BalanceServiceHandler.
type BalanceService struct {
	backend      ledger.Backend
	store        storage.Store
	settler      ledger.Settler
	nicknames    nickname.Store
	fetchTimeout time.Duration
	logger       *slog.Logger

	validate *validator.Validate
	fetches  singleflight.Group

	// settleMu serializes settlement writes so each one is checked against the balances
	// left by the previous one.
	settleMu sync.Mutex
}

// fetched is the result of one ledger fetch, shared between concurrent callers.
type fetched struct {
	expenses []models.Expense
	dropped  int
}

var _ BalanceServiceHandler = (*BalanceService)(nil)

// NewBalanceService creates a BalanceService. Backend and Store are required.
func NewBalanceService(deps Deps) (*BalanceService, error) {
	if deps.Backend == nil {
		return nil, errors.New("service: ledger backend is required")
	}
	if deps.Store == nil {
		return nil, errors.New("service: store is required")
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = defaultFetchTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &BalanceService{
		backend:      deps.Backend,
		store:        deps.Store,
		settler:      deps.Settler,
		nicknames:    deps.Nicknames,
		fetchTimeout: deps.FetchTimeout,
		logger:       deps.Logger,
		validate:     validator.New(),
	}, nil
}

// GetBalances computes every participant's balance in a group.
func (s *BalanceService) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	msg := req.Msg
	if err := s.validate.Struct(msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	s.logger.Info("GetBalances request received",
		"group_id", msg.GroupID,
		"sort_by", msg.SortBy,
		"include_settlements", msg.IncludeSettlements,
	)

	start := time.Now()
	defer func() {
		metrics.BalanceComputeSeconds.Observe(time.Since(start).Seconds())
	}()

	sortKey, err := calculator.ParseSortKey(msg.SortBy)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	filter, err := calculator.ParseFilter(msg.Filter)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	result, err := s.fetchExpenses(ctx, msg.GroupID)
	if err != nil {
		s.logger.Error("GetBalances failed", "group_id", msg.GroupID, "state", StateFailed, "error", err)
		return nil, toConnectError(err)
	}

	balances := calculator.CalculateParticipantBalances(result.expenses)

	if msg.IncludeSettlements && s.settler != nil {
		settlements, err := s.settler.ListSettlements(ctx, msg.GroupID)
		if err != nil {
			s.logger.Error("GetBalances failed", "group_id", msg.GroupID, "state", StateFailed, "error", err)
			return nil, toConnectError(err)
		}
		balances = calculator.ApplySettlements(balances, settlementValues(settlements))
	}

	names := s.allNicknames(ctx)
	calculator.SortBalances(balances, calculator.Order{
		Key:        sortKey,
		Descending: msg.Descending,
		Name:       nickname.Resolver(names),
	})

	summary := calculator.Summarize(balances)
	debts := calculator.SimplifyDebts(balances)
	visible := calculator.FilterBalances(balances, filter)

	resp := &GetBalancesResponse{
		State:    StateSuccess,
		Balances: make([]Balance, 0, len(visible)),
		Debts:    make([]Debt, 0, len(debts)),
		Summary: Summary{
			TotalOwed: summary.TotalOwed,
			TotalDebt: summary.TotalDebt,
			Pending:   summary.Pending,
		},
		Dropped: result.dropped,
	}
	if len(balances) == 0 {
		resp.State = StateEmpty
	}
	for _, b := range visible {
		resp.Balances = append(resp.Balances, toBalance(b, names[b.Address]))
	}
	for _, d := range debts {
		resp.Debts = append(resp.Debts, Debt{
			From:    d.From,
			To:      d.To,
			Amount:  d.Amount,
			Display: format.Currency(d.Amount, ""),
		})
	}

	s.logger.Info("GetBalances successful",
		"group_id", msg.GroupID,
		"state", resp.State,
		"participants", len(balances),
		"dropped", result.dropped,
	)

	return connect.NewResponse(resp), nil
}

// fetchExpenses loads a group's expenses. Concurrent calls for the same group share one
// backend fetch, which runs detached from any single caller's cancellation.
// Backends implementing ledger.Auditor also report how many records they dropped.
func (s *BalanceService) fetchExpenses(ctx context.Context, groupID string) (fetched, error) {
	ch := s.fetches.DoChan(groupID, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		if auditor, ok := s.backend.(ledger.Auditor); ok {
			expenses, report, err := auditor.FetchExpensesAudited(fetchCtx, groupID)
			return fetched{expenses: expenses, dropped: report.Dropped()}, err
		}
		expenses, err := s.backend.FetchExpenses(fetchCtx, groupID)
		return fetched{expenses: expenses}, err
	})

	select {
	case <-ctx.Done():
		return fetched{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return fetched{}, fmt.Errorf("fetch expenses from %s: %w", s.backend.Name(), res.Err)
		}
		if res.Shared {
			s.logger.Debug("Shared in-flight ledger fetch", "group_id", groupID)
		}
		return res.Val.(fetched), nil
	}
}

func (s *BalanceService) allNicknames(ctx context.Context) map[string]string {
	if s.nicknames == nil {
		return nil
	}
	names, err := s.nicknames.All(ctx)
	if err != nil {
		s.logger.Warn("Failed to load nicknames", "error", err)
		return nil
	}
	return names
}

// CreateGroup creates a group in the local ledger with the caller as admin.
func (s *BalanceService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	caller := middleware.GetAddress(ctx)
	s.logger.Info("CreateGroup request received", "name", req.Msg.Name, "admin", caller)

	group := &models.Group{
		Name:  strings.TrimSpace(req.Msg.Name),
		Admin: caller,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.Error("CreateGroup failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&CreateGroupResponse{Group: toGroup(group)}), nil
}

// ListGroups returns the local groups, newest first.
func (s *BalanceService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	groups, err := s.store.ListGroups(ctx)
	if err != nil {
		s.logger.Error("ListGroups failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	resp := &ListGroupsResponse{Groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		resp.Groups = append(resp.Groups, toGroup(g))
	}
	return connect.NewResponse(resp), nil
}

// GetLatestGroup returns the newest group known to the ledger backend.
func (s *BalanceService) GetLatestGroup(ctx context.Context, req *connect.Request[GetLatestGroupRequest]) (*connect.Response[GetLatestGroupResponse], error) {
	var (
		group *models.Group
		err   error
	)
	if locator, ok := s.backend.(groupLocator); ok {
		group, err = locator.LatestGroup(ctx)
	} else {
		var groups []*models.Group
		groups, err = s.store.ListGroups(ctx)
		if err == nil && len(groups) == 0 {
			err = ledger.ErrGroupNotFound
		}
		if err == nil {
			group = groups[0]
		}
	}
	if err != nil {
		s.logger.Warn("GetLatestGroup failed", "backend", s.backend.Name(), "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetLatestGroupResponse{Group: toGroup(group)}), nil
}

// RecordExpense adds an expense to a local group. The caller must be the payer or a participant.
func (s *BalanceService) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	msg := req.Msg
	if err := s.validate.Struct(msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if !s.localLedger() {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errReadOnlyLedger)
	}

	caller := middleware.GetAddress(ctx)
	s.logger.Info("RecordExpense request received",
		"group_id", msg.GroupID,
		"amount", msg.Amount,
		"participants_count", len(msg.Participants),
		"caller", caller,
	)

	payer, ok := models.ParseAddress(msg.Payer)
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid payer address %q", msg.Payer))
	}
	participants := make([]string, len(msg.Participants))
	for i, p := range msg.Participants {
		if participants[i], ok = models.ParseAddress(p); !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid participant address %q", p))
		}
	}

	expense := &models.Expense{
		GroupID:      msg.GroupID,
		Description:  strings.TrimSpace(msg.Description),
		Amount:       msg.Amount,
		Payer:        payer,
		Participants: participants,
		Merchant:     msg.Merchant,
		Category:     msg.Category,
		Date:         msg.Date,
	}
	if err := calculator.ValidateExpense(*expense); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if caller == "" || (caller != expense.Payer && !slices.Contains(expense.Participants, caller)) {
		return nil, connect.NewError(connect.CodePermissionDenied,
			errors.New("caller must be the payer or a participant"))
	}
	if _, err := s.store.GetGroup(ctx, msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("RecordExpense failed", "group_id", msg.GroupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Expense recorded", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&RecordExpenseResponse{Expense: toExpense(expense)}), nil
}

// RecordSettlement records a payment from the caller to another participant.
// For groups that live on-chain, a local mirror row is created so the settlement log
// has something to reference.
func (s *BalanceService) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	msg := req.Msg
	if err := s.validate.Struct(msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if s.settler == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settlements are not enabled"))
	}

	caller := middleware.GetAddress(ctx)
	if caller == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("caller address required"))
	}
	to, ok := models.ParseAddress(msg.To)
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid receiver address %q", msg.To))
	}
	s.logger.Info("RecordSettlement request received",
		"group_id", msg.GroupID,
		"from", caller,
		"to", to,
		"amount", msg.Amount,
	)

	settlement := &models.Settlement{
		GroupID: msg.GroupID,
		From:    caller,
		To:      to,
		Amount:  msg.Amount,
		Note:    strings.TrimSpace(msg.Note),
	}

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	balances, err := s.currentBalances(ctx, msg.GroupID)
	if err != nil {
		s.logger.Error("RecordSettlement failed", "group_id", msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	if err := calculator.ValidateSettlement(balances, *settlement); err != nil {
		s.logger.Warn("Settlement rejected", "group_id", msg.GroupID, "from", caller, "to", to, "reason", err)
		return nil, settlementError(err)
	}

	if err := s.ensureLocalGroup(ctx, msg.GroupID); err != nil {
		s.logger.Error("RecordSettlement failed", "group_id", msg.GroupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if err := s.settler.SubmitSettlement(ctx, settlement); err != nil {
		s.logger.Error("RecordSettlement failed", "group_id", msg.GroupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	return connect.NewResponse(&RecordSettlementResponse{Settlement: toSettlement(settlement)}), nil
}

// currentBalances computes a group's balances with its recorded settlements applied.
func (s *BalanceService) currentBalances(ctx context.Context, groupID string) ([]calculator.ParticipantBalance, error) {
	result, err := s.fetchExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.settler.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, err
	}
	balances := calculator.CalculateParticipantBalances(result.expenses)
	return calculator.ApplySettlements(balances, settlementValues(settlements)), nil
}

// settlementError maps calculator.ValidateSettlement errors to Connect codes.
func settlementError(err error) error {
	switch {
	case errors.Is(err, calculator.ErrPayerNotMember):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, calculator.ErrNothingOwed), errors.Is(err, calculator.ErrNotOwed):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
}

// ListSettlements returns a group's settlement log, newest first.
func (s *BalanceService) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if s.settler == nil {
		return connect.NewResponse(&ListSettlementsResponse{Settlements: []Settlement{}}), nil
	}

	settlements, err := s.settler.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		s.logger.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &ListSettlementsResponse{Settlements: make([]Settlement, 0, len(settlements))}
	for _, st := range settlements {
		resp.Settlements = append(resp.Settlements, toSettlement(st))
	}
	return connect.NewResponse(resp), nil
}

// DeleteSettlement removes a settlement from the log. Only the address that paid may delete it.
func (s *BalanceService) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	if err := s.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if s.settler == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settlements are not enabled"))
	}

	caller := middleware.GetAddress(ctx)
	if caller == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("caller address required"))
	}
	s.logger.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID, "caller", caller)

	s.settleMu.Lock()
	defer s.settleMu.Unlock()

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if settlement.From != caller {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the payer can delete a settlement"))
	}
	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		s.logger.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, toConnectError(err)
	}

	s.logger.Info("Settlement deleted", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	return connect.NewResponse(&DeleteSettlementResponse{}), nil
}

// SetNickname sets or clears the caller's display name.
func (s *BalanceService) SetNickname(ctx context.Context, req *connect.Request[SetNicknameRequest]) (*connect.Response[SetNicknameResponse], error) {
	if s.nicknames == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("nicknames are not enabled"))
	}

	address := middleware.GetAddress(ctx)
	if address == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, nickname.ErrEmptyAddress)
	}
	if strings.TrimSpace(req.Msg.Address) != "" {
		requested, ok := models.ParseAddress(req.Msg.Address)
		if !ok {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid address %q", req.Msg.Address))
		}
		if requested != address {
			return nil, connect.NewError(connect.CodePermissionDenied, errors.New("can only set your own nickname"))
		}
	}

	if req.Msg.Clear {
		if err := s.nicknames.Remove(ctx, address); err != nil {
			s.logger.Error("SetNickname failed", "address", address, "error", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(&SetNicknameResponse{Address: address}), nil
	}

	name, err := nickname.Normalize(address, req.Msg.Nickname)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.nicknames.Set(ctx, address, name); err != nil {
		s.logger.Error("SetNickname failed", "address", address, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Nickname set", "address", address)
	return connect.NewResponse(&SetNicknameResponse{Address: address, Nickname: name}), nil
}

// ListNicknames returns every stored nickname.
func (s *BalanceService) ListNicknames(ctx context.Context, req *connect.Request[ListNicknamesRequest]) (*connect.Response[ListNicknamesResponse], error) {
	resp := &ListNicknamesResponse{Nicknames: map[string]string{}}
	if s.nicknames == nil {
		return connect.NewResponse(resp), nil
	}

	names, err := s.nicknames.All(ctx)
	if err != nil {
		s.logger.Error("ListNicknames failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	for address, name := range names {
		resp.Nicknames[address] = name
	}
	return connect.NewResponse(resp), nil
}

// localLedger reports whether balances are computed from the local store.
func (s *BalanceService) localLedger() bool {
	backend, ok := s.store.(ledger.Backend)
	return ok && backend == s.backend
}

func (s *BalanceService) ensureLocalGroup(ctx context.Context, groupID string) error {
	_, err := s.store.GetGroup(ctx, groupID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return s.store.CreateGroup(ctx, &models.Group{ID: groupID, Name: format.ShortAddress(groupID)})
}

// toConnectError maps domain and collaborator errors to Connect codes.
func toConnectError(err error) error {
	var (
		connectErr *connect.Error
		rpcErr     *sui.RPCError
	)
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, sui.ErrInvalidObjectID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrGroupNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.As(err, &rpcErr) && rpcErr.Rejected():
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, sui.ErrUnavailable), errors.As(err, &rpcErr):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
