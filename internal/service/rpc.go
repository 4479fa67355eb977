package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BalanceServiceName is the fully-qualified name of the BalanceService service.
const BalanceServiceName = "suisplit.v1.BalanceService"

// Procedure paths, in the form "/Service/Method".
const (
	BalanceServiceGetBalancesProcedure      = "/suisplit.v1.BalanceService/GetBalances"
	BalanceServiceCreateGroupProcedure      = "/suisplit.v1.BalanceService/CreateGroup"
	BalanceServiceListGroupsProcedure       = "/suisplit.v1.BalanceService/ListGroups"
	BalanceServiceGetLatestGroupProcedure   = "/suisplit.v1.BalanceService/GetLatestGroup"
	BalanceServiceRecordExpenseProcedure    = "/suisplit.v1.BalanceService/RecordExpense"
	BalanceServiceRecordSettlementProcedure = "/suisplit.v1.BalanceService/RecordSettlement"
	BalanceServiceListSettlementsProcedure  = "/suisplit.v1.BalanceService/ListSettlements"
	BalanceServiceDeleteSettlementProcedure = "/suisplit.v1.BalanceService/DeleteSettlement"
	BalanceServiceSetNicknameProcedure      = "/suisplit.v1.BalanceService/SetNickname"
	BalanceServiceListNicknamesProcedure    = "/suisplit.v1.BalanceService/ListNicknames"
)

// AuthenticatedProcedures lists the procedures that require a bearer token.
var AuthenticatedProcedures = []string{
	BalanceServiceCreateGroupProcedure,
	BalanceServiceRecordExpenseProcedure,
	BalanceServiceRecordSettlementProcedure,
	BalanceServiceDeleteSettlementProcedure,
	BalanceServiceSetNicknameProcedure,
}

// BalanceServiceHandler is implemented by BalanceService.
type BalanceServiceHandler interface {
	GetBalances(context.Context, *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error)
	CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error)
	ListGroups(context.Context, *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error)
	GetLatestGroup(context.Context, *connect.Request[GetLatestGroupRequest]) (*connect.Response[GetLatestGroupResponse], error)
	RecordExpense(context.Context, *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error)
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
	SetNickname(context.Context, *connect.Request[SetNicknameRequest]) (*connect.Response[SetNicknameResponse], error)
	ListNicknames(context.Context, *connect.Request[ListNicknamesRequest]) (*connect.Response[ListNicknamesResponse], error)
}

// NewBalanceServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
// The JSON codec is always registered; opts typically carry interceptors.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	handlers := map[string]*connect.Handler{
		BalanceServiceGetBalancesProcedure:      connect.NewUnaryHandler(BalanceServiceGetBalancesProcedure, svc.GetBalances, opts...),
		BalanceServiceCreateGroupProcedure:      connect.NewUnaryHandler(BalanceServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		BalanceServiceListGroupsProcedure:       connect.NewUnaryHandler(BalanceServiceListGroupsProcedure, svc.ListGroups, opts...),
		BalanceServiceGetLatestGroupProcedure:   connect.NewUnaryHandler(BalanceServiceGetLatestGroupProcedure, svc.GetLatestGroup, opts...),
		BalanceServiceRecordExpenseProcedure:    connect.NewUnaryHandler(BalanceServiceRecordExpenseProcedure, svc.RecordExpense, opts...),
		BalanceServiceRecordSettlementProcedure: connect.NewUnaryHandler(BalanceServiceRecordSettlementProcedure, svc.RecordSettlement, opts...),
		BalanceServiceListSettlementsProcedure:  connect.NewUnaryHandler(BalanceServiceListSettlementsProcedure, svc.ListSettlements, opts...),
		BalanceServiceDeleteSettlementProcedure: connect.NewUnaryHandler(BalanceServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...),
		BalanceServiceSetNicknameProcedure:      connect.NewUnaryHandler(BalanceServiceSetNicknameProcedure, svc.SetNickname, opts...),
		BalanceServiceListNicknamesProcedure:    connect.NewUnaryHandler(BalanceServiceListNicknamesProcedure, svc.ListNicknames, opts...),
	}

	return "/" + BalanceServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// BalanceServiceClient is a client for suisplit.v1.BalanceService.
type BalanceServiceClient struct {
	getBalances      *connect.Client[GetBalancesRequest, GetBalancesResponse]
	createGroup      *connect.Client[CreateGroupRequest, CreateGroupResponse]
	listGroups       *connect.Client[ListGroupsRequest, ListGroupsResponse]
	getLatestGroup   *connect.Client[GetLatestGroupRequest, GetLatestGroupResponse]
	recordExpense    *connect.Client[RecordExpenseRequest, RecordExpenseResponse]
	recordSettlement *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
	listSettlements  *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
	deleteSettlement *connect.Client[DeleteSettlementRequest, DeleteSettlementResponse]
	setNickname      *connect.Client[SetNicknameRequest, SetNicknameResponse]
	listNicknames    *connect.Client[ListNicknamesRequest, ListNicknamesResponse]
}

// NewBalanceServiceClient constructs a client for the BalanceService at baseURL
// (for example, http://localhost:8080).
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BalanceServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)

	return &BalanceServiceClient{
		getBalances:      connect.NewClient[GetBalancesRequest, GetBalancesResponse](httpClient, baseURL+BalanceServiceGetBalancesProcedure, opts...),
		createGroup:      connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+BalanceServiceCreateGroupProcedure, opts...),
		listGroups:       connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+BalanceServiceListGroupsProcedure, opts...),
		getLatestGroup:   connect.NewClient[GetLatestGroupRequest, GetLatestGroupResponse](httpClient, baseURL+BalanceServiceGetLatestGroupProcedure, opts...),
		recordExpense:    connect.NewClient[RecordExpenseRequest, RecordExpenseResponse](httpClient, baseURL+BalanceServiceRecordExpenseProcedure, opts...),
		recordSettlement: connect.NewClient[RecordSettlementRequest, RecordSettlementResponse](httpClient, baseURL+BalanceServiceRecordSettlementProcedure, opts...),
		listSettlements:  connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+BalanceServiceListSettlementsProcedure, opts...),
		deleteSettlement: connect.NewClient[DeleteSettlementRequest, DeleteSettlementResponse](httpClient, baseURL+BalanceServiceDeleteSettlementProcedure, opts...),
		setNickname:      connect.NewClient[SetNicknameRequest, SetNicknameResponse](httpClient, baseURL+BalanceServiceSetNicknameProcedure, opts...),
		listNicknames:    connect.NewClient[ListNicknamesRequest, ListNicknamesResponse](httpClient, baseURL+BalanceServiceListNicknamesProcedure, opts...),
	}
}

func (c *BalanceServiceClient) GetBalances(ctx context.Context, req *connect.Request[GetBalancesRequest]) (*connect.Response[GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) GetLatestGroup(ctx context.Context, req *connect.Request[GetLatestGroupRequest]) (*connect.Response[GetLatestGroupResponse], error) {
	return c.getLatestGroup.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) RecordExpense(ctx context.Context, req *connect.Request[RecordExpenseRequest]) (*connect.Response[RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) SetNickname(ctx context.Context, req *connect.Request[SetNicknameRequest]) (*connect.Response[SetNicknameResponse], error) {
	return c.setNickname.CallUnary(ctx, req)
}

func (c *BalanceServiceClient) ListNicknames(ctx context.Context, req *connect.Request[ListNicknamesRequest]) (*connect.Response[ListNicknamesResponse], error) {
	return c.listNicknames.CallUnary(ctx, req)
}
