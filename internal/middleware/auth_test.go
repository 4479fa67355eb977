package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/suisplit/internal/auth"
	"github.com/mmynk/suisplit/internal/middleware"
	"github.com/mmynk/suisplit/internal/service"
)

const (
	openProcedure   = "/test.v1.WhoamiService/Whoami"
	secretProcedure = "/test.v1.WhoamiService/Secret"
	testAddress     = "0xa11ce"
)

type empty struct{}

type whoami struct {
	Address string `json:"address"`
}

func handleWhoami(ctx context.Context, _ *connect.Request[empty]) (*connect.Response[whoami], error) {
	return connect.NewResponse(&whoami{Address: middleware.GetAddress(ctx)}), nil
}

func setup(t *testing.T, jwtManager *auth.JWTManager) (open, secret *connect.Client[empty, whoami]) {
	t.Helper()

	opts := []connect.HandlerOption{
		connect.WithCodec(service.Codec()),
		connect.WithInterceptors(
			middleware.LoggingInterceptor(nil),
			middleware.RequireAuth(jwtManager, secretProcedure),
		),
	}
	mux := http.NewServeMux()
	mux.Handle(openProcedure, connect.NewUnaryHandler(openProcedure, handleWhoami, opts...))
	mux.Handle(secretProcedure, connect.NewUnaryHandler(secretProcedure, handleWhoami, opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	open = connect.NewClient[empty, whoami](http.DefaultClient, server.URL+openProcedure, connect.WithCodec(service.Codec()))
	secret = connect.NewClient[empty, whoami](http.DefaultClient, server.URL+secretProcedure, connect.WithCodec(service.Codec()))
	return open, secret
}

func withHeader(value string) *connect.Request[empty] {
	req := connect.NewRequest(&empty{})
	if value != "" {
		req.Header().Set("Authorization", value)
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	token, err := jwtManager.Generate(testAddress)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	open, secret := setup(t, jwtManager)

	tests := []struct {
		name    string
		client  *connect.Client[empty, whoami]
		header  string
		code    connect.Code
		address string
	}{
		{"protected with token", secret, "Bearer " + token, 0, testAddress},
		{"protected without token", secret, "", connect.CodeUnauthenticated, ""},
		{"protected with malformed header", secret, "Token " + token, connect.CodeUnauthenticated, ""},
		{"protected with bad token", secret, "Bearer nope", connect.CodeUnauthenticated, ""},
		{"open with token", open, "Bearer " + token, 0, testAddress},
		{"open without token", open, "", 0, ""},
		{"open with bad token", open, "Bearer nope", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.client.CallUnary(context.Background(), withHeader(tt.header))
			if tt.code != 0 {
				if connect.CodeOf(err) != tt.code {
					t.Fatalf("Expected code %v, got %v", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if resp.Msg.Address != tt.address {
				t.Errorf("Expected address %q, got %q", tt.address, resp.Msg.Address)
			}
		})
	}
}

func TestRequireAuth_NoManager(t *testing.T) {
	open, secret := setup(t, nil)

	if _, err := secret.CallUnary(context.Background(), withHeader("Bearer anything")); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Errorf("Expected Unauthenticated without a JWT manager, got %v", err)
	}
	if _, err := open.CallUnary(context.Background(), withHeader("")); err != nil {
		t.Errorf("Expected open procedure to succeed, got %v", err)
	}
}

func TestOptionalAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-0123456789", time.Hour)
	token, err := jwtManager.Generate(testAddress)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	handler := middleware.OptionalAuth(jwtManager)(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&whoami{Address: middleware.GetAddress(ctx)}), nil
	})

	req := withHeader("Bearer " + token)
	resp, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := resp.Any().(*whoami).Address; got != testAddress {
		t.Errorf("Expected address %q, got %q", testAddress, got)
	}
}
