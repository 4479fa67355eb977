package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/suisplit/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call and counts it
// by procedure and result code. It logs the procedure name, caller address, duration, and
// any error codes/messages.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			address := GetAddress(ctx) // empty if the auth interceptor runs after this one
			code := "ok"
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
					logger.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"address", address,
						"duration_ms", duration,
					)
				} else {
					code = connect.CodeUnknown.String()
					logger.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"address", address,
						"duration_ms", duration,
					)
				}
			} else {
				logger.Info("RPC ok",
					"procedure", procedure,
					"address", address,
					"duration_ms", duration,
				)
			}
			metrics.RPCRequests.WithLabelValues(procedure, code).Inc()

			return resp, err
		}
	}
}
