package interceptors

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"budget-control-plane/internal/telemetry"
	"budget-control-plane/internal/telemetry/domain"
)

// grpcRequestMetadata is the JSON shape stored in Event.Metadata for grpc_request events.
type grpcRequestMetadata struct {
	FullMethod string `json:"full_method"`
	StatusCode string `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
}

// TelemetryUnary returns a unary server interceptor that emits a grpc_request event after each RPC.
// Emits are asynchronous and best-effort. A nil emitter disables the interceptor.
// skipMethods is the set of full method names to not emit (e.g. HealthCheck).
func TelemetryUnary(emitter telemetry.EventEmitter, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if emitter == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		meta, _ := json.Marshal(grpcRequestMetadata{
			FullMethod: info.FullMethod,
			StatusCode: status.Code(err).String(),
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   ClientIP(ctx),
		})
		orgID, _ := GetOrgID(ctx)
		userID, _ := GetUserID(ctx)
		telemetry.EmitAsync(emitter, &domain.Event{
			OrgID:     orgID,
			UserID:    userID,
			EventType: domain.EventTypeGRPCRequest,
			Source:    "grpc_interceptor",
			Metadata:  meta,
		})
		return resp, err
	}
}
