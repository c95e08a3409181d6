package handler

import (
	"context"
	"log"

	healthv1 "budget-control-plane/api/health/v1"
)

// Pinger reports database reachability. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the authorization evaluator can decide requests. *rbac.Checker implements it.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements HealthService for readiness and liveness probes.
type Server struct {
	healthv1.UnimplementedHealthServiceServer
	pinger        Pinger
	policyChecker PolicyChecker
}

// NewServer returns a new Health gRPC server. Nil dependencies are skipped.
func NewServer(pinger Pinger, policyChecker PolicyChecker) *Server {
	return &Server{pinger: pinger, policyChecker: policyChecker}
}

// HealthCheck returns NOT_SERVING when the database or the evaluator is unavailable. It never
// returns a gRPC error for a failed dependency.
func (s *Server) HealthCheck(ctx context.Context, _ *healthv1.HealthCheckRequest) (*healthv1.HealthCheckResponse, error) {
	if s.pinger != nil {
		if err := s.pinger.PingContext(ctx); err != nil {
			log.Printf("health: database ping: %v", err)
			return &healthv1.HealthCheckResponse{Status: healthv1.StatusNotServing}, nil
		}
	}
	if s.policyChecker != nil {
		if err := s.policyChecker.HealthCheck(ctx); err != nil {
			log.Printf("health: policy check: %v", err)
			return &healthv1.HealthCheckResponse{Status: healthv1.StatusNotServing}, nil
		}
	}
	return &healthv1.HealthCheckResponse{Status: healthv1.StatusServing}, nil
}
