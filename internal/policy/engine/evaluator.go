// Package engine decides whether a role's granted permission set allows a requested permission.
package engine

import (
	"context"

	"budget-control-plane/internal/permission"
)

// Evaluator decides a single permission check against a role's granted set.
type Evaluator interface {
	// Allow reports whether granted allows p. ALL in granted allows every permission.
	Allow(ctx context.Context, granted permission.Set, p permission.Permission) (bool, error)
	// HealthCheck returns nil when the evaluator can decide requests.
	HealthCheck(ctx context.Context) error
}

// NativeEvaluator decides in process with permission.Set.Covers.
type NativeEvaluator struct{}

// NewNativeEvaluator returns the default evaluator.
func NewNativeEvaluator() NativeEvaluator {
	return NativeEvaluator{}
}

func (NativeEvaluator) Allow(_ context.Context, granted permission.Set, p permission.Permission) (bool, error) {
	return granted.Covers(p), nil
}

func (NativeEvaluator) HealthCheck(context.Context) error { return nil }
